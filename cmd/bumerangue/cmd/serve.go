package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/larachristiea/bumerangue/internal/processor"
	"github.com/larachristiea/bumerangue/internal/server"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server over the credit engine.

Endpoints:
  - POST /api/v1/parse     - Parse and classify one NFe document
  - POST /api/v1/classify  - Summarize one document's revenue split
  - POST /api/v1/process   - Run a full directory batch
  - GET  /health           - Health check

Examples:
  bumerangue serve
  bumerangue serve --address :9090 --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (default from HTTP_PORT)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 15*time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	service, err := processor.NewService(cfg)
	if err != nil {
		return err
	}

	addr := serverAddr
	if addr == "" {
		addr = fmt.Sprintf(":%d", cfg.HTTPPort)
	}

	srv := server.NewServer(&server.Config{
		Address:      addr,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		Debug:        serverDebug,
	}, cfg, service)

	fmt.Printf("Listening on %s\n", addr)
	return srv.Run()
}

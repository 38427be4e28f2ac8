// Package server exposes the credit engine over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/larachristiea/bumerangue/internal/classify"
	"github.com/larachristiea/bumerangue/internal/config"
	"github.com/larachristiea/bumerangue/internal/model"
	"github.com/larachristiea/bumerangue/internal/processor"
	"github.com/larachristiea/bumerangue/internal/validate"
)

// Config holds server configuration.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server is the HTTP API server.
type Server struct {
	config   *Config
	router   *gin.Engine
	pipeline *processor.Pipeline
	service  *processor.Service
}

// NewServer creates the API server around a loaded service. The
// application config feeds the per-document pipeline used by the
// stateless endpoints.
func NewServer(cfg *Config, appCfg *config.Config, service *processor.Service) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Debug {
		router.Use(gin.Logger())
	}

	pipeline := processor.NewPipeline(
		processor.WithValidator(validate.New(appCfg.ConsistencyTolerance)),
		processor.WithClassifier(classify.New(service.RegimeTable())),
	)

	s := &Server{
		config:   cfg,
		router:   router,
		pipeline: pipeline,
		service:  service,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/parse", s.handleParse)
		v1.POST("/classify", s.handleClassify)
		v1.POST("/process", s.handleProcess)
	}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers and
// tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleParse parses, validates, and classifies one NFe document posted
// as the raw request body.
func (s *Server) handleParse(c *gin.Context) {
	body, ok := s.rawBody(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	res := s.pipeline.ProcessBytes(ctx, body, "request")
	if res.Err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: res.Err.Error()})
		return
	}
	if res.Invoice == nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "document is not an invoice"})
		return
	}
	c.JSON(http.StatusOK, ParseResponse{Invoice: res.Invoice})
}

// handleClassify parses one document and summarizes its revenue split.
func (s *Server) handleClassify(c *gin.Context) {
	body, ok := s.rawBody(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	res := s.pipeline.ProcessBytes(ctx, body, "request")
	if res.Err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: res.Err.Error()})
		return
	}
	if res.Invoice == nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "document is not an invoice"})
		return
	}
	c.JSON(http.StatusOK, ClassifyResponse{
		Invoice:            res.Invoice,
		SinglePhaseRevenue: res.Invoice.RevenueByRegime(model.RegimeSinglePhase).StringFixed(2),
		RegularRevenue:     res.Invoice.RevenueByRegime(model.RegimeRegular).StringFixed(2),
	})
}

// handleProcess runs a full directory batch and returns the period
// report.
func (s *Server) handleProcess(c *gin.Context) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request", Details: err.Error()})
		return
	}

	period, err := model.ParsePeriod(req.Period)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid period", Details: err.Error()})
		return
	}
	var target model.Period
	if req.Target != "" {
		target, err = model.ParsePeriod(req.Target)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid target period", Details: err.Error()})
			return
		}
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Minute)
	defer cancel()

	report, err := s.service.RunPeriod(ctx, req.Dir, period, target)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (s *Server) rawBody(c *gin.Context) ([]byte, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return nil, false
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return nil, false
	}
	return body, true
}

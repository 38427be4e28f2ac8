package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/larachristiea/bumerangue/internal/model"
	"github.com/larachristiea/bumerangue/internal/processor"
)

var (
	outputFile     string
	periodFlag     string
	targetFlag     string
	processTimeout time.Duration
)

var processCmd = &cobra.Command{
	Use:   "process [directory]",
	Short: "Process a period's NFe XML directory",
	Long: `Process every NFe XML document in a directory and compute the
period's recoverable PIS/COFINS credit.

The run needs the filing records (FILINGS_PATH) and benefits from the
single-phase NCM table (REGIME_TABLE_PATH) and the SELIC series
(INDEX_SERIES_PATH). Without the NCM table, classification degrades to
CST-only and the report is marked accordingly.

Examples:
  bumerangue process ./xml/2024-01 --period 2024-01
  bumerangue process ./xml/2024-01 --period 2024-01 --target 2025-06 -o report.json
  bumerangue process ./xml/2024-01 --period 2024-01 -f table`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	processCmd.Flags().StringVar(&periodFlag, "period", "", "Filing period (YYYY-MM), required")
	processCmd.Flags().StringVar(&targetFlag, "target", "", "Restate the credit to this period (YYYY-MM)")
	processCmd.Flags().DurationVar(&processTimeout, "timeout", 10*time.Minute, "Processing timeout")
	_ = processCmd.MarkFlagRequired("period")
}

func runProcess(cmd *cobra.Command, args []string) error {
	period, err := model.ParsePeriod(periodFlag)
	if err != nil {
		return err
	}
	var target model.Period
	if targetFlag != "" {
		target, err = model.ParsePeriod(targetFlag)
		if err != nil {
			return err
		}
	}

	service, err := processor.NewService(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), processTimeout)
	defer cancel()

	printVerbose("Processing %s for period %s\n", args[0], period)
	report, err := service.RunPeriod(ctx, args[0], period, target)
	if err != nil {
		return err
	}

	return outputReport(report)
}

func outputReport(report *model.PeriodCreditReport) error {
	out := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch outputFormat {
	case "table":
		w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Period\t%s\n", report.Period)
		fmt.Fprintf(w, "Single-phase revenue\t%s\n", report.SinglePhaseRevenue.StringFixed(2))
		fmt.Fprintf(w, "Regular revenue\t%s\n", report.RegularRevenue.StringFixed(2))
		fmt.Fprintf(w, "Single-phase share\t%s%%\n", report.SinglePhaseShare.StringFixed(2))
		fmt.Fprintf(w, "Effective rate\t%s\n", report.EffectiveRate.String())
		fmt.Fprintf(w, "PIS credit\t%s\n", report.PIS.Credit.StringFixed(2))
		fmt.Fprintf(w, "COFINS credit\t%s\n", report.COFINS.Credit.StringFixed(2))
		fmt.Fprintf(w, "Total credit\t%s\n", report.TotalCredit.StringFixed(2))
		fmt.Fprintf(w, "Accrual factor\t%s\n", report.AccrualFactor.String())
		fmt.Fprintf(w, "Adjusted credit\t%s\n", report.AdjustedCredit.StringFixed(2))
		fmt.Fprintf(w, "Documents scanned\t%d\n", report.Counts.DocumentsScanned)
		fmt.Fprintf(w, "Document errors\t%d\n", report.Counts.DocumentErrors)
		fmt.Fprintf(w, "Invoices cancelled\t%d\n", report.Counts.InvoicesCancelled)
		for _, inc := range report.Inconsistencies {
			fmt.Fprintf(w, "Inconsistency\t%s\n", inc)
		}
		return w.Flush()
	default:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}
}

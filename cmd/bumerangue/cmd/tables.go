package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/larachristiea/bumerangue/internal/reference"
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Print the progressive rate bracket table",
	Long: `Print the rate bracket table the run would use, either the
built-in default or the file named by BRACKET_TABLE_PATH.

Examples:
  bumerangue tables
  bumerangue tables -f table`,
	RunE: runTables,
}

func init() {
	rootCmd.AddCommand(tablesCmd)
}

func runTables(cmd *cobra.Command, args []string) error {
	table := reference.DefaultBracketTable()
	if cfg.BracketTablePath != "" {
		loaded, err := reference.LoadBracketTable(cfg.BracketTablePath)
		if err != nil {
			return err
		}
		table = loaded
	}

	switch outputFormat {
	case "table":
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "Floor\tCeiling\tNominal rate\tDeduction")
		for _, b := range table.Brackets() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				b.Floor.StringFixed(2), b.Ceiling.StringFixed(2),
				b.NominalRate.String(), b.Deduction.StringFixed(2))
		}
		return w.Flush()
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(table.Brackets())
	}
}

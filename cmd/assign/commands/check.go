package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/legal_queries/backend/internal/models"
	"github.com/legal_queries/backend/internal/roster"
	"github.com/legal_queries/backend/internal/service"
)

var (
	checkTypology string
	checkUrgent   bool
)

// NewCheckCmd creates the check command
func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Explain which lawyers could take a query",
		Long: `Evaluate every lawyer of the roster against a hypothetical query and print
the verdict with its reason code.

Examples:
  assign check --typology "Avales nacionales"
  assign check --typology "Avales nacionales" --urgent --format json`,
		RunE: runCheck,
	}
	cmd.Flags().StringVar(&checkTypology, "typology", "", "Query typology")
	cmd.Flags().BoolVar(&checkUrgent, "urgent", false, "Treat the query as urgent")
	_ = cmd.MarkFlagRequired("typology")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	lawyers, err := roster.Load(rosterPath)
	if err != nil {
		return err
	}
	report := service.Explain(models.Query{Typology: checkTypology, IsUrgent: checkUrgent}, lawyers)

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(out, "%s\n", data)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "LAWYER\tELIGIBLE\tREASON\n")
	for _, v := range report.Verdicts {
		fmt.Fprintf(w, "%s\t%t\t%s\n", v.Name, v.Eligible, v.ReasonCode)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if report.ReasonCode != "" {
		fmt.Fprintf(out, "\n%s\n", report.ReasonCode)
	}
	return nil
}

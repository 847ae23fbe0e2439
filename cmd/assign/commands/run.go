package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/legal_queries/backend/internal/ingest"
	"github.com/legal_queries/backend/internal/roster"
	"github.com/legal_queries/backend/internal/service"
)

var queriesPath string

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Assign a query export against a roster",
		Long: `Read a query CSV export and a roster, run the assignment engine once and
print where every query went and the load of each lawyer, counted from the
resulting assignments (follow-ups kept by their lawyer included).

Examples:
  assign run --queries queries.csv --roster roster.yaml
  assign run --queries queries.csv --format json`,
		RunE: runAssign,
	}
	cmd.Flags().StringVar(&queriesPath, "queries", "", "Query CSV export")
	_ = cmd.MarkFlagRequired("queries")
	return cmd
}

func runAssign(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	lawyers, err := roster.Load(rosterPath)
	if err != nil {
		return err
	}
	f, err := os.Open(queriesPath)
	if err != nil {
		return fmt.Errorf("opening queries: %w", err)
	}
	defer f.Close()

	queries, errs := ingest.ParseQueriesCSV(f, time.Now())
	for _, e := range errs {
		logger.Warn().Str("file", queriesPath).Msg(e)
	}
	if len(queries) == 0 {
		return fmt.Errorf("no valid queries in %s", queriesPath)
	}

	res := service.BalanceQueries(queries, lawyers)
	loads := map[string]int{}
	for _, l := range service.RecomputeLoads(res.Queries, lawyers) {
		loads[l.ID] = l.CurrentAssignments
	}
	names := make(map[string]string, len(lawyers))
	for _, l := range lawyers {
		names[l.ID] = l.Name
	}
	for _, d := range res.Decisions {
		logger.Debug().Str("ritm", d.RITM).Str("outcome", d.Outcome).Str("lawyer_id", d.LawyerID).Float64("ratio", d.Ratio).Msg("decision")
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		data, err := json.MarshalIndent(struct {
			Queries any            `json:"queries"`
			Loads   map[string]int `json:"loads"`
			Skipped []string       `json:"skipped"`
		}{res.Queries, loads, errs}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		fmt.Fprintf(out, "%s\n", data)
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "RITM\tTYPOLOGY\tURGENT\tOUTCOME\tLAWYER\n")
	for i, d := range res.Decisions {
		q := res.Queries[i]
		lawyer := names[d.LawyerID]
		if lawyer == "" {
			lawyer = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%t\t%s\t%s\n", q.RITM, q.Typology, q.IsUrgent, d.Outcome, lawyer)
	}
	fmt.Fprintf(w, "\nLAWYER\tWORK %%\tLOAD\t\t\n")
	for _, l := range lawyers {
		fmt.Fprintf(w, "%s\t%d\t%d\t\t\n", l.Name, l.WorkPercentage, loads[l.ID])
	}
	return w.Flush()
}

package commands

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	rosterPath   string
	outputFormat string
	verbose      bool
)

// NewRootCmd builds the assign command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "assign",
		Short:         "Assign legal queries to lawyers offline",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&rosterPath, "roster", "roster.yaml", "Roster YAML file")
	root.PersistentFlags().StringVar(&outputFormat, "format", "table", "Output format (table|json)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log every decision to stderr")

	root.AddCommand(NewRunCmd())
	root.AddCommand(NewCheckCmd())
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}

func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
}

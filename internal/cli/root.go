// Package cli provides the command-line interface for goldgraph.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/benchforge/goldgraph/internal/cli/commands"
	"github.com/benchforge/goldgraph/internal/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "goldgraph",
		Short: "goldgraph - Text-to-SQL benchmark curation",
		Long: `goldgraph curates a Text-to-SQL benchmark corpus.

Its core derives, per benchmark question, a gold graph: the schema tables
and foreign-key edges the question's reference SQL actually exercises.
Companion commands augment the schema payload with column descriptions,
normalize bilingual question fields, and split question files for parallel
translation.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			cmd.SetContext(commands.NewContext(cmd.Context(), cfg, logger))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Text-to-SQL benchmark curation toolkit
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./goldgraph.yaml)")
	rootCmd.PersistentFlags().String("tables", "", "Path to the tables JSON payload")
	rootCmd.PersistentFlags().StringSlice("data-root", nil, "Directory of database folders (repeatable)")
	rootCmd.PersistentFlags().String("output-dir", "", "Directory for graph and report outputs")
	rootCmd.PersistentFlags().String("state", "", "Path to the run-history database")
	rootCmd.PersistentFlags().Int("workers", 0, "Extraction workers (0 for one per CPU)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(commands.NewGraphsCommand())
	rootCmd.AddCommand(commands.NewAugmentCommand())
	rootCmd.AddCommand(commands.NewNormalizeCommand())
	rootCmd.AddCommand(commands.NewSplitCommand())
	rootCmd.AddCommand(commands.NewRunsCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version))

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

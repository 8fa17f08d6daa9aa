package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/benchforge/goldgraph/internal/batch"
	"github.com/benchforge/goldgraph/internal/corpus"
	"github.com/benchforge/goldgraph/internal/schema"
	"github.com/benchforge/goldgraph/internal/state"
)

// GraphsOptions holds options for the graphs command.
type GraphsOptions struct {
	Split   string
	NoState bool
}

// NewGraphsCommand creates the graphs command.
func NewGraphsCommand() *cobra.Command {
	opts := &GraphsOptions{}

	cmd := &cobra.Command{
		Use:   "graphs <questions.json> [more.json...]",
		Short: "Extract gold graphs for a question split",
		Long: `Derive, per benchmark question, the schema tables and foreign-key
edges its reference SQL exercises. Writes an index-aligned graph array and a
failure report next to it, and records the run in the state database.`,
		Example: `  # Extract graphs for the dev split
  goldgraph graphs dev.json --tables tables.json

  # Several question files processed as one split
  goldgraph graphs part1.json part2.json --split train`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraphs(cmd, opts, args)
		},
	}

	cmd.Flags().StringVar(&opts.Split, "split", "", "Split label for outputs and run history (default: first file's stem)")
	cmd.Flags().BoolVar(&opts.NoState, "no-state", false, "Skip recording the run in the state database")

	return cmd
}

func runGraphs(cmd *cobra.Command, opts *GraphsOptions, args []string) error {
	cc := FromCommand(cmd)
	if err := cc.Cfg.Validate(); err != nil {
		return err
	}

	split := opts.Split
	if split == "" {
		split = stem(args[0])
	}

	cache, err := schema.LoadCache(cc.Cfg.TablesPath, cc.Logger)
	if err != nil {
		return err
	}
	examples, err := corpus.LoadAll(args...)
	if err != nil {
		return err
	}
	cc.Logger.Info("split loaded", "split", split, "examples", len(examples), "databases", cache.Len())

	var store *state.SQLiteStore
	var runID string
	if !opts.NoState {
		if dir := filepath.Dir(cc.Cfg.StatePath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("creating state directory: %w", err)
			}
		}
		store, err = state.Open(cc.Cfg.StatePath)
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.CreateRun(split)
		if err != nil {
			return err
		}
		runID = run.ID
	}

	graphsPath := filepath.Join(cc.Cfg.OutputDir, split+"_graphs.json")
	failuresPath := filepath.Join(cc.Cfg.OutputDir, split+"_failures.json")

	started := time.Now()
	driver := batch.New(cache, cc.Cfg.Workers, cc.Logger)
	entries, report, err := driver.Run(cmd.Context(), examples)
	if err != nil {
		// Failure records gathered before the abort still describe real
		// bad examples.
		if report != nil {
			if werr := batch.WriteReport(failuresPath, report); werr != nil {
				cc.Logger.Warn("failed to write partial failure report", "path", failuresPath, "error", werr)
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "Partial failure report written to %s\n", failuresPath)
			}
		}
		if store != nil {
			if report != nil {
				if rerr := store.RecordFailures(runID, toFailureRecords(runID, report.Failures)); rerr != nil {
					cc.Logger.Warn("failed to record failures", "run_id", runID, "error", rerr)
				}
			}
			if ferr := store.FailRun(runID, err.Error()); ferr != nil {
				cc.Logger.Warn("failed to record run failure", "run_id", runID, "error", ferr)
			}
		}
		return err
	}
	if err := batch.WriteEntries(graphsPath, entries); err != nil {
		return err
	}
	if err := batch.WriteReport(failuresPath, report); err != nil {
		return err
	}

	if store != nil {
		if err := store.CompleteRun(runID, report.Total, report.Succeeded, len(report.Failures)); err != nil {
			return err
		}
		if err := store.RecordFailures(runID, toFailureRecords(runID, report.Failures)); err != nil {
			return err
		}
	}

	renderReport(cmd, split, report, time.Since(started))
	fmt.Fprintf(cmd.OutOrStdout(), "Graphs written to %s\n", graphsPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Failure report written to %s\n", failuresPath)
	return nil
}

func toFailureRecords(runID string, failures []batch.Failure) []state.FailureRecord {
	records := make([]state.FailureRecord, len(failures))
	for i, f := range failures {
		records[i] = state.FailureRecord{
			RunID:   runID,
			Idx:     f.Idx,
			DBID:    f.DBID,
			Kind:    f.Kind,
			Message: f.Error,
		}
	}
	return records
}

func renderReport(cmd *cobra.Command, split string, report *batch.Report, elapsed time.Duration) {
	w := cmd.OutOrStdout()

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Split", "Total", "Succeeded", "Parse", "Resolution", "Unknown DB", "Elapsed"})
	t.AppendRow(table.Row{
		split,
		report.Total,
		report.Succeeded,
		report.ByKind[batch.KindParse],
		report.ByKind[batch.KindResolution],
		report.ByKind[batch.KindUnknownDB],
		elapsed.Round(time.Millisecond),
	})
	t.Render()

	if len(report.Failures) == 0 {
		return
	}

	ft := table.NewWriter()
	ft.SetOutputMirror(w)
	ft.SetStyle(table.StyleLight)
	ft.AppendHeader(table.Row{"Idx", "Database", "Kind", "Error"})
	for _, f := range report.Failures {
		ft.AppendRow(table.Row{f.Idx, f.DBID, f.Kind, f.Error})
	}
	ft.Render()
}

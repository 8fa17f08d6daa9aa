package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/benchforge/goldgraph/internal/state"
)

// RunsOptions holds options for the runs command.
type RunsOptions struct {
	Limit    int
	Failures string
}

// NewRunsCommand creates the runs command.
func NewRunsCommand() *cobra.Command {
	opts := &RunsOptions{}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Show extraction run history",
		Example: `  # Recent runs
  goldgraph runs

  # Failures recorded for one run
  goldgraph runs --failures 6f1c...`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRuns(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "Maximum number of runs to show (0 for all)")
	cmd.Flags().StringVar(&opts.Failures, "failures", "", "Show the failure records of the given run id")

	return cmd
}

func runRuns(cmd *cobra.Command, opts *RunsOptions) error {
	cc := FromCommand(cmd)

	store, err := state.Open(cc.Cfg.StatePath)
	if err != nil {
		return err
	}
	defer store.Close()

	if opts.Failures != "" {
		return renderFailures(cmd, store, opts.Failures)
	}

	runs, err := store.ListRuns(opts.Limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"ID", "Split", "Status", "Started", "Total", "Succeeded", "Failed"})
	for _, run := range runs {
		t.AppendRow(table.Row{
			run.ID,
			run.Split,
			run.Status,
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.Total,
			run.Succeeded,
			run.Failed,
		})
	}
	t.Render()
	return nil
}

func renderFailures(cmd *cobra.Command, store *state.SQLiteStore, runID string) error {
	if _, err := store.GetRun(runID); err != nil {
		return err
	}

	failures, err := store.ListFailures(runID)
	if err != nil {
		return err
	}
	if len(failures) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No failures recorded")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Idx", "Database", "Kind", "Message"})
	for _, f := range failures {
		t.AppendRow(table.Row{f.Idx, f.DBID, f.Kind, f.Message})
	}
	t.Render()
	return nil
}

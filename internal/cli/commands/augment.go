package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benchforge/goldgraph/internal/augment"
	"github.com/benchforge/goldgraph/internal/schema"
)

// AugmentOptions holds options for the augment command.
type AugmentOptions struct {
	Out string
}

// NewAugmentCommand creates the augment command.
func NewAugmentCommand() *cobra.Command {
	opts := &AugmentOptions{}

	cmd := &cobra.Command{
		Use:   "augment",
		Short: "Attach column and foreign-key descriptions to the tables file",
		Long: `Harvest per-column descriptions from each database's
database_description CSV sheets and attach them to the tables payload:
column_descriptions aligned with the column list, and one described entry
per foreign key with a non-redundant summary sentence.`,
		Example: `  # Augment in place
  goldgraph augment --tables tables.json --data-root data/dev_databases

  # Write to a new file
  goldgraph augment --tables tables.json --data-root data/dev_databases --out tables_described.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAugment(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Out, "out", "", "Output path (default: overwrite the tables file)")

	return cmd
}

func runAugment(cmd *cobra.Command, opts *AugmentOptions) error {
	cc := FromCommand(cmd)
	if err := cc.Cfg.Validate(); err != nil {
		return err
	}
	if len(cc.Cfg.DataRoots) == 0 {
		return fmt.Errorf("at least one data root is required (--data-root or data_roots)")
	}

	raws, err := schema.Load(cc.Cfg.TablesPath)
	if err != nil {
		return err
	}

	stats, err := augment.Run(raws, cc.Cfg.DataRoots, cc.Logger)
	if err != nil {
		return err
	}

	out := opts.Out
	if out == "" {
		out = cc.Cfg.TablesPath
	}
	if err := writeJSONFile(out, raws); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Augmented %d databases (%d foreign keys and %d columns without descriptions)\n",
		stats.Databases, stats.MissingFKDescs, stats.MissingColumnDescs)
	fmt.Fprintf(cmd.OutOrStdout(), "Tables written to %s\n", out)
	return nil
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benchforge/goldgraph/internal/corpus"
)

// SplitOptions holds options for the split command.
type SplitOptions struct {
	Parts int
}

// NewSplitCommand creates the split command.
func NewSplitCommand() *cobra.Command {
	opts := &SplitOptions{}

	cmd := &cobra.Command{
		Use:   "split <questions.json>",
		Short: "Split a question file into contiguous near-equal chunks",
		Long: `Split a question array into N contiguous chunks for parallel
translation work. Chunk sizes differ by at most one record; the remainder
goes to the leading chunks. Output files are named <stem>_partIofN.json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Parts < 1 {
				return fmt.Errorf("parts must be at least 1, got %d", opts.Parts)
			}
			paths, err := corpus.SplitFile(args[0], opts.Parts)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Parts, "parts", "n", 4, "Number of chunks")

	return cmd
}

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/benchforge/goldgraph/internal/corpus"
)

// bilingualFields are the question fields every record must carry.
var bilingualFields = []string{"question_ar", "evidence_ar"}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize <questions.json> [more.json...]",
		Short: "Ensure question files carry the bilingual fields",
		Long: `Add empty question_ar and evidence_ar fields to every record
missing them. Files already carrying both fields are left untouched.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cc := FromCommand(cmd)
			for _, path := range args {
				changed := false
				for _, field := range bilingualFields {
					c, err := corpus.EnsureField(path, field)
					if err != nil {
						return err
					}
					changed = changed || c
				}
				if changed {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: updated\n", path)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: already normalized\n", path)
				}
				cc.Logger.Debug("file normalized", "path", path, "changed", changed)
			}
			return nil
		},
	}
}

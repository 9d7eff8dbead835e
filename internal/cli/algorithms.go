package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ykhdr/dict-attack/internal/digest"
)

func newAlgorithmsCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "algorithms",
		Aliases: []string{"algs"},
		Short:   "List supported digest algorithms",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			for _, name := range digest.Names() {
				alg := digest.MustParseAlgorithm(name)
				marker := ""
				if name == digest.DefaultAlgorithm {
					marker = " (default)"
				}
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s%s\n", name, alg.Implementation(), marker); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

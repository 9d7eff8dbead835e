package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/ykhdr/dict-attack/internal/digest"
)

func newHashCommand() *cobra.Command {
	var algorithm string
	cmd := &cobra.Command{
		Use:   "hash <word>...",
		Short: "Print the digest of each word, one per line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := digest.ParseAlgorithm(algorithm)
			if err != nil {
				return err
			}
			for _, word := range args {
				if _, err = fmt.Fprintln(cmd.OutOrStdout(), alg.Sum(word)); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&algorithm, "algorithm", "a", digest.DefaultAlgorithm, "digest algorithm")
	return cmd
}

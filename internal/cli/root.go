// Package cli holds the dictattack command tree.
package cli

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "dictattack",
		Short: "Recover passwords from unsalted hashes with a wordlist",
		Long: `dictattack hashes every word of a dictionary and matches the digests
against a file of username,hash targets. Cracked accounts are written
as username,hash,password lines.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"KDL config file (default ./config/config.kdl when present)")

	cmd.AddCommand(
		newCrackCommand(opts),
		newHashCommand(),
		newAlgorithmsCommand(),
	)
	return cmd
}

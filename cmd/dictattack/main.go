package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/ykhdr/dict-attack/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		log.Error().Err(err).Msg("dictattack failed")
		os.Exit(1)
	}
}

package config

import (
	"github.com/rs/zerolog/log"
	"github.com/ykhdr/dict-attack/common/logging"
)

// LogConfig is embedded by application configs to pick up `log-level`.
type LogConfig struct {
	LogLevel string `kdl:"log-level"`
}

func (c *LogConfig) GetLogLevel() string {
	return c.LogLevel
}

type hasLogLevel interface {
	GetLogLevel() string
}

func setupLogger(cfg any) {
	level := logging.InfoLevel
	if lc, ok := cfg.(hasLogLevel); ok {
		level = logging.ParseLevel(lc.GetLogLevel())
	}
	logging.Setup(level)
	log.Debug().Stringer("level", level).Msg("logger configured")
}

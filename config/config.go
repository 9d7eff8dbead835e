package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ykhdr/dict-attack/common/amqp"
	"github.com/ykhdr/dict-attack/common/config"
	"github.com/ykhdr/dict-attack/common/consul"
	"github.com/ykhdr/dict-attack/common/store/mongo"
	"github.com/ykhdr/dict-attack/internal/digest"
	"github.com/ykhdr/dict-attack/internal/hashcrack"
	"github.com/ykhdr/dict-attack/internal/progress"
)

type ProgressMode string

const (
	ProgressAuto   ProgressMode = "auto"
	ProgressAlways ProgressMode = "always"
	ProgressNever  ProgressMode = "never"
)

func ParseProgressMode(s string) (ProgressMode, error) {
	switch m := ProgressMode(strings.ToLower(strings.TrimSpace(s))); m {
	case ProgressAuto, ProgressAlways, ProgressNever:
		return m, nil
	case "":
		return ProgressAuto, nil
	default:
		return "", fmt.Errorf("unknown progress mode %q (want auto, always or never)", s)
	}
}

type ProgressConfig struct {
	Mode          string        `kdl:"mode"`
	Interval      time.Duration `kdl:"interval"`
	SettleTimeout time.Duration `kdl:"settle-timeout"`
}

type OutputConfig struct {
	File string `kdl:"file"`
}

type StatusConfig struct {
	// Addr enables the status server when set, e.g. "127.0.0.1:8090".
	Addr         string         `kdl:"addr"`
	ConsulConfig *consul.Config `kdl:"consul"`
}

type AttackConfig struct {
	config.LogConfig
	Algorithm       string          `kdl:"algorithm"`
	Workers         int             `kdl:"workers"`
	BatchSize       int             `kdl:"batch-size"`
	QueueCapacity   int             `kdl:"queue-capacity"`
	ShutdownTimeout time.Duration   `kdl:"shutdown-timeout"`
	Dedup           bool            `kdl:"dedup"`
	Progress        *ProgressConfig `kdl:"progress"`
	Output          *OutputConfig   `kdl:"output"`
	Status          *StatusConfig   `kdl:"status"`
	MongoDBConfig   *mongo.Config   `kdl:"mongo"`
	AmqpConfig      *amqp.Config    `kdl:"amqp"`
}

func DefaultConfig() *AttackConfig {
	return &AttackConfig{
		LogConfig:       config.LogConfig{LogLevel: "info"},
		Algorithm:       digest.DefaultAlgorithm,
		ShutdownTimeout: hashcrack.DefaultShutdownTimeout,
		Progress: &ProgressConfig{
			Mode:          string(ProgressAuto),
			Interval:      progress.DefaultInterval,
			SettleTimeout: progress.DefaultSettleTimeout,
		},
		Output: &OutputConfig{
			File: "out.txt",
		},
		Status: &StatusConfig{
			ConsulConfig: &consul.Config{
				Service: consul.DefaultServiceName,
				Health: &consul.HealthConfig{
					Interval:        "5s",
					Timeout:         "2s",
					Path:            "/api/health",
					DeregisterAfter: "1m",
				},
			},
		},
		MongoDBConfig: &mongo.Config{
			Database:   mongo.DefaultDatabase,
			Collection: mongo.DefaultCollection,
		},
		AmqpConfig: &amqp.Config{
			PublisherConfig: &amqp.PublisherConfig{
				Exchange:   "dict-attack",
				RoutingKey: "run.finished",
			},
		},
	}
}

func InitializeConfig(path string) (*AttackConfig, error) {
	return config.InitializeConfig[AttackConfig](path, *DefaultConfig())
}

// EngineConfig maps the tuning knobs onto the engine; zero values are left
// for the engine to default.
func (c *AttackConfig) EngineConfig() hashcrack.Config {
	return hashcrack.Config{
		Workers:         c.Workers,
		BatchSize:       c.BatchSize,
		QueueCapacity:   c.QueueCapacity,
		ShutdownTimeout: c.ShutdownTimeout,
	}
}

func (c *AttackConfig) ProgressConfig() progress.Config {
	if c.Progress == nil {
		return progress.Config{}
	}
	return progress.Config{
		Interval:      c.Progress.Interval,
		SettleTimeout: c.Progress.SettleTimeout,
	}
}

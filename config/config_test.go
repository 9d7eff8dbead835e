package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ykhdr/dict-attack/internal/hashcrack"
)

func TestBundledConfigMatchesDefaults(t *testing.T) {
	cfg, err := InitializeConfig("config.kdl")
	require.NoError(t, err)

	def := DefaultConfig()
	assert.Equal(t, def.Algorithm, cfg.Algorithm)
	assert.Equal(t, def.ShutdownTimeout, cfg.ShutdownTimeout)
	assert.Equal(t, *def.Progress, *cfg.Progress)
	assert.Equal(t, def.Output.File, cfg.Output.File)
	assert.Empty(t, cfg.Status.Addr)
	assert.False(t, cfg.Status.ConsulConfig.Enabled())
	assert.False(t, cfg.MongoDBConfig.Enabled())
	assert.False(t, cfg.AmqpConfig.Enabled())
	assert.Equal(t, "run.finished", cfg.AmqpConfig.PublisherConfig.RoutingKey)
}

func TestInitializeConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "attack.kdl")
	data := `
algorithm "md5"
workers 3
batch-size 100
progress {
    mode "never"
    interval "1s"
}
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	cfg, err := InitializeConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "md5", cfg.Algorithm)
	assert.Equal(t, hashcrack.Config{
		Workers:         3,
		BatchSize:       100,
		ShutdownTimeout: hashcrack.DefaultShutdownTimeout,
	}, cfg.EngineConfig())
	assert.Equal(t, "never", cfg.Progress.Mode)
	assert.Equal(t, time.Second, cfg.ProgressConfig().Interval)
}

func TestParseProgressMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ProgressMode
		wantErr bool
	}{
		{in: "", want: ProgressAuto},
		{in: "auto", want: ProgressAuto},
		{in: " Always ", want: ProgressAlways},
		{in: "NEVER", want: ProgressNever},
		{in: "sometimes", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseProgressMode(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

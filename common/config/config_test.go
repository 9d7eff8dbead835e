package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleConfig struct {
	Name    string `kdl:"name"`
	Workers int    `kdl:"workers"`
	Mode    string `kdl:"mode"`
}

func TestInitializeConfigMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.kdl")
	require.NoError(t, os.WriteFile(path, []byte("name \"attack\"\nworkers 3\n"), 0o600))

	cfg, err := InitializeConfig(path, sampleConfig{Name: "default", Workers: 1, Mode: "auto"})
	require.NoError(t, err)
	assert.Equal(t, "attack", cfg.Name)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, "auto", cfg.Mode)
}

func TestInitializeConfigDefaultPathMayBeMissing(t *testing.T) {
	cfg, err := InitializeConfig("", sampleConfig{Name: "default"})
	require.NoError(t, err)
	assert.Equal(t, "default", cfg.Name)
}

func TestInitializeConfigExplicitPathMustExist(t *testing.T) {
	_, err := InitializeConfig(filepath.Join(t.TempDir(), "missing.kdl"), sampleConfig{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

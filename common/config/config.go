package config

import (
	"github.com/pkg/errors"
	"github.com/sblinch/kdl-go"
	"os"
)

const DefaultConfigPath = "./config/config.kdl"

// InitializeConfig reads the KDL file at path over defaultCfg and sets up
// the global logger from the resulting log level. An empty path means
// DefaultConfigPath, which may be absent; an explicit path must exist.
func InitializeConfig[T any](path string, defaultCfg T) (*T, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}
	cfg := defaultCfg
	err := decodeFile(path, &cfg)
	switch {
	case err == nil:
	case !explicit && errors.Is(err, os.ErrNotExist):
		cfg = defaultCfg
	default:
		return nil, errors.Wrapf(err, "load config %s", path)
	}
	setupLogger(&cfg)
	return &cfg, nil
}

// decodeFile decodes over the values already in dst, so settings missing
// from the file keep their defaults.
func decodeFile(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err = kdl.Unmarshal(data, dst); err != nil {
		return errors.Wrap(err, "unmarshal kdl")
	}
	return nil
}

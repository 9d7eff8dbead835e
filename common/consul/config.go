package consul

import "github.com/hashicorp/consul/api"

type HealthConfig struct {
	Interval string `kdl:"interval"`
	Timeout  string `kdl:"timeout"`
	Path     string `kdl:"path"`
	// DeregisterAfter removes a service that stays critical this long.
	DeregisterAfter string `kdl:"deregister-after"`
}

func (c *HealthConfig) toApiCheck(baseUrl string) *api.AgentServiceCheck {
	if c == nil {
		return nil
	}
	return &api.AgentServiceCheck{
		HTTP:                           baseUrl + c.Path,
		Timeout:                        c.Timeout,
		Interval:                       c.Interval,
		DeregisterCriticalServiceAfter: c.DeregisterAfter,
	}
}

type Config struct {
	Address string        `kdl:"address"`
	Service string        `kdl:"service"`
	Health  *HealthConfig `kdl:"health"`
}

// Enabled reports whether an agent address is configured.
func (c *Config) Enabled() bool {
	return c != nil && c.Address != ""
}

func (c *Config) toApiConfig() *api.Config {
	cfg := api.DefaultConfig()
	cfg.Address = c.Address
	return cfg
}

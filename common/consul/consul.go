package consul

import (
	"fmt"
	"github.com/hashicorp/consul/api"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const DefaultServiceName = "dict-attack"

type Registration struct {
	ID      string
	Name    string
	Address string
	Port    int
}

func (r *Registration) Url() string {
	return fmt.Sprintf("http://%s:%d", r.Address, r.Port)
}

type Client interface {
	Register(address string, port int) (*Registration, error)
	Deregister(reg *Registration) error
}

// Agent is the subset of the consul agent endpoint the client talks to.
type Agent interface {
	ServiceRegister(service *api.AgentServiceRegistration) error
	ServiceDeregister(serviceID string) error
}

type client struct {
	cfg   *Config
	agent Agent
	l     zerolog.Logger
}

func NewClient(cfg *Config) (Client, error) {
	cl, err := api.NewClient(cfg.toApiConfig())
	if err != nil {
		return nil, errors.Wrap(err, "failed to create consul client")
	}
	return NewClientWithAgent(cfg, cl.Agent()), nil
}

func NewClientWithAgent(cfg *Config, agent Agent) Client {
	return &client{
		cfg:   cfg,
		agent: agent,
		l:     log.With().Str("domain", "consul").Str("address", cfg.Address).Logger(),
	}
}

func (c *client) serviceName() string {
	if c.cfg.Service != "" {
		return c.cfg.Service
	}
	return DefaultServiceName
}

func (c *client) Register(address string, port int) (*Registration, error) {
	reg := &Registration{
		ID:      fmt.Sprintf("%s-%s:%d", c.serviceName(), address, port),
		Name:    c.serviceName(),
		Address: address,
		Port:    port,
	}
	req := &api.AgentServiceRegistration{
		ID:      reg.ID,
		Name:    reg.Name,
		Address: reg.Address,
		Port:    reg.Port,
		Check:   c.cfg.Health.toApiCheck(reg.Url()),
	}
	if err := c.agent.ServiceRegister(req); err != nil {
		return nil, errors.Wrapf(err, "failed to register service %s", reg.ID)
	}
	c.l.Info().Str("service-id", reg.ID).Msg("service registered")
	return reg, nil
}

func (c *client) Deregister(reg *Registration) error {
	if reg == nil {
		return nil
	}
	if err := c.agent.ServiceDeregister(reg.ID); err != nil {
		return errors.Wrapf(err, "failed to deregister service %s", reg.ID)
	}
	c.l.Info().Str("service-id", reg.ID).Msg("service deregistered")
	return nil
}

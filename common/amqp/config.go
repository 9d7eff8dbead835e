package amqp

import (
	"github.com/ykhdr/dict-attack/common/amqp/publisher"
	"time"
)

type Config struct {
	URI              string           `kdl:"uri"`
	Username         string           `kdl:"username"`
	Password         string           `kdl:"password"`
	ReconnectTimeout time.Duration    `kdl:"reconnect-timeout"`
	PublisherConfig  *PublisherConfig `kdl:"publisher"`
}

// Enabled reports whether a broker is configured at all.
func (c *Config) Enabled() bool {
	return c != nil && c.URI != ""
}

type PublisherConfig struct {
	Exchange   string `kdl:"exchange"`
	RoutingKey string `kdl:"routing-key"`
}

func (p *PublisherConfig) ToPublisherConfig() publisher.Config {
	if p == nil {
		return publisher.Config{}
	}
	return publisher.Config{
		Exchange:   p.Exchange,
		RoutingKey: p.RoutingKey,
	}
}

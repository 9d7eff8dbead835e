package amqp

import (
	"context"
	amqp "github.com/rabbitmq/amqp091-go"
	conn "github.com/ykhdr/dict-attack/common/amqp/connection"
	"time"
)

const defaultReconnectTimeout = 5 * time.Second

func Dial(ctx context.Context, cfg *Config) (*conn.Connection, error) {
	opts := amqp.Config{
		SASL: []amqp.Authentication{
			&amqp.PlainAuth{
				Username: cfg.Username,
				Password: cfg.Password,
			},
		},
	}
	reconnectTimeout := cfg.ReconnectTimeout
	if reconnectTimeout <= 0 {
		reconnectTimeout = defaultReconnectTimeout
	}
	return conn.NewConnection(ctx, cfg.URI, opts, reconnectTimeout)
}

package publisher

import (
	"context"
	"encoding/json"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/ykhdr/dict-attack/common/amqp/connection"
	"time"
)

type DeliveryMode uint8

const (
	Transient  DeliveryMode = 1
	Persistent DeliveryMode = 2
)

type Marshal func(any) ([]byte, error)

type Config struct {
	Exchange    string
	RoutingKey  string
	Marshal     Marshal
	ContentType string
	Mode        DeliveryMode
}

// Message is anything that can identify itself on the wire.
type Message interface {
	MessageID() string
}

type Publisher[T Message] interface {
	Publish(ctx context.Context, message *T) error
}

// Channel is the part of connection.Channel a publisher needs.
type Channel interface {
	Publish(ctx context.Context, exchange string, key string, mandatory bool, immediate bool, msg amqp.Publishing) error
}

var _ Channel = (*connection.Channel)(nil)

type publisher[T Message] struct {
	cfg Config
	ch  Channel
	l   zerolog.Logger
	now func() time.Time
}

func New[T Message](ch Channel, cfg Config) Publisher[T] {
	if cfg.Marshal == nil {
		cfg.Marshal = json.Marshal
	}
	if cfg.ContentType == "" {
		cfg.ContentType = "application/json"
	}
	if cfg.Mode == 0 {
		cfg.Mode = Persistent
	}
	return &publisher[T]{
		cfg: cfg,
		ch:  ch,
		now: time.Now,
		l: log.With().
			Str("component", "amqp-publisher").
			Str("exchange", cfg.Exchange).
			Str("routing-key", cfg.RoutingKey).
			Logger(),
	}
}

func (p *publisher[T]) Publish(ctx context.Context, message *T) error {
	if message == nil {
		return errors.New("nil message")
	}
	id := (*message).MessageID()
	body, err := p.cfg.Marshal(message)
	if err != nil {
		return errors.Wrap(err, "failed to marshal message")
	}
	msg := amqp.Publishing{
		DeliveryMode: uint8(p.cfg.Mode),
		ContentType:  p.cfg.ContentType,
		MessageId:    id,
		Timestamp:    p.now(),
		Body:         body,
	}
	if err = p.ch.Publish(ctx, p.cfg.Exchange, p.cfg.RoutingKey, false, false, msg); err != nil {
		p.l.Error().Err(err).Str("message-id", id).Msg("failed to publish message")
		return errors.Wrap(err, "failed to publish message")
	}
	p.l.Debug().Str("message-id", id).Int("bytes", len(body)).Msg("message published")
	return nil
}

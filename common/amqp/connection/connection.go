package connection

import (
	"context"
	"github.com/pkg/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"sync"
	"sync/atomic"
	"time"
)

var (
	ConnAlreadyClosedErr    = errors.New("connection is already closed")
	ChannelAlreadyClosedErr = errors.New("channel is already closed")
)

// Connection redials the broker whenever the server drops it, until Close.
type Connection struct {
	l    zerolog.Logger
	uri  string
	opts amqp.Config

	reconnectTimeout time.Duration

	m      sync.RWMutex
	conn   *amqp.Connection
	closed atomic.Bool
	cancel context.CancelFunc
}

// Channel reopens itself on its Connection after a channel-level failure.
type Channel struct {
	l    zerolog.Logger
	conn *Connection

	reconnectTimeout time.Duration

	m      sync.RWMutex
	ch     *amqp.Channel
	closed atomic.Bool
	cancel context.CancelFunc
}

func NewConnection(
	ctx context.Context,
	uri string,
	opts amqp.Config,
	reconnectTimeout time.Duration,
) (*Connection, error) {
	c, err := amqp.DialConfig(uri, opts)
	if err != nil {
		return nil, errors.Wrap(err, "error dial amqp connection")
	}
	ctx, cancel := context.WithCancel(ctx)
	conn := &Connection{
		uri:              uri,
		opts:             opts,
		conn:             c,
		cancel:           cancel,
		reconnectTimeout: reconnectTimeout,
		l:                log.With().Str("component", "amqp-connection").Logger(),
	}
	go conn.watch(ctx)
	return conn, nil
}

func (c *Connection) Connection() *amqp.Connection {
	c.m.RLock()
	defer c.m.RUnlock()
	return c.conn
}

func (c *Connection) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return ConnAlreadyClosedErr
	}
	c.cancel()
	if err := c.Connection().Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return errors.Wrap(err, "error close amqp connection")
	}
	return nil
}

func (c *Connection) watch(ctx context.Context) {
	for {
		closeC := c.Connection().NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-ctx.Done():
			c.l.Debug().Msg("watcher stopped")
			return
		case err, ok := <-closeC:
			if !ok || c.closed.Load() {
				c.l.Debug().Msg("watcher stopped")
				return
			}
			c.l.Warn().Err(err).Msg("connection closed, try to reconnect")
			if !c.redial(ctx) {
				return
			}
			c.l.Debug().Msg("amqp connection reconnected")
		}
	}
}

func (c *Connection) redial(ctx context.Context) bool {
	for {
		if c.closed.Load() {
			return false
		}
		cc, err := amqp.DialConfig(c.uri, c.opts)
		if err == nil {
			c.m.Lock()
			c.conn = cc
			c.m.Unlock()
			return true
		}
		c.l.Warn().Err(err).Msg("amqp connection error")
		select {
		case <-ctx.Done():
			return false
		case <-time.After(c.reconnectTimeout):
		}
	}
}

func (c *Connection) Channel(ctx context.Context) (*Channel, error) {
	amqpCh, err := c.Connection().Channel()
	if err != nil {
		return nil, errors.Wrap(err, "failed to open channel")
	}
	ctx, cancel := context.WithCancel(ctx)
	ch := &Channel{
		ch:               amqpCh,
		conn:             c,
		reconnectTimeout: c.reconnectTimeout,
		cancel:           cancel,
		l:                log.With().Str("component", "amqp-channel").Logger(),
	}
	go ch.watch(ctx)
	return ch, nil
}

func (ch *Channel) Channel() *amqp.Channel {
	ch.m.RLock()
	defer ch.m.RUnlock()
	return ch.ch
}

func (ch *Channel) Close() error {
	if !ch.closed.CompareAndSwap(false, true) {
		return ChannelAlreadyClosedErr
	}
	ch.cancel()
	if err := ch.Channel().Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		return errors.Wrap(err, "failed to close amqp channel")
	}
	return nil
}

func (ch *Channel) IsClosed() bool {
	return ch.closed.Load()
}

// ExchangeDeclare declares a durable exchange of the given kind.
func (ch *Channel) ExchangeDeclare(name, kind string) error {
	if err := ch.Channel().ExchangeDeclare(name, kind, true, false, false, false, nil); err != nil {
		return errors.Wrapf(err, "failed to declare exchange %s", name)
	}
	return nil
}

func (ch *Channel) Publish(ctx context.Context, exchange string, key string, mandatory bool, immediate bool, msg amqp.Publishing) error {
	if err := ch.Channel().PublishWithContext(ctx, exchange, key, mandatory, immediate, msg); err != nil {
		return errors.Wrap(err, "failed to publish")
	}
	return nil
}

func (ch *Channel) watch(ctx context.Context) {
	for {
		closeC := ch.Channel().NotifyClose(make(chan *amqp.Error, 1))
		select {
		case <-ctx.Done():
			ch.l.Debug().Msg("watcher stopped")
			return
		case err, ok := <-closeC:
			if !ok || ch.closed.Load() {
				ch.l.Debug().Msg("watcher stopped")
				return
			}
			ch.l.Warn().Err(err).Msg("channel closed, try to reopen")
			if !ch.reopen(ctx) {
				return
			}
			ch.l.Debug().Msg("amqp channel reopened")
		}
	}
}

func (ch *Channel) reopen(ctx context.Context) bool {
	for {
		if ch.closed.Load() {
			return false
		}
		cch, err := ch.conn.Connection().Channel()
		if err == nil {
			ch.m.Lock()
			ch.ch = cch
			ch.m.Unlock()
			return true
		}
		ch.l.Warn().Err(err).Msg("amqp channel reopen error")
		select {
		case <-ctx.Done():
			return false
		case <-time.After(ch.reconnectTimeout):
		}
	}
}

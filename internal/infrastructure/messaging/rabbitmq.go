package messaging

import (
	"context"
	"encoding/json"
	"time"

	"shiftmatch/internal/config"
	"shiftmatch/internal/domain/match"
	"shiftmatch/internal/logger"

	"github.com/cockroachdb/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	DefaultExchange = "matches"
	contentTypeJSON = "application/json"
	confirmTimeout  = 5 * time.Second
)

var ErrNacked = errors.New("publish NACK from broker")

// confirmation is the broker's verdict on one published message.
type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

type channel interface {
	publish(ctx context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error)
	Close() error
}

type amqpChannel struct {
	*amqp.Channel
}

func (c amqpChannel) publish(ctx context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error) {
	dc, err := c.PublishWithDeferredConfirmWithContext(ctx, exchange, key, false, false, msg)
	if err != nil {
		return nil, err
	}
	if dc == nil {
		return nil, errors.New("channel is not in confirm mode")
	}
	return dc, nil
}

// Publisher sends match events to a topic exchange and waits for the broker
// confirm of each message. Each publish waits on its own delivery tag.
type Publisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string
	log      *zap.Logger

	confirmTimeout time.Duration
}

func Dial(cfg config.AMQPConfig, log *zap.Logger) (*Publisher, error) {
	if cfg.URL == "" {
		return nil, errors.New("amqp url not configured")
	}
	exchange := cfg.Exchange
	if exchange == "" {
		exchange = DefaultExchange
	}

	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "amqp dial")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "amqp channel")
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Wrapf(err, "declare exchange %s", exchange)
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Wrap(err, "enable confirms")
	}

	p := newPublisher(amqpChannel{ch}, exchange, log)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange string, log *zap.Logger) *Publisher {
	return &Publisher{
		ch:             ch,
		exchange:       exchange,
		log:            logger.Component(log, "amqp"),
		confirmTimeout: confirmTimeout,
	}
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

func (p *Publisher) Ping() error {
	if p == nil || p.conn == nil || p.conn.IsClosed() {
		return errors.New("rabbitmq connection is closed")
	}
	return nil
}

func (p *Publisher) PublishMatchProposed(ctx context.Context, ev match.ProposedEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "encode event")
	}
	if err := p.publish(ctx, match.EventMatchProposed, body); err != nil {
		return errors.Wrapf(err, "publish %s", match.EventMatchProposed)
	}
	p.log.Debug("event published",
		zap.String(logger.FieldMatchID, ev.MatchID.String()),
		zap.String(logger.FieldWorkerID, ev.WorkerID.String()),
	)
	return nil
}

func (p *Publisher) publish(ctx context.Context, key string, body []byte) error {
	conf, err := p.ch.publish(ctx, p.exchange, key, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  contentTypeJSON,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return err
	}

	wctx, cancel := context.WithTimeout(ctx, p.confirmTimeout)
	defer cancel()
	ack, err := conf.WaitContext(wctx)
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return errors.Wrap(err, "publish confirm timed out")
		}
		return err
	}
	if !ack {
		return ErrNacked
	}
	return nil
}

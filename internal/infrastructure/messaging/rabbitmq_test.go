package messaging

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"shiftmatch/internal/config"
	"shiftmatch/internal/domain/match"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeConfirm acks or nacks at once, or never answers when pending.
type fakeConfirm struct {
	ack     bool
	pending bool
}

func (c fakeConfirm) WaitContext(ctx context.Context) (bool, error) {
	if c.pending {
		<-ctx.Done()
		return false, ctx.Err()
	}
	return c.ack, nil
}

type fakeChannel struct {
	confirms []fakeConfirm
	err      error
	sent     []amqp.Publishing
	keys     []string
	targets  []string
}

func (f *fakeChannel) publish(_ context.Context, exchange, key string, msg amqp.Publishing) (confirmation, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.targets = append(f.targets, exchange)
	f.keys = append(f.keys, key)
	f.sent = append(f.sent, msg)

	conf := fakeConfirm{ack: true}
	if len(f.confirms) > 0 {
		conf, f.confirms = f.confirms[0], f.confirms[1:]
	}
	return conf, nil
}

func (f *fakeChannel) Close() error { return nil }

func newFake(confirms ...fakeConfirm) (*fakeChannel, *Publisher) {
	ch := &fakeChannel{confirms: confirms}
	p := newPublisher(ch, DefaultExchange, zap.NewNop())
	p.confirmTimeout = 50 * time.Millisecond
	return ch, p
}

func event() match.ProposedEvent {
	return match.ProposedEvent{
		MatchID:    uuid.New(),
		WorkerID:   uuid.New(),
		JobID:      uuid.New(),
		JobTitle:   "Barista",
		StartTime:  time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC),
		EndTime:    time.Date(2030, 6, 1, 13, 0, 0, 0, time.UTC),
		HourlyRate: 12,
		Score:      85,
		ProposedAt: time.Date(2030, 5, 31, 9, 0, 0, 0, time.UTC),
	}
}

func TestPublishMatchProposed_Confirmed(t *testing.T) {
	ch, p := newFake()
	ev := event()

	require.NoError(t, p.PublishMatchProposed(context.Background(), ev))
	require.Len(t, ch.sent, 1)
	assert.Equal(t, []string{DefaultExchange}, ch.targets)
	assert.Equal(t, []string{match.EventMatchProposed}, ch.keys)
	assert.Equal(t, amqp.Persistent, ch.sent[0].DeliveryMode)
	assert.Equal(t, "application/json", ch.sent[0].ContentType)

	var got map[string]any
	require.NoError(t, json.Unmarshal(ch.sent[0].Body, &got))
	assert.Equal(t, ev.MatchID.String(), got["matchId"])
	assert.Equal(t, "Barista", got["jobTitle"])
}

func TestPublishMatchProposed_Nack(t *testing.T) {
	_, p := newFake(fakeConfirm{ack: false})
	err := p.PublishMatchProposed(context.Background(), event())
	assert.True(t, errors.Is(err, ErrNacked))
}

func TestPublishMatchProposed_TimeoutDoesNotLeakIntoNextPublish(t *testing.T) {
	ch, p := newFake(fakeConfirm{pending: true}, fakeConfirm{ack: false}, fakeConfirm{ack: true})

	err := p.PublishMatchProposed(context.Background(), event())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.Contains(t, err.Error(), "timed out")

	err = p.PublishMatchProposed(context.Background(), event())
	assert.True(t, errors.Is(err, ErrNacked))

	assert.NoError(t, p.PublishMatchProposed(context.Background(), event()))
	assert.Len(t, ch.sent, 3)
}

func TestPublishMatchProposed_CancelledWhileWaiting(t *testing.T) {
	_, p := newFake(fakeConfirm{pending: true})
	p.confirmTimeout = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := p.PublishMatchProposed(ctx, event())
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.NotContains(t, err.Error(), "confirm timed out")

	assert.NoError(t, p.PublishMatchProposed(context.Background(), event()))
}

func TestPublishMatchProposed_ChannelError(t *testing.T) {
	ch, p := newFake()
	ch.err = amqp.ErrClosed
	err := p.PublishMatchProposed(context.Background(), event())
	assert.True(t, errors.Is(err, amqp.ErrClosed))
}

func TestDial_RequiresURL(t *testing.T) {
	_, err := Dial(config.AMQPConfig{}, zap.NewNop())
	assert.Error(t, err)
}

func TestPing_Disconnected(t *testing.T) {
	var p *Publisher
	assert.Error(t, p.Ping())
	p.Close()
}

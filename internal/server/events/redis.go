package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/synapseflow/gateway/pkg/constants"
	"github.com/synapseflow/gateway/pkg/errors"
)

// mirrorMessage is the JSON document published to Redis. Unlike the SSE
// body it includes the event id, since pub/sub has no framing of its own.
type mirrorMessage struct {
	ID        int64     `json:"id"`
	Type      EventType `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// RedisMirror publishes hub events to a Redis pub/sub channel so observers
// in other processes can follow the stream. Publishing happens on the Run
// goroutine; a full queue drops events with a warning.
type RedisMirror struct {
	client  *redis.Client
	channel string
	queue   chan Event
	timeout time.Duration
	logger  *zerolog.Logger
}

// NewRedisMirror creates a mirror publishing on channel.
func NewRedisMirror(client *redis.Client, channel string, logger *zerolog.Logger) *RedisMirror {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if channel == "" {
		channel = constants.DefaultRedisChannel
	}
	return &RedisMirror{
		client:  client,
		channel: channel,
		queue:   make(chan Event, constants.ListenerBufferSize),
		timeout: constants.MirrorTimeout,
		logger:  logger,
	}
}

// NewRedisMirrorFromURL parses a redis:// URL and creates a mirror.
func NewRedisMirrorFromURL(url, channel string, logger *zerolog.Logger) (*RedisMirror, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.NewConfigError("redis", "invalid REDIS_URL", err)
	}
	return NewRedisMirror(redis.NewClient(opts), channel, logger), nil
}

// Channel returns the pub/sub channel name.
func (m *RedisMirror) Channel() string {
	return m.channel
}

// Ping checks the Redis connection.
func (m *RedisMirror) Ping(ctx context.Context) error {
	return m.client.Ping(ctx).Err()
}

// Publish queues ev for publication.
func (m *RedisMirror) Publish(ev Event) {
	select {
	case m.queue <- ev:
	default:
		m.logger.Warn().
			Int64("event_id", ev.ID).
			Str("event_type", string(ev.Type)).
			Msg("Mirror queue full, event dropped")
	}
}

// Run publishes queued events until ctx is cancelled, then drains what is
// left. Should be called in a goroutine.
func (m *RedisMirror) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			m.drain()
			return
		case ev := <-m.queue:
			m.publish(ctx, ev)
		}
	}
}

func (m *RedisMirror) drain() {
	for {
		select {
		case ev := <-m.queue:
			m.publish(context.Background(), ev)
		default:
			return
		}
	}
}

func (m *RedisMirror) publish(ctx context.Context, ev Event) {
	payload, err := json.Marshal(mirrorMessage{ID: ev.ID, Type: ev.Type, Data: ev.Data, Timestamp: ev.Timestamp})
	if err != nil {
		m.logger.Error().Err(err).Int64("event_id", ev.ID).Msg("Failed to marshal mirrored event")
		return
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.timeout)
	defer cancel()

	if err := m.client.Publish(pctx, m.channel, payload).Err(); err != nil {
		m.logger.Warn().
			Err(err).
			Int64("event_id", ev.ID).
			Str("channel", m.channel).
			Msg("Failed to mirror event")
	}
}

// Close closes the Redis client.
func (m *RedisMirror) Close() error {
	return m.client.Close()
}

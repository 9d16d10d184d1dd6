package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synapseflow/gateway/pkg/errors"
)

func TestRedisMirrorPublishesHubEvents(t *testing.T) {
	s := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	mirror := NewRedisMirror(client, "test:events", nil)
	t.Cleanup(func() { _ = mirror.Close() })
	assert.Equal(t, "test:events", mirror.Channel())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, mirror.Ping(ctx))

	sub := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = sub.Close() })
	pubsub := sub.Subscribe(ctx, "test:events")
	t.Cleanup(func() { _ = pubsub.Close() })
	_, err := pubsub.Receive(ctx)
	require.NoError(t, err)

	go mirror.Run(ctx)

	hub := NewHub(nil, WithMirror(mirror))
	hub.Broadcast(PapersFound, map[string]any{"count": 1000})

	rctx, rcancel := context.WithTimeout(ctx, 2*time.Second)
	defer rcancel()
	msg, err := pubsub.ReceiveMessage(rctx)
	require.NoError(t, err)

	var got mirrorMessage
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, PapersFound, got.Type)
	assert.Equal(t, map[string]any{"count": float64(1000)}, got.Data)
}

func TestRedisMirrorFailureDoesNotAffectListeners(t *testing.T) {
	s := miniredis.RunT(t)
	mirror, err := NewRedisMirrorFromURL("redis://"+s.Addr(), "", nil)
	require.NoError(t, err)
	assert.Equal(t, "synapse:events", mirror.Channel())
	s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go mirror.Run(ctx)
	defer cancel()

	hub := NewHub(nil, WithMirror(mirror))
	l := &mockListener{}
	_, err = hub.Register(l)
	require.NoError(t, err)

	hub.Broadcast(Processing, nil)
	assert.Equal(t, []int64{1}, l.ids())
	assert.Equal(t, 1, hub.ListenerCount())
}

func TestRedisMirrorInvalidURL(t *testing.T) {
	_, err := NewRedisMirrorFromURL("not-a-url://", "", nil)
	assert.True(t, errors.IsConfigError(err))
}

package sse

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synapseflow/gateway/internal/server/events"
	"github.com/synapseflow/gateway/pkg/errors"
	"github.com/synapseflow/gateway/pkg/logging"
)

// frame is one parsed SSE message.
type frame struct {
	id      int64
	hasID   bool
	data    string
	comment string
}

func (f frame) event(t *testing.T) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal([]byte(f.data), &m))
	return m
}

// readFrames parses SSE frames from body onto a channel.
func readFrames(body *bufio.Reader) <-chan frame {
	out := make(chan frame, 64)
	go func() {
		defer close(out)
		var cur frame
		for {
			line, err := body.ReadString('\n')
			if err != nil {
				return
			}
			line = strings.TrimRight(line, "\n")
			switch {
			case line == "":
				out <- cur
				cur = frame{}
			case strings.HasPrefix(line, ":"):
				cur.comment = line[1:]
			case strings.HasPrefix(line, "id: "):
				cur.id, _ = strconv.ParseInt(line[4:], 10, 64)
				cur.hasID = true
			case strings.HasPrefix(line, "data: "):
				cur.data = line[6:]
			}
		}
	}()
	return out
}

func next(t *testing.T, frames <-chan frame) frame {
	t.Helper()
	select {
	case f, ok := <-frames:
		require.True(t, ok, "stream closed")
		return f
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for frame")
		return frame{}
	}
}

func connect(t *testing.T, ctx context.Context, url string) (*http.Response, <-chan frame) {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp, readFrames(bufio.NewReader(resp.Body))
}

func TestListenerFraming(t *testing.T) {
	rec := httptest.NewRecorder()
	l := NewListener(rec, time.Second)
	assert.Equal(t, Connecting, l.State())

	require.NoError(t, l.Open())
	assert.Equal(t, Connected, l.State())
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Equal(t, "keep-alive", rec.Header().Get("Connection"))

	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, l.Send(events.Event{ID: 7, Type: events.Processing, Data: map[string]any{"progress": 25}, Timestamp: ts}))
	require.NoError(t, l.Keepalive())
	require.NoError(t, l.Send(events.Event{ID: 7, Type: events.Connected, Data: map[string]any{"message": "hi"}, Timestamp: ts}))

	want := "id: 7\ndata: {\"type\":\"processing\",\"data\":{\"progress\":25},\"timestamp\":\"2025-01-02T03:04:05Z\"}\n\n" +
		":keepalive\n\n" +
		"data: {\"type\":\"connected\",\"data\":{\"message\":\"hi\"},\"timestamp\":\"2025-01-02T03:04:05Z\"}\n\n"
	assert.Equal(t, want, rec.Body.String())
	assert.True(t, rec.Flushed)

	require.NoError(t, l.Close())
	require.NoError(t, l.Close())
	assert.Equal(t, Disconnected, l.State())
	assert.ErrorIs(t, l.Send(events.Event{ID: 8}), errors.ErrTransportClosed)
	assert.ErrorIs(t, l.Keepalive(), errors.ErrTransportClosed)

	select {
	case <-l.Done():
	default:
		t.Fatal("Done not closed")
	}
}

func TestHandlerStream(t *testing.T) {
	tl := logging.NewTestLogger(t)
	hub := events.NewHub(tl.Logger)
	srv := httptest.NewServer(NewHandler(hub, time.Second, tl.Logger))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	resp, frames := connect(t, ctx, srv.URL)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	assert.Equal(t, "no-cache", resp.Header.Get("Cache-Control"))

	hello := next(t, frames)
	assert.False(t, hello.hasID)
	ev := hello.event(t)
	assert.Equal(t, "connected", ev["type"])
	assert.Equal(t, map[string]any{"message": events.DefaultGreeting}, ev["data"])
	assert.NotEmpty(t, ev["timestamp"])

	require.Eventually(t, func() bool { return hub.ListenerCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Broadcast(events.PapersFound, map[string]any{"count": 1000})
	hub.Keepalive()
	hub.Broadcast(events.Processing, map[string]any{"progress": 25})

	f := next(t, frames)
	assert.Equal(t, int64(1), f.id)
	assert.Equal(t, "papers-found", f.event(t)["type"])

	ka := next(t, frames)
	assert.False(t, ka.hasID)
	assert.Equal(t, "keepalive", ka.comment)
	assert.Empty(t, ka.data)

	f = next(t, frames)
	assert.Equal(t, int64(2), f.id)
}

func TestHandlerClientDisconnectUnregisters(t *testing.T) {
	hub := events.NewHub(nil)
	srv := httptest.NewServer(NewHandler(hub, time.Second, logging.NewNopLogger()))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	_, frames := connect(t, ctx, srv.URL)
	next(t, frames)
	require.Eventually(t, func() bool { return hub.ListenerCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	assert.Eventually(t, func() bool { return hub.ListenerCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandlerHubShutdownEndsStream(t *testing.T) {
	hub := events.NewHub(nil)
	srv := httptest.NewServer(NewHandler(hub, time.Second, logging.NewNopLogger()))
	t.Cleanup(srv.Close)

	_, frames := connect(t, context.Background(), srv.URL)
	next(t, frames)
	require.Eventually(t, func() bool { return hub.ListenerCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Shutdown()

	last := next(t, frames)
	assert.Equal(t, "server-shutdown", last.event(t)["type"])

	select {
	case _, ok := <-frames:
		assert.False(t, ok, "stream should end after shutdown")
	case <-time.After(2 * time.Second):
		t.Fatal("stream not closed after shutdown")
	}
}

func TestHandlerRejectsAfterShutdown(t *testing.T) {
	hub := events.NewHub(nil)
	hub.Shutdown()
	srv := httptest.NewServer(NewHandler(hub, 0, logging.NewNopLogger()))
	t.Cleanup(srv.Close)

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, 0, hub.ListenerCount())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "connecting", Connecting.String())
	assert.Equal(t, "connected", Connected.String())
	assert.Equal(t, "disconnected", Disconnected.String())
	assert.Equal(t, "unknown", State(9).String())
}

func TestHandlerConnectedFrameDoesNotRepeatBroadcastID(t *testing.T) {
	hub := events.NewHub(nil)
	hub.Broadcast(events.Processing, nil)
	hub.Broadcast(events.Processing, nil)

	srv := httptest.NewServer(NewHandler(hub, time.Second, logging.NewNopLogger()))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, frames := connect(t, ctx, srv.URL)

	hello := next(t, frames)
	assert.False(t, hello.hasID, "id 2 was already sent to earlier listeners")
	assert.Equal(t, "connected", hello.event(t)["type"])

	require.Eventually(t, func() bool { return hub.ListenerCount() == 1 }, time.Second, 5*time.Millisecond)
	hub.Broadcast(events.Processing, nil)

	f := next(t, frames)
	assert.True(t, f.hasID)
	assert.Equal(t, int64(3), f.id)
}

package events

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synapseflow/gateway/pkg/errors"
	"github.com/synapseflow/gateway/pkg/logging"
)

// mockListener records everything the hub writes to it.
type mockListener struct {
	mu         sync.Mutex
	events     []Event
	keepalives int
	closes     int
	failSend   bool
	failPing   bool
}

func (m *mockListener) Send(ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSend {
		return stderrors.New("broken pipe")
	}
	m.events = append(m.events, ev)
	return nil
}

func (m *mockListener) Keepalive() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPing {
		return stderrors.New("broken pipe")
	}
	m.keepalives++
	return nil
}

func (m *mockListener) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closes++
	return nil
}

func (m *mockListener) fail() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failSend = true
	m.failPing = true
}

func (m *mockListener) received() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}

func (m *mockListener) ids() []int64 {
	var ids []int64
	for _, ev := range m.received() {
		if ev.Type != Connected {
			ids = append(ids, ev.ID)
		}
	}
	return ids
}

func (m *mockListener) closeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes
}

func (m *mockListener) keepaliveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keepalives
}

type recordingMirror struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingMirror) Publish(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func newTestHub(t *testing.T, opts ...HubOption) (*Hub, *logging.TestLogger) {
	t.Helper()
	tl := logging.NewTestLogger(t)
	return NewHub(tl.Logger, opts...), tl
}

func TestHubRegisterSendsConnected(t *testing.T) {
	hub, _ := newTestHub(t, WithGreeting("hello"))

	hub.Broadcast(Processing, nil)
	hub.Broadcast(Processing, nil)

	l := &mockListener{}
	id, err := hub.Register(l)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, 1, hub.ListenerCount())

	got := l.received()
	require.Len(t, got, 1)
	assert.Equal(t, Connected, got[0].Type)
	assert.Equal(t, int64(2), got[0].ID)
	assert.Equal(t, map[string]any{"message": "hello"}, got[0].Data)

	// connected does not consume an id
	assert.Equal(t, int64(2), hub.LastEventID())
}

func TestHubRegisterFailingListener(t *testing.T) {
	hub, _ := newTestHub(t)
	l := &mockListener{failSend: true}

	_, err := hub.Register(l)
	require.Error(t, err)
	assert.True(t, errors.IsTransportClosed(err))
	assert.Equal(t, 0, hub.ListenerCount())
	assert.Equal(t, 1, l.closeCount())
}

func TestHubIDsStrictlyIncreasingAndGapFree(t *testing.T) {
	hub, _ := newTestHub(t)

	early := &mockListener{}
	_, err := hub.Register(early)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		hub.Broadcast(Processing, map[string]any{"progress": i})
	}

	late := &mockListener{}
	_, err = hub.Register(late)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		hub.Broadcast(Processing, map[string]any{"progress": i})
	}

	assert.Equal(t, []int64{1, 2, 3, 4, 5, 6, 7}, early.ids())
	assert.Equal(t, []int64{4, 5, 6, 7}, late.ids())

	// late listener's baseline is the id before its first event
	assert.Equal(t, int64(3), late.received()[0].ID)
}

func TestHubBroadcastSameIDToAllListeners(t *testing.T) {
	hub, _ := newTestHub(t)

	listeners := make([]*mockListener, 5)
	for i := range listeners {
		listeners[i] = &mockListener{}
		_, err := hub.Register(listeners[i])
		require.NoError(t, err)
	}

	ev, ok := hub.Broadcast(ResearchStarted, map[string]any{"query": "q"})
	require.True(t, ok)
	assert.Equal(t, int64(1), ev.ID)

	for _, l := range listeners {
		got := l.received()
		require.Len(t, got, 2)
		assert.Equal(t, ev.ID, got[1].ID)
		assert.Equal(t, ResearchStarted, got[1].Type)
	}
}

func TestHubUnregisterIdempotent(t *testing.T) {
	hub, _ := newTestHub(t)

	a, b := &mockListener{}, &mockListener{}
	idA, err := hub.Register(a)
	require.NoError(t, err)
	_, err = hub.Register(b)
	require.NoError(t, err)
	require.Equal(t, 2, hub.ListenerCount())

	assert.True(t, hub.Unregister(idA))
	assert.Equal(t, 1, hub.ListenerCount())
	assert.Equal(t, 1, a.closeCount())

	assert.False(t, hub.Unregister(idA))
	assert.Equal(t, 1, hub.ListenerCount())
	assert.Equal(t, 1, a.closeCount())

	assert.False(t, hub.Unregister("unknown"))
}

func TestHubWriteFailureRemovesListener(t *testing.T) {
	hub, tl := newTestHub(t)

	good, bad := &mockListener{}, &mockListener{}
	_, err := hub.Register(good)
	require.NoError(t, err)
	_, err = hub.Register(bad)
	require.NoError(t, err)

	bad.fail()
	hub.Broadcast(Processing, nil)

	assert.Equal(t, 1, hub.ListenerCount())
	assert.Equal(t, 1, bad.closeCount())
	assert.Equal(t, []int64{1}, good.ids())
	tl.AssertContains(t, "Removed unreachable listener")

	hub.Broadcast(Processing, nil)
	assert.Equal(t, []int64{1, 2}, good.ids())
}

func TestHubKeepalive(t *testing.T) {
	hub, _ := newTestHub(t)

	alive, dead := &mockListener{}, &mockListener{}
	_, err := hub.Register(alive)
	require.NoError(t, err)
	_, err = hub.Register(dead)
	require.NoError(t, err)
	dead.fail()

	hub.Keepalive()

	assert.Equal(t, 1, alive.keepaliveCount())
	assert.Equal(t, 1, hub.ListenerCount())
	assert.Equal(t, int64(0), hub.LastEventID())
}

func TestHubRunTicksAndShutsDown(t *testing.T) {
	hub, _ := newTestHub(t, WithKeepaliveInterval(10*time.Millisecond))
	l := &mockListener{}
	_, err := hub.Register(l)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return l.keepaliveCount() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.True(t, hub.Closed())
	assert.Equal(t, 1, l.closeCount())
}

func TestHubShutdown(t *testing.T) {
	mirror := &recordingMirror{}
	hub, _ := newTestHub(t, WithMirror(mirror))

	listeners := make([]*mockListener, 3)
	for i := range listeners {
		listeners[i] = &mockListener{}
		_, err := hub.Register(listeners[i])
		require.NoError(t, err)
	}
	hub.Broadcast(Processing, nil)

	hub.Shutdown()

	assert.Equal(t, 0, hub.ListenerCount())
	for _, l := range listeners {
		got := l.received()
		require.NotEmpty(t, got)
		last := got[len(got)-1]
		assert.Equal(t, ServerShutdown, last.Type)
		assert.Equal(t, int64(2), last.ID)
		assert.Equal(t, 1, l.closeCount())
	}

	hub.Shutdown()
	for _, l := range listeners {
		assert.Equal(t, 1, l.closeCount())
	}

	_, err := hub.Register(&mockListener{})
	assert.ErrorIs(t, err, errors.ErrHubClosed)

	_, ok := hub.Broadcast(Processing, nil)
	assert.False(t, ok)

	require.Len(t, mirror.events, 2)
	assert.Equal(t, ServerShutdown, mirror.events[1].Type)
}

func TestHubConcurrentBroadcasts(t *testing.T) {
	hub, _ := newTestHub(t)

	listeners := make([]*mockListener, 4)
	for i := range listeners {
		listeners[i] = &mockListener{}
		_, err := hub.Register(listeners[i])
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				hub.Broadcast(Processing, i)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(200), hub.LastEventID())
	for _, l := range listeners {
		ids := l.ids()
		require.Len(t, ids, 200)
		for i, id := range ids {
			assert.Equal(t, int64(i+1), id)
		}
	}
}

// stallingListener blocks each Send for delay and then fails, like a peer
// whose socket stays full until the write deadline fires.
type stallingListener struct {
	mockListener
	delay time.Duration
}

func (s *stallingListener) Send(ev Event) error {
	if ev.Type == Connected {
		return s.mockListener.Send(ev)
	}
	time.Sleep(s.delay)
	return stderrors.New("i/o timeout")
}

func TestHubStalledListenerDelaysBroadcastByItsWriteBound(t *testing.T) {
	hub, _ := newTestHub(t)

	fast := &mockListener{}
	_, err := hub.Register(fast)
	require.NoError(t, err)

	stalled := &stallingListener{delay: 100 * time.Millisecond}
	_, err = hub.Register(stalled)
	require.NoError(t, err)

	start := time.Now()
	ev, ok := hub.Broadcast(Processing, nil)
	elapsed := time.Since(start)
	require.True(t, ok)

	assert.GreaterOrEqual(t, elapsed, stalled.delay)
	assert.Less(t, elapsed, 10*stalled.delay)
	assert.Equal(t, int64(1), ev.ID)
	assert.Equal(t, []int64{1}, fast.ids())
	assert.Equal(t, 1, hub.ListenerCount(), "stalled listener is dropped once its write fails")
	assert.Equal(t, 1, stalled.closeCount())

	start = time.Now()
	_, ok = hub.Broadcast(Processing, nil)
	require.True(t, ok)
	assert.Less(t, time.Since(start), stalled.delay)
	assert.Equal(t, []int64{1, 2}, fast.ids())
}

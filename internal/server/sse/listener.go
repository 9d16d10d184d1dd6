// Package sse binds Server-Sent Events connections to the event hub.
package sse

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/synapseflow/gateway/internal/server/events"
	"github.com/synapseflow/gateway/pkg/errors"
)

// keepaliveFrame is an SSE comment; clients ignore it.
const keepaliveFrame = ":keepalive\n\n"

// State is the lifecycle position of one SSE connection.
type State int32

// Connection states.
const (
	Connecting State = iota
	Connected
	Disconnected
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Listener writes hub events to one SSE response.
type Listener struct {
	mu           sync.Mutex
	w            http.ResponseWriter
	rc           *http.ResponseController
	writeTimeout time.Duration
	state        State

	done chan struct{}
	once sync.Once
}

// NewListener wraps an SSE response. Each write is bounded by writeTimeout.
func NewListener(w http.ResponseWriter, writeTimeout time.Duration) *Listener {
	return &Listener{
		w:            w,
		rc:           http.NewResponseController(w),
		writeTimeout: writeTimeout,
		state:        Connecting,
		done:         make(chan struct{}),
	}
}

// Open sends the stream headers. The listener is Connected afterwards.
func (l *Listener) Open() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	h := l.w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	l.w.WriteHeader(http.StatusOK)

	if err := l.flushLocked(); err != nil {
		return err
	}
	l.state = Connected
	return nil
}

// Send implements events.Listener. The connected event carries no id line:
// it holds no id of its own, and the client's last-event-id stays unset
// until the first broadcast.
func (l *Listener) Send(ev events.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event %d: %w", ev.ID, err)
	}
	if ev.Type == events.Connected {
		return l.write(fmt.Sprintf("data: %s\n\n", data))
	}
	return l.write(fmt.Sprintf("id: %d\ndata: %s\n\n", ev.ID, data))
}

// Keepalive implements events.Listener.
func (l *Listener) Keepalive() error {
	return l.write(keepaliveFrame)
}

func (l *Listener) write(frame string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != Connected {
		return errors.ErrTransportClosed
	}

	if l.writeTimeout > 0 {
		if err := l.rc.SetWriteDeadline(time.Now().Add(l.writeTimeout)); err != nil && !stderrors.Is(err, http.ErrNotSupported) {
			return err
		}
	}
	if _, err := l.w.Write([]byte(frame)); err != nil {
		return err
	}
	return l.flushLocked()
}

func (l *Listener) flushLocked() error {
	if err := l.rc.Flush(); err != nil {
		if stderrors.Is(err, http.ErrNotSupported) {
			return fmt.Errorf("streaming not supported: %w", err)
		}
		return err
	}
	return nil
}

// Close implements events.Listener. It stops further writes and releases
// the handler waiting on Done.
func (l *Listener) Close() error {
	l.mu.Lock()
	l.state = Disconnected
	l.mu.Unlock()

	l.once.Do(func() { close(l.done) })
	return nil
}

// Done is closed once the listener is closed.
func (l *Listener) Done() <-chan struct{} {
	return l.done
}

// State returns the current connection state.
func (l *Listener) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Package websocket binds WebSocket connections to the event hub.
package websocket

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/synapseflow/gateway/internal/server/events"
	"github.com/synapseflow/gateway/pkg/constants"
	"github.com/synapseflow/gateway/pkg/errors"
)

// Message is the JSON document written for each event. WebSocket frames
// carry no id line, so the event id is part of the body.
type Message struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Maximum message size allowed from peer.
const maxMessageSize = 512

// Timing holds the deadlines of one connection. Zero fields take the
// package defaults.
type Timing struct {
	// Keepalive is the hub liveness tick period. A ping goes out on every
	// tick, so the peer must answer within two of them.
	Keepalive time.Duration
	// WriteTimeout bounds a single frame write.
	WriteTimeout time.Duration
}

func (t Timing) writeWait() time.Duration {
	if t.WriteTimeout > 0 {
		return t.WriteTimeout
	}
	return constants.WriteTimeout
}

// pongWait is the time allowed to read the next pong. It must exceed the
// keepalive interval.
func (t Timing) pongWait() time.Duration {
	keepalive := t.Keepalive
	if keepalive <= 0 {
		keepalive = constants.KeepaliveInterval
	}
	return 2 * keepalive
}

// Client is one WebSocket listener.
type Client struct {
	id     events.ListenerID
	conn   *websocket.Conn
	send   chan Message
	ping   chan struct{}
	logger *zerolog.Logger

	pongWait  time.Duration
	writeWait time.Duration

	mu     sync.Mutex
	closed bool
}

// NewClient wraps an upgraded connection.
func NewClient(conn *websocket.Conn, timing Timing, logger *zerolog.Logger) *Client {
	return &Client{
		conn:      conn,
		send:      make(chan Message, constants.ListenerBufferSize),
		ping:      make(chan struct{}, 1),
		logger:    logger,
		pongWait:  timing.pongWait(),
		writeWait: timing.writeWait(),
	}
}

// Send implements events.Listener. It never blocks; a full buffer is a
// delivery failure and gets the client removed.
func (c *Client) Send(ev events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.ErrTransportClosed
	}

	select {
	case c.send <- Message{ID: ev.ID, Type: string(ev.Type), Timestamp: ev.Timestamp, Data: ev.Data}:
		return nil
	default:
		return fmt.Errorf("websocket send buffer full")
	}
}

// Keepalive implements events.Listener by scheduling a ping frame.
func (c *Client) Keepalive() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.ErrTransportClosed
	}
	select {
	case c.ping <- struct{}{}:
	default:
	}
	return nil
}

// Close implements events.Listener. WritePump sends a close frame once the
// queued messages are written.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
	return nil
}

// ReadPump consumes inbound frames so pongs and close frames are processed.
// It returns when the peer goes away.
func (c *Client) ReadPump() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				c.logger.Error().Err(err).Str("listener_id", string(c.id)).Msg("WebSocket read error")
			}
			return
		}
	}
}

// WritePump writes queued messages and pings to the connection.
func (c *Client) WritePump() {
	defer func() { _ = c.conn.Close() }()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if !ok {
				// Hub closed the client
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			data, err := json.Marshal(message)
			if err != nil {
				c.logger.Error().Err(err).Msg("Failed to marshal WebSocket message")
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-c.ping:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

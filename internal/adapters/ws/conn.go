// Package ws is the presence channel: it upgrades authenticated HTTP
// connections, decodes inbound frames into room operations and pumps
// room broadcasts back out.
package ws

import (
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/holoverse/presence/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

type presenceConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newPresenceConn(conn *websocket.Conn, buffer int) *presenceConn {
	return &presenceConn{
		conn: conn,
		send: make(chan core.Frame, buffer),
	}
}

func (c *presenceConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *presenceConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

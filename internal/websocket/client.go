package websocket

import (
	"context"
	"time"

	ws "github.com/coder/websocket"
)

const (
	sendBufferSize = 16
	pingInterval   = 30 * time.Second
)

// Client represents a single WebSocket connection. The rooms set is fixed at
// connect time; a client that joins a new room reconnects to pick it up.
type Client struct {
	hub    *Hub
	conn   *ws.Conn
	send   chan []byte
	userID string
	rooms  map[string]struct{}
}

// NewClient creates a Client tied to the given hub and connection, scoped to
// the rooms the user may see.
func NewClient(hub *Hub, conn *ws.Conn, userID string, roomIDs []string) *Client {
	rooms := make(map[string]struct{}, len(roomIDs))
	for _, id := range roomIDs {
		rooms[id] = struct{}{}
	}
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		userID: userID,
		rooms:  rooms,
	}
}

func (c *Client) canSee(roomID string) bool {
	_, ok := c.rooms[roomID]
	return ok
}

// Run registers the client, starts the write pump, and runs the read pump.
// It blocks until the connection is closed, then unregisters.
func (c *Client) Run(ctx context.Context) {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump(ctx)
	c.readPump(ctx)
}

// readPump reads and discards all incoming messages. It returns on error
// (connection close), which triggers cleanup.
func (c *Client) readPump(ctx context.Context) {
	for {
		_, _, err := c.conn.Read(ctx)
		if err != nil {
			return
		}
	}
}

// writePump drains the send channel and writes messages to the WebSocket.
// It also sends periodic pings to detect stale connections.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				// Hub closed the channel — connection is done
				return
			}
			if err := c.conn.Write(ctx, ws.MessageText, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

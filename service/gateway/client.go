package gateway

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
)

// Client is one live connection to the gateway. The gateway holds it as a
// last-known routing target, not as the owner of the socket lifetime; the
// transport side (read loop + write pump) decides when it dies.
type Client struct {
	ConnID string          // unique within this gateway node
	UserID string          // empty for connections that never identified
	WS     *websocket.Conn // nil in unit tests
	Send   chan []byte     // outbound queue, consumed by a single writer

	done     chan struct{}
	downOnce sync.Once
}

func NewClient(connID, userID string, ws *websocket.Conn, sendQueueSize int) *Client {
	if sendQueueSize <= 0 {
		sendQueueSize = 256
	}
	return &Client{
		ConnID: connID,
		UserID: userID,
		WS:     ws,
		Send:   make(chan []byte, sendQueueSize),
		done:   make(chan struct{}),
	}
}

// Enqueue offers a payload to the writer without blocking. It reports false
// when the client is already down or the queue is full; either way the frame
// is dropped, which is the delivery contract.
func (c *Client) Enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.Send <- payload:
		return true
	default:
		return false
	}
}

// writePump is the single writer for the socket: gorilla conns do not allow
// concurrent writes, so everything funnels through Send. Exits on write
// error or teardown, and keeps the peer alive with pings in between.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.WS.Close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.WS.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case payload := <-c.Send:
			_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WS.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.WS.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.WS.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

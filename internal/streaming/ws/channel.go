package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"healthwatch-cloud/internal/streaming"
)

const (
	sendBufferSize = 32
	writeTimeout   = 10 * time.Second
)

var errChannelClosed = errors.New("ws: channel closed")

// channel adapts one websocket connection to streaming.Channel. Sends are
// queued on a buffered channel and written by a single pump goroutine, which
// preserves FIFO order per connection.
type channel struct {
	id   string
	conn *websocket.Conn

	send      chan streaming.Message
	closeOnce sync.Once
	closed    chan struct{}
}

func newChannel(conn *websocket.Conn) *channel {
	return &channel{
		id:     uuid.NewString(),
		conn:   conn,
		send:   make(chan streaming.Message, sendBufferSize),
		closed: make(chan struct{}),
	}
}

func (c *channel) ID() string { return c.id }

// Send queues an envelope for the write pump. A full buffer means the peer
// is not draining and the channel reports itself dead.
func (c *channel) Send(msg streaming.Message) error {
	select {
	case <-c.closed:
		return errChannelClosed
	default:
	}
	select {
	case c.send <- msg:
		return nil
	case <-c.closed:
		return errChannelClosed
	default:
		return errors.New("ws: send buffer full")
	}
}

func (c *channel) close() {
	c.closeOnce.Do(func() {
		close(c.closed)
		_ = c.conn.Close()
	})
}

// writePump drains the send queue onto the wire. Runs until the channel is
// closed or a write fails.
func (c *channel) writePump() {
	defer c.close()
	for {
		select {
		case <-c.closed:
			return
		case msg := <-c.send:
			data, err := msg.Encode()
			if err != nil {
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}

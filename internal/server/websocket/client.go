package websocket

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

var ErrClientInactive = errors.New("client is inactive")

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512
)

// Client is one browser connection belonging to an account. The
// connection is push-only; inbound frames are read and discarded.
type Client struct {
	ID        string
	AccountID string

	conn       *websocket.Conn
	hub        *WsHub
	send       chan Message
	done       chan struct{}
	closeOnce  sync.Once
	pingPeriod time.Duration
	logger     zerolog.Logger
}

func NewClient(hub *WsHub, conn *websocket.Conn, accountID string, pingPeriod time.Duration) *Client {
	return &Client{
		ID:         uuid.NewString(),
		AccountID:  accountID,
		conn:       conn,
		hub:        hub,
		send:       make(chan Message, 64),
		done:       make(chan struct{}),
		pingPeriod: pingPeriod,
		logger:     hub.Logger,
	}
}

// Serve registers the client and blocks until the connection closes.
func (c *Client) Serve() {
	c.hub.Register(c)
	defer c.hub.Unregister(c)

	go c.writePump()
	c.readPump()
}

func (c *Client) Send(message Message) error {
	select {
	case <-c.done:
		return ErrClientInactive
	default:
	}

	select {
	case c.send <- message:
		return nil
	case <-c.done:
		return ErrClientInactive
	default:
		return errors.New("send channel full")
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *Client) readPump() {
	defer c.Close()

	pongWait := c.pingPeriod * 10 / 9
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug().Err(err).Str("client_id", c.ID).Msg("Unexpected WebSocket close")
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Debug().Err(err).Str("client_id", c.ID).Msg("Failed to write WebSocket message")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}

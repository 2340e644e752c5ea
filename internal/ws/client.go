package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stockroom/internal/logger"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufSize    = 64
)

// Client — одно WebSocket-подключение ленты.
// Жизненный цикл: NewClient -> Start -> [readPump, writePump] -> Close.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan Event

	done   chan struct{}
	cancel context.CancelFunc
	once   sync.Once
}

func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		send: make(chan Event, sendBufSize),
		done: make(chan struct{}),
	}
}

// Start регистрирует клиента в хабе и запускает насосы чтения и записи.
func (c *Client) Start(ctx context.Context) {
	ctx, c.cancel = context.WithCancel(ctx)
	select {
	case c.hub.register <- c:
	case <-ctx.Done():
		c.Close()
		return
	}
	go c.writePump(ctx)
	go c.readPump(ctx)
}

// Close закрывает соединение ровно один раз.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		if c.cancel != nil {
			c.cancel()
		}
		_ = c.conn.Close()
	})
}

// trySend кладёт событие в буфер клиента; переполненный буфер означает
// зависшего клиента — событие для него теряется.
func (c *Client) trySend(ev Event) {
	select {
	case <-c.done:
	case c.send <- ev:
	default:
	}
}

// readPump только потребляет входящие фреймы: поддерживает pong-дедлайн
// и замечает закрытие соединения.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-ctx.Done():
			c.Close()
		}
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Errorf("ws read: %v", err)
			}
			return
		}
	}
}

func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()
	for {
		select {
		case <-ctx.Done():
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutdown"))
			return
		case ev := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(ev); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

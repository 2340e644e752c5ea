package ws

import (
	"context"
	"sync"

	"github.com/stockroom/internal/logger"
)

// Hub рассылает события склада всем подключённым клиентам. Команд от
// клиентов нет — лента только исходящая; входящие фреймы читаются лишь
// ради ping/pong и закрытия.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*Client]struct{}
	maxConns int

	register   chan *Client
	unregister chan *Client
	events     chan Event
	done       chan struct{}
}

func NewHub(maxConns int) *Hub {
	if maxConns <= 0 {
		maxConns = 1000
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		maxConns:   maxConns,
		register:   make(chan *Client, 16),
		unregister: make(chan *Client, 16),
		events:     make(chan Event, 64),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case c := <-h.register:
			h.addClient(c)
		case c := <-h.unregister:
			h.removeClient(c)
		case ev := <-h.events:
			h.fanOut(ev)
		}
	}
}

// Broadcast ставит событие в очередь рассылки. Не блокирует вызывающего:
// при переполненной очереди событие теряется (клиенты переспросят список).
func (h *Hub) Broadcast(ev Event) {
	select {
	case h.events <- ev:
	case <-h.done:
	default:
		logger.Errorf("ws: event queue full, dropping %s", ev.Type)
	}
}

func (h *Hub) addClient(c *Client) {
	h.mu.Lock()
	if len(h.clients) >= h.maxConns {
		h.mu.Unlock()
		logger.Errorf("ws: connection limit %d reached, rejecting client", h.maxConns)
		c.Close()
		return
	}
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	logger.Infof("ws: client connected (%d online)", n)
}

func (h *Hub) removeClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
	}
	n := len(h.clients)
	h.mu.Unlock()
	c.Close()
	logger.Infof("ws: client disconnected (%d online)", n)
}

func (h *Hub) fanOut(ev Event) {
	h.mu.RLock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()
	// Отправка вне блокировки: медленный клиент не держит остальных
	for _, c := range targets {
		c.trySend(ev)
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	targets := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()
	for _, c := range targets {
		c.Close()
	}
}

package memory

import (
	"context"
	"sync"

	"github.com/stockroom/internal/model"
)

// Client — SessionStore в памяти (тесты и локальные запуски без Redis и БД).
// Просроченные сессии не удаляются — как и в остальных реализациях, их
// отсеивает гейт по expires_at.
type Client struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
}

func New() *Client {
	return &Client{sessions: make(map[string]model.Session)}
}

func (c *Client) Close() error { return nil }

func (c *Client) Insert(ctx context.Context, s *model.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sessions[s.Token] = *s
	return nil
}

func (c *Client) Lookup(ctx context.Context, token string) (*model.Session, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.sessions[token]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// Len — число сохранённых сессий (включая просроченные), для тестов.
func (c *Client) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.sessions)
}

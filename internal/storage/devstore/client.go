package devstore

import (
	"context"
	"errors"

	"github.com/stockroom/internal/model"
	"github.com/stockroom/internal/repository"
)

// Client реализует SessionStore поверх Postgres для режима -dev:
// Redis не нужен, сессии переживают перезапуск сервиса.
type Client struct {
	repo *repository.SessionRepository
}

func New(repo *repository.SessionRepository) *Client {
	return &Client{repo: repo}
}

func (c *Client) Close() error { return nil }

func (c *Client) Insert(ctx context.Context, s *model.Session) error {
	return c.repo.Insert(ctx, s)
}

func (c *Client) Lookup(ctx context.Context, token string) (*model.Session, error) {
	s, err := c.repo.GetByToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	return s, err
}

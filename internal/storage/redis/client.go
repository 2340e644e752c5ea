package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stockroom/internal/model"
)

const keyPrefix = "session:"

type Client struct {
	cli *redis.Client
}

func New(ctx context.Context, url string) (*Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis parse url: %w", err)
	}
	cli := redis.NewClient(opts)
	if err := cli.Ping(ctx).Err(); err != nil {
		if closeErr := cli.Close(); closeErr != nil {
			return nil, fmt.Errorf("redis ping: %w (close: %v)", err, closeErr)
		}
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Client{cli: cli}, nil
}

func (c *Client) Close() error {
	return c.cli.Close()
}

// Insert сохраняет сессию по ключу session:{token}. TTL ключа ставится по
// expires_at — Redis сам подчистит заведомо мёртвые записи; на валидность это
// не влияет, Lookup-ом всё равно управляет сравнение expires_at в гейте.
func (c *Client) Insert(ctx context.Context, s *model.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("redis session encode: %w", err)
	}
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	if err := c.cli.Set(ctx, keyPrefix+s.Token, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis session set: %w", err)
	}
	return nil
}

func (c *Client) Lookup(ctx context.Context, token string) (*model.Session, error) {
	val, err := c.cli.Get(ctx, keyPrefix+token).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis session get: %w", err)
	}
	var s model.Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("redis session decode: %w", err)
	}
	return &s, nil
}

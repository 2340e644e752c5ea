package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stockroom/internal/logger"
)

// PushSubscription — браузерная Web Push подписка (формат PushSubscription API).
type PushSubscription struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

type PushRepository struct {
	pool *pgxpool.Pool
}

func NewPushRepository(pool *pgxpool.Pool) *PushRepository {
	return &PushRepository{pool: pool}
}

// Upsert сохраняет подписку; повторная подписка того же браузера обновляет ключи.
func (r *PushRepository) Upsert(ctx context.Context, sub *PushSubscription) error {
	defer logger.DeferLogDuration("push.Upsert", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO push_subscriptions (endpoint, p256dh, auth, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (endpoint) DO UPDATE SET p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth`,
		sub.Endpoint, sub.Keys.P256dh, sub.Keys.Auth, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("pushRepo.Upsert: %w", err)
	}
	return nil
}

func (r *PushRepository) Delete(ctx context.Context, endpoint string) error {
	defer logger.DeferLogDuration("push.Delete", time.Now())()
	_, err := r.pool.Exec(ctx, `DELETE FROM push_subscriptions WHERE endpoint = $1`, endpoint)
	if err != nil {
		return fmt.Errorf("pushRepo.Delete: %w", err)
	}
	return nil
}

func (r *PushRepository) List(ctx context.Context) ([]PushSubscription, error) {
	defer logger.DeferLogDuration("push.List", time.Now())()
	rows, err := r.pool.Query(ctx, `SELECT endpoint, p256dh, auth FROM push_subscriptions`)
	if err != nil {
		return nil, fmt.Errorf("pushRepo.List: %w", err)
	}
	defer rows.Close()
	var list []PushSubscription
	for rows.Next() {
		var sub PushSubscription
		if err := rows.Scan(&sub.Endpoint, &sub.Keys.P256dh, &sub.Keys.Auth); err != nil {
			return nil, fmt.Errorf("pushRepo.List scan: %w", err)
		}
		list = append(list, sub)
	}
	return list, rows.Err()
}

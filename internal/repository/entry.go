package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stockroom/internal/logger"
	"github.com/stockroom/internal/model"
)

type EntryRepository struct {
	pool *pgxpool.Pool
}

func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

// ListRecent возвращает последние limit записей журнала, новые первыми.
func (r *EntryRepository) ListRecent(ctx context.Context, limit int) ([]model.Entry, error) {
	defer logger.DeferLogDuration("entry.ListRecent", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT id, value, created_at FROM entries ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("entryRepo.ListRecent: %w", err)
	}
	defer rows.Close()
	var list []model.Entry
	for rows.Next() {
		var e model.Entry
		if err := rows.Scan(&e.ID, &e.Value, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("entryRepo.ListRecent scan: %w", err)
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *EntryRepository) Create(ctx context.Context, e *model.Entry) error {
	defer logger.DeferLogDuration("entry.Create", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO entries (id, value, created_at) VALUES ($1, $2, $3)`,
		e.ID, e.Value, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("entryRepo.Create: %w", err)
	}
	return nil
}

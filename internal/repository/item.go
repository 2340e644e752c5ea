package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stockroom/internal/logger"
	"github.com/stockroom/internal/model"
)

var ErrNotFound = errors.New("not found")

type ItemRepository struct {
	pool *pgxpool.Pool
}

func NewItemRepository(pool *pgxpool.Pool) *ItemRepository {
	return &ItemRepository{pool: pool}
}

// List возвращает все позиции, новые первыми.
func (r *ItemRepository) List(ctx context.Context) ([]model.Item, error) {
	defer logger.DeferLogDuration("item.List", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, qty, created_at FROM inventory_items ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("itemRepo.List: %w", err)
	}
	defer rows.Close()
	var list []model.Item
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Qty, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("itemRepo.List scan: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

func (r *ItemRepository) Create(ctx context.Context, it *model.Item) error {
	defer logger.DeferLogDuration("item.Create", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO inventory_items (id, name, qty, created_at) VALUES ($1, $2, $3, $4)`,
		it.ID, it.Name, it.Qty, it.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("itemRepo.Create: %w", err)
	}
	return nil
}

func (r *ItemRepository) Update(ctx context.Context, it *model.Item) error {
	defer logger.DeferLogDuration("item.Update", time.Now())()
	tag, err := r.pool.Exec(ctx,
		`UPDATE inventory_items SET name = $1, qty = $2 WHERE id = $3`,
		it.Name, it.Qty, it.ID,
	)
	if err != nil {
		return fmt.Errorf("itemRepo.Update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	defer logger.DeferLogDuration("item.Delete", time.Now())()
	tag, err := r.pool.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("itemRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceAll перезаписывает весь список в одной транзакции (wipe + rewrite):
// для небольшого склада это проще и надёжнее поштучного diff-а.
func (r *ItemRepository) ReplaceAll(ctx context.Context, items []model.Item) error {
	defer logger.DeferLogDuration("item.ReplaceAll", time.Now())()
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("itemRepo.ReplaceAll begin: %w", err)
	}
	defer tx.Rollback(ctx)
	if _, err := tx.Exec(ctx, `DELETE FROM inventory_items`); err != nil {
		return fmt.Errorf("itemRepo.ReplaceAll delete: %w", err)
	}
	for i := range items {
		it := &items[i]
		if _, err := tx.Exec(ctx,
			`INSERT INTO inventory_items (id, name, qty, created_at) VALUES ($1, $2, $3, $4)`,
			it.ID, it.Name, it.Qty, it.CreatedAt,
		); err != nil {
			return fmt.Errorf("itemRepo.ReplaceAll insert %s: %w", it.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("itemRepo.ReplaceAll commit: %w", err)
	}
	return nil
}

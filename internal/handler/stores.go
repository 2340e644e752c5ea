package handler

import (
	"context"

	"github.com/stockroom/internal/model"
	"github.com/stockroom/internal/repository"
	"github.com/stockroom/internal/ws"
)

// Интерфейсы под те операции, что нужны хендлерам; pgx-репозитории из
// internal/repository реализуют их, тесты подставляют фейки в памяти.

type ItemStore interface {
	List(ctx context.Context) ([]model.Item, error)
	Create(ctx context.Context, it *model.Item) error
	Update(ctx context.Context, it *model.Item) error
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, items []model.Item) error
}

type EntryStore interface {
	ListRecent(ctx context.Context, limit int) ([]model.Entry, error)
	Create(ctx context.Context, e *model.Entry) error
}

type SubscriptionStore interface {
	Upsert(ctx context.Context, sub *repository.PushSubscription) error
	Delete(ctx context.Context, endpoint string) error
}

// Broadcaster — живая лента (*ws.Hub). nil — лента отключена.
type Broadcaster interface {
	Broadcast(ev ws.Event)
}

// StockNotifier — пуш «позиция закончилась» (*push.Notifier). nil — пуши отключены.
type StockNotifier interface {
	ItemOutOfStock(ctx context.Context, item model.Item)
}

package storage

import (
	"context"

	"github.com/stockroom/internal/model"
)

// SessionStore — хранилище сессий. Login пишет, Access Gate читает.
// Требование к реализациям: read-your-writes — токен, записанный Insert,
// сразу виден Lookup, в том числе при параллельных логинах.
// Реализации: redis.Client (prod), devstore.Client (-dev, сессии в Postgres),
// memory.Client (тесты).
type SessionStore interface {
	// Insert добавляет ровно одну сессию; существующие не затрагиваются.
	Insert(ctx context.Context, s *model.Session) error
	// Lookup возвращает (nil, nil), если токена нет. Ошибка означает
	// недоступность хранилища и не должна сливаться с "нет сессии".
	// Проверка expires_at — забота вызывающего (Access Gate), не хранилища.
	Lookup(ctx context.Context, token string) (*model.Session, error)
	Close() error
}

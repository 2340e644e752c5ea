package middleware

import (
	"context"

	"github.com/stockroom/internal/model"
)

type contextKey string

const sessionKey contextKey = "session"

// GetSession возвращает сессию из контекста (кладётся SessionAuth) или nil.
func GetSession(ctx context.Context) *model.Session {
	s, _ := ctx.Value(sessionKey).(*model.Session)
	return s
}

// WithSession кладёт сессию в контекст. Используется SessionAuth и тестами хендлеров.
func WithSession(ctx context.Context, s *model.Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

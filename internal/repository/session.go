package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stockroom/internal/logger"
	"github.com/stockroom/internal/model"
)

// SessionRepository — сессии в Postgres (режим -dev: без Redis, сессии
// переживают перезапуск). Строки никогда не обновляются и не удаляются —
// просроченные отсеивает гейт по expires_at.
type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

func (r *SessionRepository) Insert(ctx context.Context, s *model.Session) error {
	defer logger.DeferLogDuration("session.Insert", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (token, role, created_at, expires_at) VALUES ($1, $2, $3, $4)`,
		s.Token, string(s.Role), s.CreatedAt, s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("sessionRepo.Insert: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*model.Session, error) {
	defer logger.DeferLogDuration("session.GetByToken", time.Now())()
	s := &model.Session{}
	var role string
	err := r.pool.QueryRow(ctx,
		`SELECT token, role, created_at, expires_at FROM sessions WHERE token = $1`, token,
	).Scan(&s.Token, &role, &s.CreatedAt, &s.ExpiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("sessionRepo.GetByToken: %w", err)
	}
	s.Role = model.Role(role)
	return s, nil
}

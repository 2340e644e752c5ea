package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockroom/internal/model"
	"github.com/stockroom/internal/storage"
)

// SessionTTL — фиксированный срок жизни сессии. Не продлевается.
const SessionTTL = 14 * 24 * time.Hour

var ErrBadCredentials = errors.New("bad credentials")

// Credentials — статические пары логин/пароль из конфигурации.
// BossAltPass — необязательный второй пароль той же boss-учётки
// (общий «мастер-пароль»); пустая строка отключает его.
type Credentials struct {
	InputUser   string
	InputPass   string
	BossUser    string
	BossPass    string
	BossAltPass string
}

// Authenticator выдаёт сессии по статическим учёткам и резолвит bearer-токены.
// Все зависимости передаются явно; ambient-глобалей нет.
type Authenticator struct {
	creds Credentials
	store storage.SessionStore
	now   func() time.Time
}

func NewAuthenticator(creds Credentials, store storage.SessionStore) *Authenticator {
	return &Authenticator{creds: creds, store: store, now: time.Now}
}

// WithClock подменяет источник времени (тесты истечения срока).
func (a *Authenticator) WithClock(now func() time.Time) *Authenticator {
	a.now = now
	return a
}

// timingSafeEqual сравнивает секреты за постоянное время независимо от длины
// входа: обе стороны сначала хешируются, сравниваются дайджесты.
// subtle.ConstantTimeCompare сам по себе сразу возвращается при разной длине.
func timingSafeEqual(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}

// Login проверяет пару логин/пароль и выдаёт новую сессию.
// Порядок проверки: сначала input, затем boss (основной, потом альтернативный
// пароль) — первое совпадение выигрывает. Логин триммится, пароль — нет.
// Ни ограничения частоты, ни блокировки здесь нет.
func (a *Authenticator) Login(ctx context.Context, username, password string) (*model.Session, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrBadCredentials
	}

	var role model.Role
	switch {
	case timingSafeEqual(username, a.creds.InputUser) &&
		timingSafeEqual(password, a.creds.InputPass):
		role = model.RoleInput
	case timingSafeEqual(username, a.creds.BossUser) &&
		(timingSafeEqual(password, a.creds.BossPass) ||
			a.creds.BossAltPass != "" && timingSafeEqual(password, a.creds.BossAltPass)):
		role = model.RoleBoss
	default:
		return nil, ErrBadCredentials
	}

	now := a.now().UTC()
	sess := &model.Session{
		Token:     uuid.New().String(),
		Role:      role,
		CreatedAt: now,
		ExpiresAt: now.Add(SessionTTL),
	}
	if err := a.store.Insert(ctx, sess); err != nil {
		return nil, fmt.Errorf("session store insert: %w", err)
	}
	return sess, nil
}

// Authenticate резолвит токен в сессию. (nil, nil) — токена нет или сессия
// истекла; ошибка — хранилище недоступно (это 500, а не 401).
// Истёкшие сессии не удаляются, они просто перестают резолвиться.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*model.Session, error) {
	if token == "" {
		return nil, nil
	}
	sess, err := a.store.Lookup(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("session store lookup: %w", err)
	}
	if sess == nil || !sess.ValidAt(a.now()) {
		return nil, nil
	}
	return sess, nil
}

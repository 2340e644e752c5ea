package model

import "time"

// Role — закрытый набор ролей. input вносит изменения в остатки,
// boss только читает (обе роли читают списки и выгрузку CSV).
type Role string

const (
	RoleInput Role = "input"
	RoleBoss  Role = "boss"
)

// Known сообщает, входит ли роль в закрытый набор.
func (r Role) Known() bool {
	return r == RoleInput || r == RoleBoss
}

// Session выдаётся при успешном логине. Токен и роль неизменяемы,
// срок жизни фиксированный — продления и отзыва нет, сессия умирает
// только по времени (expires_at проверяется при каждом обращении).
type Session struct {
	Token     string    `json:"token"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ValidAt — сессия действительна строго до expires_at (t < expires_at).
func (s *Session) ValidAt(t time.Time) bool {
	return t.Before(s.ExpiresAt)
}

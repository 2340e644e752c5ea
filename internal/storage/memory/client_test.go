package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stockroom/internal/model"
)

func TestInsertLookup(t *testing.T) {
	c := New()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sess := &model.Session{
		Token:     "tok-1",
		Role:      model.RoleInput,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
	if err := c.Insert(context.Background(), sess); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := c.Lookup(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if got == nil || got.Token != "tok-1" || got.Role != model.RoleInput {
		t.Fatalf("got %+v", got)
	}

	// Возвращается копия: мутации снаружи не трогают хранилище.
	got.Role = model.RoleBoss
	again, _ := c.Lookup(context.Background(), "tok-1")
	if again.Role != model.RoleInput {
		t.Fatalf("lookup must return a copy")
	}
}

func TestLookupMiss(t *testing.T) {
	c := New()
	got, err := c.Lookup(context.Background(), "no-such")
	if got != nil || err != nil {
		t.Fatalf("miss must be (nil, nil), got (%v, %v)", got, err)
	}
}

func TestExpiredSessionsAreKept(t *testing.T) {
	c := New()
	now := time.Now()
	c.Insert(context.Background(), &model.Session{
		Token:     "old",
		Role:      model.RoleBoss,
		CreatedAt: now.Add(-2 * time.Hour),
		ExpiresAt: now.Add(-time.Hour),
	})

	// Хранилище не судит о сроке — это дело гейта.
	got, err := c.Lookup(context.Background(), "old")
	if err != nil || got == nil {
		t.Fatalf("expired session must still be resolvable from the store, got (%v, %v)", got, err)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d", c.Len())
	}
}

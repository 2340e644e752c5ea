package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stockroom/internal/repository"
)

type fakeSubStore struct {
	mu   sync.Mutex
	subs map[string]repository.PushSubscription
}

func newFakeSubStore() *fakeSubStore {
	return &fakeSubStore{subs: make(map[string]repository.PushSubscription)}
}

func (s *fakeSubStore) Upsert(ctx context.Context, sub *repository.PushSubscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.Endpoint] = *sub
	return nil
}

func (s *fakeSubStore) Delete(ctx context.Context, endpoint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, endpoint)
	return nil
}

func pushServe(t *testing.T, h http.HandlerFunc, method, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, "/api/push/subscribe", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h(rec, r)
	return rec
}

func TestPushSubscribe(t *testing.T) {
	store := newFakeSubStore()
	h := NewPushHandler(store, "pub-key")

	body := `{"subscription":{"endpoint":"https://push.example/abc","keys":{"p256dh":"p","auth":"a"}}}`
	rec := pushServe(t, h.Subscribe, http.MethodPost, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if _, ok := store.subs["https://push.example/abc"]; !ok {
		t.Fatalf("subscription not stored")
	}

	// Повторная подписка того же endpoint — upsert, не дубль.
	rec = pushServe(t, h.Subscribe, http.MethodPost, body)
	if rec.Code != http.StatusOK || len(store.subs) != 1 {
		t.Fatalf("resubscribe: status = %d, subs = %d", rec.Code, len(store.subs))
	}
}

func TestPushSubscribeValidation(t *testing.T) {
	cases := []string{
		`{}`,
		`{"subscription":{"endpoint":"https://push.example/abc"}}`,
		`{"subscription":{"keys":{"p256dh":"p","auth":"a"}}}`,
		`{"subscription":`,
	}
	for _, body := range cases {
		store := newFakeSubStore()
		h := NewPushHandler(store, "pub-key")
		rec := pushServe(t, h.Subscribe, http.MethodPost, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d, want 400", body, rec.Code)
		}
		if len(store.subs) != 0 {
			t.Fatalf("body %q: invalid subscription must not be stored", body)
		}
	}
}

func TestPushUnsubscribe(t *testing.T) {
	store := newFakeSubStore()
	store.subs["https://push.example/abc"] = repository.PushSubscription{Endpoint: "https://push.example/abc"}
	h := NewPushHandler(store, "pub-key")

	rec := pushServe(t, h.Unsubscribe, http.MethodDelete, `{"endpoint":"https://push.example/abc"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if len(store.subs) != 0 {
		t.Fatalf("subscription not removed")
	}

	rec = pushServe(t, h.Unsubscribe, http.MethodDelete, `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing endpoint: status = %d, want 400", rec.Code)
	}
}

func TestPushConfig(t *testing.T) {
	h := NewPushHandler(newFakeSubStore(), "pub-key")
	rec := pushServe(t, h.PushConfig, http.MethodGet, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		OK             bool   `json:"ok"`
		VAPIDPublicKey string `json:"vapidPublicKey"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.OK || body.VAPIDPublicKey != "pub-key" {
		t.Fatalf("body = %+v", body)
	}

	disabled := NewPushHandler(newFakeSubStore(), "")
	rec = pushServe(t, disabled.PushConfig, http.MethodGet, "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unconfigured push: status = %d, want 503", rec.Code)
	}
}

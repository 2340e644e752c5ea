package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stockroom/internal/model"
	"github.com/stockroom/internal/service"
)

// countingStore считает обращения к хранилищу: отклонённый запрос не должен
// трогать ничего, кроме lookup самого гейта.
type countingStore struct {
	inserts  atomic.Int64
	lookups  atomic.Int64
	sessions map[string]*model.Session
	err      error
}

func newCountingStore() *countingStore {
	return &countingStore{sessions: make(map[string]*model.Session)}
}

func (s *countingStore) Insert(ctx context.Context, sess *model.Session) error {
	s.inserts.Add(1)
	if s.err != nil {
		return s.err
	}
	s.sessions[sess.Token] = sess
	return nil
}

func (s *countingStore) Lookup(ctx context.Context, token string) (*model.Session, error) {
	s.lookups.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.sessions[token], nil
}

func (s *countingStore) Close() error { return nil }

func seedSession(s *countingStore, role model.Role, expiresAt time.Time) *model.Session {
	sess := &model.Session{
		Token:     "token-" + string(role),
		Role:      role,
		CreatedAt: expiresAt.Add(-service.SessionTTL),
		ExpiresAt: expiresAt,
	}
	s.sessions[sess.Token] = sess
	return sess
}

// hitHandler отмечает, что запрос дошёл до защищённого хендлера.
func hitHandler(hit *atomic.Int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit.Add(1)
		w.WriteHeader(http.StatusOK)
	})
}

func decodeReject(t *testing.T, rec *httptest.ResponseRecorder) (ok bool, errMsg string) {
	t.Helper()
	var body struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode reject body: %v", err)
	}
	return body.OK, body.Error
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", ""},
		{"Bearer abc-123", "abc-123"},
		{"bearer abc-123", "abc-123"},
		{"Bearer   abc-123  ", "abc-123"},
		{"Bearer", ""},
		{"Bearer ", ""},
		{"Basic abc-123", ""},
		{"abc-123", ""},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/api/items", nil)
		if tc.header != "" {
			r.Header.Set("Authorization", tc.header)
		}
		if got := BearerToken(r); got != tc.want {
			t.Errorf("BearerToken(%q) = %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestSessionAuthRejects(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name   string
		header string
		setup  func(*countingStore)
		status int
	}{
		{"no header", "", nil, http.StatusUnauthorized},
		{"malformed header", "Token abc", nil, http.StatusUnauthorized},
		{"unknown token", "Bearer no-such-token", nil, http.StatusUnauthorized},
		{
			"expired session", "Bearer token-input",
			func(s *countingStore) { seedSession(s, model.RoleInput, now.Add(-time.Second)) },
			http.StatusUnauthorized,
		},
		{
			"store down", "Bearer token-input",
			func(s *countingStore) { s.err = errors.New("store unavailable") },
			http.StatusInternalServerError,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newCountingStore()
			if tc.setup != nil {
				tc.setup(store)
			}
			auth := service.NewAuthenticator(service.Credentials{}, store).
				WithClock(func() time.Time { return now })

			var hit atomic.Int64
			h := SessionAuth(auth)(hitHandler(&hit))

			r := httptest.NewRequest(http.MethodPost, "/api/items", nil)
			if tc.header != "" {
				r.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)

			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if hit.Load() != 0 {
				t.Fatalf("rejected request must not reach the handler")
			}
			if store.inserts.Load() != 0 {
				t.Fatalf("rejected request must not mutate the store")
			}
			ok, errMsg := decodeReject(t, rec)
			if ok {
				t.Fatalf("reject envelope must carry ok=false")
			}
			if tc.status == http.StatusUnauthorized && errMsg != "Unauthorized" {
				t.Fatalf("error = %q, want %q", errMsg, "Unauthorized")
			}
			if tc.status == http.StatusInternalServerError && errMsg == "Unauthorized" {
				t.Fatalf("store failure must not be reported as Unauthorized")
			}
		})
	}
}

func TestSessionAuthPassesValidSession(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store := newCountingStore()
	sess := seedSession(store, model.RoleBoss, now.Add(time.Hour))
	auth := service.NewAuthenticator(service.Credentials{}, store).
		WithClock(func() time.Time { return now })

	var got *model.Session
	h := SessionAuth(auth)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetSession(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, "/api/items", nil)
	r.Header.Set("Authorization", "Bearer "+sess.Token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got == nil || got.Token != sess.Token || got.Role != model.RoleBoss {
		t.Fatalf("handler must see the resolved session, got %+v", got)
	}
}

func TestRequireRole(t *testing.T) {
	inputSess := &model.Session{Token: "t1", Role: model.RoleInput}
	bossSess := &model.Session{Token: "t2", Role: model.RoleBoss}

	cases := []struct {
		name   string
		sess   *model.Session
		status int
	}{
		{"input passes", inputSess, http.StatusOK},
		{"boss forbidden on write gate", bossSess, http.StatusForbidden},
		{"no session", nil, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var hit atomic.Int64
			h := RequireRole(model.RoleInput)(hitHandler(&hit))

			r := httptest.NewRequest(http.MethodPost, "/api/items", nil)
			if tc.sess != nil {
				r = r.WithContext(WithSession(r.Context(), tc.sess))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, r)

			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if tc.status == http.StatusOK && hit.Load() != 1 {
				t.Fatalf("allowed request must reach the handler")
			}
			if tc.status != http.StatusOK {
				if hit.Load() != 0 {
					t.Fatalf("rejected request must not reach the handler")
				}
				if ok, _ := decodeReject(t, rec); ok {
					t.Fatalf("reject envelope must carry ok=false")
				}
			}
		})
	}
}

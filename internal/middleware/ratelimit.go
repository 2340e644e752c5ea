package middleware

import (
	"net/http"
	"sync"
	"time"
)

const (
	rateLimitWindow   = time.Minute
	rateLimitMaxIP    = 200
	rateLimitMaxToken = 100
)

type rateLimiter struct {
	mu     sync.Mutex
	times  map[string][]time.Time
	max    int
	window time.Duration
}

func newRateLimiter(max int, window time.Duration) *rateLimiter {
	return &rateLimiter{times: make(map[string][]time.Time), max: max, window: window}
}

func (r *rateLimiter) allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	cutoff := now.Add(-r.window)
	slice := r.times[key]
	i := 0
	for _, t := range slice {
		if t.After(cutoff) {
			slice[i] = t
			i++
		}
	}
	slice = slice[:i]
	if len(slice) >= r.max {
		return false
	}
	r.times[key] = append(slice, now)
	return true
}

var (
	apiRateByIP    = newRateLimiter(rateLimitMaxIP, rateLimitWindow)
	apiRateByToken = newRateLimiter(rateLimitMaxToken, rateLimitWindow)
)

// RateLimitByIP — общий потолок запросов с одного адреса (RemoteAddr уже
// нормализован chi RealIP). Ставится до разбора сессии; логин отдельной
// блокировки не получает — это потолок запросов, не lockout.
func RateLimitByIP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !apiRateByIP.allow(r.RemoteAddr) {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RateLimitBySession ограничивает запросы по токену сессии.
// Ставится после SessionAuth — иначе сессии в контексте ещё нет.
func RateLimitBySession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if sess := GetSession(r.Context()); sess != nil {
			if !apiRateByToken.allow("t:" + sess.Token) {
				http.Error(w, "too many requests", http.StatusTooManyRequests)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"
)

// SiteBasicAuth — статическая basic-auth «входная дверь» для статики сайта.
// Отдельная, не пересекающаяся с bearer-схемой /api/* защита: без состояния,
// без сессий. Пустые user/pass отключают проверку. Сравнение — constant-time.
func SiteBasicAuth(user, pass string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if user == "" || pass == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotUser, gotPass, ok := basicCredentials(r)
			userOK := constantTimeEqual(gotUser, user)
			passOK := constantTimeEqual(gotPass, pass)
			if !ok || !userOK || !passOK {
				w.Header().Set("WWW-Authenticate", `Basic realm="Stockroom", charset="UTF-8"`)
				w.Header().Set("Cache-Control", "no-store")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			// Приватная статика не должна оседать в общих кешах
			w.Header().Set("Cache-Control", "private, no-store")
			next.ServeHTTP(w, r)
		})
	}
}

func basicCredentials(r *http.Request) (user, pass string, ok bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Basic "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(h[len(prefix):]))
	if err != nil {
		return "", "", false
	}
	idx := strings.IndexByte(string(decoded), ':')
	if idx < 0 {
		return "", "", false
	}
	return string(decoded[:idx]), string(decoded[idx+1:]), true
}

func constantTimeEqual(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}

package middleware

import (
	"net/http"
	"strings"

	"github.com/stockroom/internal/logger"
	"github.com/stockroom/internal/service"
)

// BearerToken извлекает токен из заголовка Authorization: Bearer <token>.
// Отсутствующий или кривой заголовок — пустая строка (это 401, не 400).
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}

// SessionAuth — гейт для /api/*: резолвит bearer-токен и кладёт сессию в
// контекст. Нет/невалидный/истёкший токен — 401 до вызова хендлера, никакая
// мутация не успевает начаться. Отказ хранилища — 500, не 401.
func SessionAuth(auth *service.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, err := auth.Authenticate(r.Context(), BearerToken(r))
			if err != nil {
				logger.Errorf("session gate: %v", err)
				writeReject(w, http.StatusInternalServerError, err.Error())
				return
			}
			if sess == nil {
				writeReject(w, http.StatusUnauthorized, msgUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

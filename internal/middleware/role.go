package middleware

import (
	"net/http"

	"github.com/stockroom/internal/model"
)

// RequireRole пропускает только сессии с ровно указанной ролью: чужая роль —
// 403, отсутствие сессии (SessionAuth не стоял выше) — 401.
// Чтения намеренно не оборачиваются: читать может любая валидная сессия,
// ролью ограничены только мутации.
func RequireRole(role model.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := GetSession(r.Context())
			if sess == nil {
				writeReject(w, http.StatusUnauthorized, msgUnauthorized)
				return
			}
			if sess.Role != role {
				writeReject(w, http.StatusForbidden, msgForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

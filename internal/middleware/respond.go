package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/stockroom/internal/logger"
)

// Сообщения гейта фиксированы; причина отказа хранилища подставляется как есть.
const (
	msgUnauthorized = "Unauthorized"
	msgForbidden    = "Forbidden"
)

// writeReject отдаёт единый конверт ошибки {ok:false, error} из middleware.
func writeReject(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": msg}); err != nil {
		logger.Errorf("writeReject encode: %v", err)
	}
}

package middleware

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/stockroom/internal/logger"
)

// responseWriter оборачивает http.ResponseWriter, чтобы понять,
// был ли ответ уже отправлен до паники.
type responseWriter struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (w *responseWriter) WriteHeader(code int) {
	if w.wrote {
		return
	}
	w.status = code
	w.wrote = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.wrote = true
	return w.ResponseWriter.Write(b)
}

// Hijack пробрасывает http.Hijacker — без него не пройдёт WebSocket-upgrade.
func (w *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	w.wrote = true
	return hj.Hijack()
}

// RecoverJSON при панике в хендлере логирует её и отдаёт JSON 500 в общем
// конверте (если ответ ещё не начат). Паника одного запроса не роняет процесс
// и не трогает остальные запросы.
func RecoverJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrap := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		defer func() {
			if err := recover(); err != nil {
				logger.Errorf("panic recovered: %v", err)
				if !wrap.wrote {
					wrap.ResponseWriter.Header().Set("Content-Type", "application/json; charset=utf-8")
					wrap.ResponseWriter.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(wrap.ResponseWriter).Encode(map[string]any{"ok": false, "error": "internal server error"})
				}
			}
		}()
		next.ServeHTTP(wrap, r)
	})
}

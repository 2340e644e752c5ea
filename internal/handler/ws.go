package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/stockroom/internal/logger"
	"github.com/stockroom/internal/middleware"
	"github.com/stockroom/internal/service"
	"github.com/stockroom/internal/ws"
)

type WSHandler struct {
	hub            *ws.Hub
	auth           *service.Authenticator
	allowedOrigins string
}

// NewWSHandler — живая лента склада. allowedOrigins — как в CORS
// (через запятую или "*").
func NewWSHandler(hub *ws.Hub, auth *service.Authenticator, allowedOrigins string) *WSHandler {
	return &WSHandler{hub: hub, auth: auth, allowedOrigins: strings.TrimSpace(allowedOrigins)}
}

func (h *WSHandler) checkOrigin(r *http.Request) bool {
	if h.allowedOrigins == "*" || h.allowedOrigins == "" {
		return true
	}
	origin := strings.TrimSpace(r.Header.Get("Origin"))
	if origin == "" {
		return true
	}
	for _, o := range strings.Split(h.allowedOrigins, ",") {
		if strings.TrimSpace(o) == origin {
			return true
		}
	}
	return false
}

// ServeWS — GET /api/ws. Браузер не умеет ставить заголовки на WebSocket,
// поэтому токен принимается и из query (?token=); путь проверки тот же гейт.
// Лента доступна любой валидной сессии — это чтение.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	sess, err := h.auth.Authenticate(r.Context(), token)
	if err != nil {
		logger.Errorf("ws auth: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if !h.checkOrigin(r) {
		writeError(w, http.StatusForbidden, "Forbidden")
		return
	}
	upgrader := websocket.Upgrader{CheckOrigin: h.checkOrigin}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Errorf("ws upgrade token=%s: %v", middleware.MaskToken(token), err)
		return
	}
	// Контекст запроса умирает с возвратом из хендлера — жизнью клиента
	// управляет собственный контекст, отменяемый при закрытии соединения.
	client := ws.NewClient(h.hub, conn)
	client.Start(context.Background())
}

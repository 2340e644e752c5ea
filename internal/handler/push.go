package handler

import (
	"encoding/json"
	"net/http"

	"github.com/stockroom/internal/logger"
	"github.com/stockroom/internal/repository"
)

type PushHandler struct {
	subs           SubscriptionStore
	vapidPublicKey string
}

func NewPushHandler(subs SubscriptionStore, vapidPublicKey string) *PushHandler {
	return &PushHandler{subs: subs, vapidPublicKey: vapidPublicKey}
}

type subscribeRequest struct {
	Subscription repository.PushSubscription `json:"subscription"`
}

// Subscribe — POST /api/push/subscribe: сохраняет браузерную подписку.
// Доступно любой валидной сессии: уведомления о нулевых остатках полезны обеим ролям.
func (h *PushHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	sub := req.Subscription
	if sub.Endpoint == "" || sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		writeError(w, http.StatusBadRequest, "subscription (endpoint, keys.p256dh, keys.auth) required")
		return
	}
	if err := h.subs.Upsert(r.Context(), &sub); err != nil {
		logger.Errorf("push subscribe: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Unsubscribe — DELETE /api/push/subscribe: удаляет подписку по endpoint.
func (h *PushHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Endpoint string `json:"endpoint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Endpoint == "" {
		writeError(w, http.StatusBadRequest, "endpoint required")
		return
	}
	if err := h.subs.Delete(r.Context(), req.Endpoint); err != nil {
		logger.Errorf("push unsubscribe: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// PushConfig — GET /api/config/push: публичный VAPID-ключ для фронта.
func (h *PushHandler) PushConfig(w http.ResponseWriter, r *http.Request) {
	if h.vapidPublicKey == "" {
		writeError(w, http.StatusServiceUnavailable, "push not configured")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "vapidPublicKey": h.vapidPublicKey})
}

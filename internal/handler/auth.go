package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/stockroom/internal/logger"
	"github.com/stockroom/internal/service"
)

type AuthHandler struct {
	auth *service.Authenticator
}

func NewAuthHandler(auth *service.Authenticator) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login — POST /api/login. Неверная пара — 401, кривое тело — 400,
// недоступное хранилище сессий — 500 с причиной.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password required")
		return
	}
	sess, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrBadCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		logger.Errorf("login: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":        true,
		"token":     sess.Token,
		"role":      sess.Role,
		"expiresAt": sess.ExpiresAt.UnixMilli(),
	})
}

package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stockroom/internal/logger"
	"github.com/stockroom/internal/model"
	"github.com/stockroom/internal/ws"
)

// entryListLimit — журнал отдаёт только хвост, полная история не нужна.
const entryListLimit = 20

type EntryHandler struct {
	entries EntryStore
	hub     Broadcaster
}

func NewEntryHandler(entries EntryStore, hub Broadcaster) *EntryHandler {
	return &EntryHandler{entries: entries, hub: hub}
}

// List — GET /api/entries: последние записи журнала, новые первыми.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.entries.ListRecent(r.Context(), entryListLimit)
	if err != nil {
		logger.Errorf("entries list: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []model.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "results": list})
}

type createEntryRequest struct {
	Text string `json:"text"`
}

// Create — POST /api/entries (роль input): добавляет запись журнала.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, "Missing 'text'")
		return
	}
	entry := model.Entry{
		ID:        uuid.New().String(),
		Value:     text,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.entries.Create(r.Context(), &entry); err != nil {
		logger.Errorf("entry create: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if h.hub != nil {
		h.hub.Broadcast(ws.Event{Type: ws.EventEntryAdded, Payload: entry})
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "entry": entry})
}

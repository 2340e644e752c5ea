package handler

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stockroom/internal/logger"
	"github.com/stockroom/internal/model"
	"github.com/stockroom/internal/repository"
	"github.com/stockroom/internal/ws"
)

type ItemHandler struct {
	items    ItemStore
	hub      Broadcaster
	notifier StockNotifier
}

func NewItemHandler(items ItemStore, hub Broadcaster, notifier StockNotifier) *ItemHandler {
	return &ItemHandler{items: items, hub: hub, notifier: notifier}
}

// List — GET /api/items. Читать может любая валидная сессия независимо от
// роли — это осознанное поведение, ролью ограничены только мутации.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.items.List(r.Context())
	if err != nil {
		logger.Errorf("items list: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []model.Item{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "items": list})
}

type itemRequest struct {
	Name string `json:"name"`
	Qty  *int   `json:"qty"`
}

func (req *itemRequest) validate() (name string, qty int, errMsg string) {
	name = strings.TrimSpace(req.Name)
	if name == "" {
		return "", 0, "name is required"
	}
	if req.Qty == nil || *req.Qty < 0 {
		return "", 0, "qty must be a non-negative number"
	}
	return name, *req.Qty, ""
}

// Create — POST /api/items (роль input).
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name, qty, errMsg := req.validate()
	if errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}
	item := model.Item{
		ID:        uuid.New().String(),
		Name:      name,
		Qty:       qty,
		CreatedAt: time.Now().UnixMilli(),
	}
	if err := h.items.Create(r.Context(), &item); err != nil {
		logger.Errorf("item create: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.afterMutation(ws.Event{Type: ws.EventItemCreated, Payload: item}, item)
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "item": item})
}

// Update — PUT /api/items/{id} (роль input). created_at не меняется.
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name, qty, errMsg := req.validate()
	if errMsg != "" {
		writeError(w, http.StatusBadRequest, errMsg)
		return
	}
	item := model.Item{ID: id, Name: name, Qty: qty}
	if err := h.items.Update(r.Context(), &item); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		logger.Errorf("item update: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.afterMutation(ws.Event{
		Type:    ws.EventItemUpdated,
		Payload: map[string]any{"id": id, "name": name, "qty": qty},
	}, item)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// Delete — DELETE /api/items/{id} (роль input).
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.items.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		logger.Errorf("item delete: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if h.hub != nil {
		h.hub.Broadcast(ws.Event{Type: ws.EventItemDeleted, Payload: map[string]string{"id": id}})
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type replaceRequest struct {
	Items []model.Item `json:"items"`
}

// Replace — PUT /api/items (роль input): wipe + rewrite всего списка одной
// транзакцией. Невалидные строки (пустые id/name, qty < 0, нет createdAt)
// молча пропускаются, ответ несёт число записанных.
func (h *ItemHandler) Replace(w http.ResponseWriter, r *http.Request) {
	var raw struct {
		Items json.RawMessage `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil || raw.Items == nil {
		writeError(w, http.StatusBadRequest, "Body must be { items: [...] }")
		return
	}
	var items []model.Item
	if err := json.Unmarshal(raw.Items, &items); err != nil {
		writeError(w, http.StatusBadRequest, "Body must be { items: [...] }")
		return
	}
	kept := make([]model.Item, 0, len(items))
	for _, it := range items {
		it.ID = strings.TrimSpace(it.ID)
		it.Name = strings.TrimSpace(it.Name)
		if it.ID == "" || it.Name == "" || it.Qty < 0 || it.CreatedAt <= 0 {
			continue
		}
		kept = append(kept, it)
	}
	if err := h.items.ReplaceAll(r.Context(), kept); err != nil {
		logger.Errorf("items replace: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if h.hub != nil {
		h.hub.Broadcast(ws.Event{Type: ws.EventInventoryReplaced, Payload: map[string]int{"written": len(kept)}})
	}
	if h.notifier != nil {
		for _, it := range kept {
			if it.Qty == 0 {
				go h.notifier.ItemOutOfStock(context.Background(), it)
			}
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "written": len(kept)})
}

// ExportCSV — GET /api/items/export.csv: снимок склада файлом.
// Доступен любой валидной сессии, как и список.
func (h *ItemHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	list, err := h.items.List(r.Context())
	if err != nil {
		logger.Errorf("items export: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="inventory.csv"`)
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"id", "name", "qty", "created_at"})
	for _, it := range list {
		_ = cw.Write([]string{
			it.ID,
			it.Name,
			strconv.Itoa(it.Qty),
			strconv.FormatInt(it.CreatedAt, 10),
		})
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		logger.Errorf("items export write: %v", err)
	}
}

// afterMutation — рассылка события ленты и, если позиция кончилась, пуш.
// Всё после успешного коммита и вне пути ответа.
func (h *ItemHandler) afterMutation(ev ws.Event, item model.Item) {
	if h.hub != nil {
		h.hub.Broadcast(ev)
	}
	if h.notifier != nil && item.Qty == 0 {
		go h.notifier.ItemOutOfStock(context.Background(), item)
	}
}

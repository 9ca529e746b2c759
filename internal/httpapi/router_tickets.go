package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/cubeworld/supportbot/internal/store"
)

type ticketResponse struct {
	ID              string `json:"id"`
	UserID          string `json:"user_id"`
	Status          string `json:"status"`
	NeedsSpecialist bool   `json:"needs_specialist"`
	ClosedAtUnix    int64  `json:"closed_at_unix,omitempty"`
}

type messageResponse struct {
	ID            string `json:"id"`
	Direction     string `json:"direction"`
	Content       string `json:"content"`
	CreatedAtUnix int64  `json:"created_at_unix"`
}

func (r *router) handleTickets(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	status := strings.TrimSpace(req.URL.Query().Get("status"))
	if status != "" && status != store.TicketOpen && status != store.TicketClosed {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status must be open or closed"})
		return
	}
	limit := 0
	if raw := req.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	records, err := r.deps.Store.ListTickets(req.Context(), status, limit)
	if err != nil {
		r.deps.Logger.Error("list tickets failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	payload := make([]ticketResponse, 0, len(records))
	for _, record := range records {
		item := ticketResponse{
			ID:              record.ID,
			UserID:          record.UserID,
			Status:          record.Status,
			NeedsSpecialist: record.NeedsSpecialist,
		}
		if !record.ClosedAt.IsZero() {
			item.ClosedAtUnix = record.ClosedAt.Unix()
		}
		payload = append(payload, item)
	}
	writeJSON(w, http.StatusOK, map[string]any{"tickets": payload})
}

func (r *router) handleTicketMessages(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	rest := strings.TrimPrefix(req.URL.Path, "/api/v1/tickets/")
	ticketID, suffix, found := strings.Cut(rest, "/")
	if !found || suffix != "messages" || ticketID == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}

	records, err := r.deps.Store.ListMessages(req.Context(), ticketID)
	if err != nil {
		r.deps.Logger.Error("list messages failed", "error", err, "ticket_id", ticketID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	payload := make([]messageResponse, 0, len(records))
	for _, record := range records {
		payload = append(payload, messageResponse{
			ID:            record.ID,
			Direction:     record.Direction,
			Content:       record.Content,
			CreatedAtUnix: record.CreatedAt.Unix(),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"ticket_id": ticketID, "messages": payload})
}

package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/cubeworld/supportbot/internal/config"
	"github.com/cubeworld/supportbot/internal/dialogue"
	"github.com/cubeworld/supportbot/internal/memory"
	"github.com/cubeworld/supportbot/internal/queue"
	"github.com/cubeworld/supportbot/internal/store"
)

func newTestRouter(t *testing.T) (http.Handler, *store.Store) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	if err := st.AutoMigrate(context.Background()); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}

	handler := NewRouter(Dependencies{
		Config:   config.Config{Environment: "test"},
		Store:    st,
		Contexts: dialogue.NewContexts(),
		Memory:   memory.NewStores(),
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return handler, st
}

func TestHealthAndReady(t *testing.T) {
	handler, _ := newTestRouter(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, path, nil))
		if recorder.Code != http.StatusOK {
			t.Fatalf("%s status = %d, want %d", path, recorder.Code, http.StatusOK)
		}
	}
}

func TestInfoReportsCounts(t *testing.T) {
	handler, _ := newTestRouter(t)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/info", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
	}
	var payload map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode info: %v", err)
	}
	if payload["environment"] != "test" {
		t.Fatalf("environment = %v, want test", payload["environment"])
	}
	if _, ok := payload["active_dialogues"]; !ok {
		t.Fatalf("info payload missing active_dialogues: %v", payload)
	}
}

func TestTicketsListAndMessages(t *testing.T) {
	handler, st := newTestRouter(t)
	ctx := context.Background()

	item := queue.Item{Platform: "telegram", UserID: "101", Text: "не приходит привилегия", CallSpecialist: true}
	if err := st.Persist(ctx, item); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/tickets?status=open", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusOK)
	}
	var listPayload struct {
		Tickets []ticketResponse `json:"tickets"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &listPayload); err != nil {
		t.Fatalf("decode tickets: %v", err)
	}
	if len(listPayload.Tickets) != 1 {
		t.Fatalf("got %d tickets, want 1", len(listPayload.Tickets))
	}
	ticket := listPayload.Tickets[0]
	if !ticket.NeedsSpecialist {
		t.Fatalf("ticket should be flagged for a specialist: %+v", ticket)
	}

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/tickets/"+ticket.ID+"/messages", nil))
	if recorder.Code != http.StatusOK {
		t.Fatalf("messages status = %d, want %d", recorder.Code, http.StatusOK)
	}
	var messagesPayload struct {
		Messages []messageResponse `json:"messages"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &messagesPayload); err != nil {
		t.Fatalf("decode messages: %v", err)
	}
	if len(messagesPayload.Messages) != 1 || messagesPayload.Messages[0].Content != "не приходит привилегия" {
		t.Fatalf("unexpected messages: %+v", messagesPayload.Messages)
	}
}

func TestTicketsRejectsBadQuery(t *testing.T) {
	handler, _ := newTestRouter(t)

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v1/tickets?status=resolved", nil))
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusBadRequest)
	}

	recorder = httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/api/v1/tickets", nil))
	if recorder.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", recorder.Code, http.StatusMethodNotAllowed)
	}
}

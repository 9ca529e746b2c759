// Package httpapi exposes the shared HTTP surface: health probes, a small
// read-only admin API over the ticket store, the VK Callback API endpoint and
// the web chat WebSocket endpoint.
package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cubeworld/supportbot/internal/config"
	"github.com/cubeworld/supportbot/internal/dialogue"
	"github.com/cubeworld/supportbot/internal/memory"
	"github.com/cubeworld/supportbot/internal/store"
)

type Dependencies struct {
	Config   config.Config
	Store    *store.Store
	Contexts *dialogue.Contexts
	Memory   *memory.Stores
	Logger   *slog.Logger

	// VKCallback and WebSocket are mounted when the corresponding connector
	// is enabled; nil leaves the route unregistered.
	VKCallback http.Handler
	WebSocket  http.Handler
}

type router struct {
	deps Dependencies
}

func NewRouter(deps Dependencies) http.Handler {
	rt := &router{deps: deps}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.handleHealth)
	mux.HandleFunc("/readyz", rt.handleReady)
	mux.HandleFunc("/api/v1/info", rt.handleInfo)
	mux.HandleFunc("/api/v1/tickets", rt.handleTickets)
	mux.HandleFunc("/api/v1/tickets/", rt.handleTicketMessages)
	if deps.VKCallback != nil {
		mux.Handle("/vk/callback", deps.VKCallback)
	}
	if deps.WebSocket != nil {
		mux.Handle("/ws", deps.WebSocket)
	}
	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

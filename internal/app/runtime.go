// Package app wires configuration, the dialogue engine, the ingestion queue,
// the ticket store and the platform connectors into one runnable process.
package app

import (
	"log/slog"
	"net/http"

	"github.com/cubeworld/supportbot/internal/config"
	"github.com/cubeworld/supportbot/internal/connectors"
	"github.com/cubeworld/supportbot/internal/dialogue"
	"github.com/cubeworld/supportbot/internal/memory"
	"github.com/cubeworld/supportbot/internal/moderation"
	"github.com/cubeworld/supportbot/internal/queue"
	"github.com/cubeworld/supportbot/internal/store"
)

type Runtime struct {
	cfg        config.Config
	logger     *slog.Logger
	store      *store.Store
	queue      *queue.Queue
	dialogue   *dialogue.Orchestrator
	contexts   *dialogue.Contexts
	memories   *memory.Stores
	flood      *moderation.FloodGate
	httpServer *http.Server
	connectors []connectors.Connector
	janitor    *janitor
}

// Queue exposes the ingestion queue so the console chat command can drain it.
func (r *Runtime) Queue() *queue.Queue {
	return r.queue
}

// Dialogue exposes the turn engine for in-process callers.
func (r *Runtime) Dialogue() *dialogue.Orchestrator {
	return r.dialogue
}

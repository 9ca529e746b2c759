package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/cubeworld/supportbot/internal/dialogue"
	"github.com/cubeworld/supportbot/internal/memory"
	"github.com/cubeworld/supportbot/internal/moderation"
)

// janitor periodically drops conversation state, personal memory and flood
// records for users idle past the configured TTL. Created only when a TTL is
// set; the default keeps everything for the process lifetime.
type janitor struct {
	cron     *cron.Cron
	ttl      time.Duration
	contexts *dialogue.Contexts
	memories *memory.Stores
	flood    *moderation.FloodGate
	logger   *slog.Logger
}

func newJanitor(
	spec string,
	ttl time.Duration,
	contexts *dialogue.Contexts,
	memories *memory.Stores,
	flood *moderation.FloodGate,
	logger *slog.Logger,
) (*janitor, error) {
	j := &janitor{
		cron:     cron.New(),
		ttl:      ttl,
		contexts: contexts,
		memories: memories,
		flood:    flood,
		logger:   logger,
	}
	if _, err := j.cron.AddFunc(spec, j.sweep); err != nil {
		return nil, fmt.Errorf("parse janitor spec %q: %w", spec, err)
	}
	return j, nil
}

func (j *janitor) Start(ctx context.Context) error {
	j.logger.Info("janitor started", "ttl", j.ttl.String())
	j.cron.Start()
	<-ctx.Done()
	stopCtx := j.cron.Stop()
	<-stopCtx.Done()
	return nil
}

func (j *janitor) sweep() {
	dropped := j.contexts.SweepIdle(j.ttl)
	for _, userID := range dropped {
		j.memories.Drop(userID)
	}
	floodDropped := j.flood.SweepIdle(j.ttl)
	if len(dropped) > 0 || floodDropped > 0 {
		j.logger.Info("idle sweep", "dialogues", len(dropped), "flood_records", floodDropped)
	}
}

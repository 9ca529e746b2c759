package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/cubeworld/supportbot/internal/config"
	"github.com/cubeworld/supportbot/internal/connectors"
	"github.com/cubeworld/supportbot/internal/connectors/telegram"
	"github.com/cubeworld/supportbot/internal/connectors/vk"
	"github.com/cubeworld/supportbot/internal/connectors/web"
	"github.com/cubeworld/supportbot/internal/dialogue"
	"github.com/cubeworld/supportbot/internal/httpapi"
	"github.com/cubeworld/supportbot/internal/memory"
	"github.com/cubeworld/supportbot/internal/moderation"
	"github.com/cubeworld/supportbot/internal/queue"
	"github.com/cubeworld/supportbot/internal/store"
)

func New(cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	sqlStore, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := sqlStore.AutoMigrate(context.Background()); err != nil {
		sqlStore.Close()
		return nil, err
	}

	knowledgeItems := memory.DefaultKnowledge()
	if cfg.KnowledgeFile != "" {
		knowledgeItems, err = memory.LoadKnowledgeFile(cfg.KnowledgeFile)
		if err != nil {
			sqlStore.Close()
			return nil, fmt.Errorf("load knowledge file: %w", err)
		}
		logger.Info("knowledge file loaded", "path", cfg.KnowledgeFile, "items", len(knowledgeItems))
	}
	memories := memory.NewStores()
	router := memory.NewRouter(memory.NewKnowledge(knowledgeItems), memories)

	toxicity := moderation.NewToxicityFilter()
	if cfg.BadWordsFile != "" {
		stems, err := moderation.LoadStemsFile(cfg.BadWordsFile)
		if err != nil {
			sqlStore.Close()
			return nil, fmt.Errorf("load bad words file: %w", err)
		}
		toxicity.SetBadStems(stems)
		logger.Info("bad words file loaded", "path", cfg.BadWordsFile, "stems", len(stems))
	}

	flood := moderation.NewFloodGate(
		time.Duration(cfg.FloodIntervalMS)*time.Millisecond,
		time.Duration(cfg.FloodMuteSeconds)*time.Second,
		cfg.FloodMuteAfter,
		cfg.FloodWarnThresholds(),
	)
	contexts := dialogue.NewContexts()

	ingestQueue := queue.New(cfg.QueueWorkers, sqlStore, logger.With("component", "queue"))
	orchestrator := dialogue.NewOrchestrator(
		contexts,
		flood,
		toxicity,
		router,
		ingestQueue,
		logger.With("component", "dialogue"),
	)

	connectorList := []connectors.Connector{}
	if strings.TrimSpace(cfg.TelegramToken) != "" {
		connectorList = append(connectorList, telegram.New(
			cfg.TelegramToken,
			cfg.TelegramAPI,
			cfg.TelegramPoll,
			orchestrator,
			logger.With("component", "connector", "platform", "telegram"),
		))
	}
	var vkConnector *vk.Connector
	if strings.TrimSpace(cfg.VKToken) != "" || strings.TrimSpace(cfg.VKConfirmation) != "" {
		vkConnector = vk.New(
			cfg.VKToken,
			cfg.VKAPI,
			cfg.VKConfirmation,
			cfg.VKSecret,
			orchestrator,
			logger.With("component", "connector", "platform", "vk"),
		)
		connectorList = append(connectorList, vkConnector)
	}
	var webConnector *web.Connector
	if cfg.WebEnabled {
		webConnector = web.New(orchestrator, logger.With("component", "connector", "platform", "web"))
		connectorList = append(connectorList, webConnector)
	}
	if cfg.WatchBadWords && cfg.BadWordsFile != "" {
		connectorList = append(connectorList, moderation.NewWordlistWatcher(
			cfg.BadWordsFile,
			toxicity,
			logger.With("component", "wordlist-watcher"),
		))
	}

	apiDeps := httpapi.Dependencies{
		Config:   cfg,
		Store:    sqlStore,
		Contexts: contexts,
		Memory:   memories,
		Logger:   logger.With("component", "api"),
	}
	if vkConnector != nil {
		apiDeps.VKCallback = vkConnector.Handler()
	}
	if webConnector != nil {
		apiDeps.WebSocket = webConnector.Handler()
	}
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(apiDeps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runtime := &Runtime{
		cfg:        cfg,
		logger:     logger,
		store:      sqlStore,
		queue:      ingestQueue,
		dialogue:   orchestrator,
		contexts:   contexts,
		memories:   memories,
		flood:      flood,
		httpServer: httpServer,
		connectors: connectorList,
	}
	if cfg.MemoryTTLMinutes > 0 {
		ttl := time.Duration(cfg.MemoryTTLMinutes) * time.Minute
		sweeper, err := newJanitor(cfg.JanitorSpec, ttl, contexts, memories, flood, logger.With("component", "janitor"))
		if err != nil {
			sqlStore.Close()
			return nil, fmt.Errorf("configure janitor: %w", err)
		}
		runtime.janitor = sweeper
	}
	return runtime, nil
}

package main

import (
	"context"
	"log"
	"log/slog"

	"github.com/hsaban/saband/internal/answer"
	"github.com/hsaban/saband/internal/config"
	"github.com/hsaban/saband/internal/db"
	"github.com/hsaban/saband/internal/llm"
	claudellm "github.com/hsaban/saband/internal/llm/claude"
	geminillm "github.com/hsaban/saband/internal/llm/gemini"
	"github.com/hsaban/saband/internal/logging"
	"github.com/hsaban/saband/internal/search"
	"github.com/hsaban/saband/internal/store"
	"github.com/hsaban/saband/internal/web"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger, cleanup, err := logging.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer cleanup()

	database, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	cacheStore := store.NewCacheStore(database)
	inventoryStore := store.NewInventoryStore(database)
	businessStore := store.NewBusinessStore(database)
	historyStore := store.NewHistoryStore(database)

	client, err := newModelClient(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize model client", "error", err)
		return
	}
	model := llm.NewFailover(client, cfg.Models(), logger)
	searchClient := search.NewClient(cfg.SearchAPIKey, cfg.SearchEngineID)
	if !searchClient.Configured() {
		logger.Warn("image search is not configured, product cards may ship without images")
	}

	svc := answer.NewService(cacheStore, inventoryStore, businessStore, historyStore, model, searchClient, answer.Options{
		DataVersion:    cfg.DataVersion,
		CacheTTL:       cfg.CacheTTL,
		CoveragePerBox: cfg.CoveragePerBox,
		ReserveBoxes:   cfg.ReserveBoxes,
		EnrichBatch:    cfg.EnrichBatch,
	}, logger)

	server := web.NewServer(web.Deps{
		Answers:   svc,
		Products:  store.NewProductStore(database),
		Inventory: inventoryStore,
		Drivers:   store.NewDriverStore(database),
		Business:  businessStore,
		Cache:     cacheStore,
		History:   historyStore,
		DB:        database,
		Config:    cfg,
		Logger:    logger,
	})

	if err := server.ListenAndServe(cfg.ListenAddr); err != nil {
		logger.Error("server error", "error", err)
	}
}

func newModelClient(cfg *config.Config, logger *slog.Logger) (llm.Client, error) {
	switch cfg.ModelBackend {
	case "claude":
		logger.Info("using Claude model backend", "model", cfg.ClaudeModel)
		return claudellm.NewClient(cfg.ClaudeAPIKey), nil
	default:
		logger.Info("using Gemini model backend", "model", cfg.GeminiModel)
		return geminillm.NewClient(context.Background(), cfg.GeminiAPIKey)
	}
}

package internal

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/mannaz/internal/catalog"
	"github.com/starford/mannaz/internal/mcpserver"
	"github.com/starford/mannaz/internal/models"
	"github.com/starford/mannaz/internal/recorder"
	"github.com/starford/mannaz/internal/storage"
	"github.com/starford/mannaz/internal/vault"
)

// RunMCP serves the record tools over MCP stdio for one study session.
// topic binds the session (topic arguments in tool calls are normalized
// against it); typ decides which template new topics get. When the
// transport disconnects, the session's statistics are persisted into the
// catalog.
func RunMCP(cfg *Config, topic string, typ string) error {
	// stdout belongs to the MCP transport; logs go to stderr.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	if err := vault.EnsureStructure(cfg.Vault.Path); err != nil {
		return fmt.Errorf("create vault dirs: %w", err)
	}

	store, err := storage.NewFS(cfg.Vault.Path)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	db, err := catalog.Open(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("init catalog: %w", err)
	}
	defer db.Close()

	v := vault.New(store)
	rec := recorder.New(v, topic, models.TopicType(typ))

	logger.Info("MCP session starting",
		slog.String("vault_path", cfg.Vault.Path),
		slog.String("topic", topic))

	srv := mcpserver.New(rec)
	serveErr := srv.ServeStdio()

	// Persist the session's counters, then re-catalog anything the
	// session touched (the watcher is not running in MCP mode).
	stats := rec.Stats()
	if stats.ConceptsAdded+stats.SourcesAdded+stats.SynthesisEntries > 0 ||
		len(stats.Understanding) > 0 || len(stats.SubtopicsCreated) > 0 {
		if err := db.RecordSession(stats); err != nil {
			logger.Warn("record session failed", slog.String("error", err.Error()))
		}
	}
	if err := catalog.Sync(db, store, logger); err != nil {
		logger.Warn("post-session sync failed", slog.String("error", err.Error()))
	}

	logger.Info("MCP session ended")
	return serveErr
}

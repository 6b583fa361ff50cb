package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/cardimport/internal/config"
	"github.com/JonMunkholm/cardimport/internal/core"
	"github.com/JonMunkholm/cardimport/internal/core/tables" // registers the cards kind
	"github.com/JonMunkholm/cardimport/internal/logging"
	"github.com/JonMunkholm/cardimport/internal/store"
	"github.com/JonMunkholm/cardimport/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"db_driver", cfg.Database.Driver,
		"import_max_concurrent", cfg.Import.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.Database)
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if cfg.Import.SchemaDir != "" {
		keys, err := tables.LoadDir(cfg.Import.SchemaDir)
		if err != nil {
			slog.Error("failed to load schemas", "dir", cfg.Import.SchemaDir, "error", err)
			os.Exit(1)
		}
		slog.Info("schemas loaded", "dir", cfg.Import.SchemaDir, "kinds", keys)
	}

	for _, def := range core.All() {
		slog.Debug("record kind", "key", def.Info.Key, "columns", len(def.Info.Columns))
	}
	slog.Info("record kinds registered", "count", core.KindCount())

	service := core.NewService(st,
		core.NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWaitTime),
		core.ServiceConfig{
			MaxBytes: cfg.Import.MaxFileSize,
			Charset:  cfg.Import.Charset,
			Workers:  cfg.Import.Workers,
		},
	)

	server := web.NewServer(cfg, service, st)

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go service.StartPruneScheduler(jobCtx, core.PruneConfig{
		Retention:     cfg.History.Retention(),
		CheckInterval: cfg.History.CheckInterval,
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.Limiter().Status(); status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.Limiter().WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil {
		slog.Info("server stopped", "error", err)
	}
}

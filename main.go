package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/tjswar/medilookapp/config"
	"github.com/tjswar/medilookapp/handlers"
	"github.com/tjswar/medilookapp/health"
	"github.com/tjswar/medilookapp/history"
	"github.com/tjswar/medilookapp/interfaces"
	"github.com/tjswar/medilookapp/labelclient"
	"github.com/tjswar/medilookapp/logging"
	"github.com/tjswar/medilookapp/orchestrator"
	"github.com/tjswar/medilookapp/scheduler"
	"github.com/tjswar/medilookapp/server"
	"github.com/tjswar/medilookapp/validation"
)

func init() {
	// Get the working directory and read the env variables
	if err := godotenv.Load(); err != nil {
		// If failed, try loading from executable directory
		ex, err := os.Executable()
		if err != nil {
			slog.Error("Failed to get executable path", "error", err)
			os.Exit(1)
		}

		if err := os.Chdir(filepath.Dir(ex)); err != nil {
			slog.Error("Failed to change directory", "error", err)
			os.Exit(1)
		}

		// A missing .env is fine, the environment may already be set
		_ = godotenv.Load()
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.InitLogger(cfg.LogDir, cfg.LogLevel, cfg.LogRetentionWeeks, cfg.MaxLogFileSize)
	logging.Info("Configuration loaded", "env", cfg.Env, "upstream", cfg.OpenFDABaseURL)

	client := labelclient.NewClient(cfg)
	cache := history.NewCache(history.NewFileStore(cfg.HistoryFile), cfg.HistoryCapacity)
	coordinator := orchestrator.New(client, cache, cfg.SearchDebounce)
	unsubscribe := coordinator.Subscribe(func(state interfaces.SearchState) {
		logging.Debug("Search state changed", "phase", state.Phase, "query", state.Query, "results", len(state.Results))
	})

	probes := scheduler.NewScheduler(client, cfg.ProbeIntervalMinutes, cfg.LookupTimeout)
	if err := probes.Start(); err != nil {
		logging.Error("Failed to start upstream probe", "error", err)
		os.Exit(1)
	}

	handler := handlers.NewHTTPHandler(
		coordinator,
		cache,
		validation.NewQueryValidator(),
		health.NewHealthChecker(probes, cache),
	)
	srv := server.NewServer(cfg, handler)

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error("Graceful shutdown failed", "error", err)
	}

	probes.Stop()
	unsubscribe()
	coordinator.Close()

	if err := logging.Close(); err != nil {
		slog.Error("Failed to close log file", "error", err)
	}
}

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fabtime/fabtime/app/api"
	"github.com/fabtime/fabtime/app/cfg"
	"github.com/fabtime/fabtime/app/database"
	"github.com/fabtime/fabtime/app/rss"
	"github.com/fabtime/fabtime/app/sheets"
	"github.com/fabtime/fabtime/app/tasks"
	"github.com/fabtime/fabtime/app/timeline"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting FabTime server", "version", appCfg.Version)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		slog.Error("Failed to open database", "path", appCfg.DBPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	configCache := timeline.NewConfigCache(appCfg.TimelinesDir)
	if err := configCache.Run(); err != nil {
		slog.Error("Failed to load timeline configurations", "dir", appCfg.TimelinesDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Timeline configurations loaded", "count", configCache.GetConfigCount(), "dir", appCfg.TimelinesDir)

	timelineRepo := database.NewTimelineRepository(db)
	itemRepo := database.NewItemRepository(db)

	httpClient := &http.Client{}
	sheetsClient := sheets.NewClient(httpClient, appCfg.SheetsAPIKey, appCfg.UserAgent)
	rssSource := rss.NewSource()
	textExtractor := rss.NewTextExtractor()
	filterStore := timeline.NewFilterStore()

	scheduler := tasks.NewScheduler(configCache, timelineRepo, itemRepo, httpClient, sheetsClient, rssSource, textExtractor)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Background scheduler started", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerInterval)

	handler := api.NewHandler(configCache, timelineRepo, itemRepo, filterStore, scheduler,
		httpClient, sheetsClient, rssSource, appCfg.UserAgent)
	server := api.NewServer(handler, appCfg.APIAccessKey, appCfg.BaseUrl)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	// Scheduler is stopped via defer
	slog.Info("FabTime server shutdown complete")
}

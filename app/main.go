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

	"github.com/lysyi3m/news-rss/app/api"
	"github.com/lysyi3m/news-rss/app/cfg"
	"github.com/lysyi3m/news-rss/app/content"
	"github.com/lysyi3m/news-rss/app/database"
	"github.com/lysyi3m/news-rss/app/rss"
	"github.com/lysyi3m/news-rss/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown
		return
	}

	setupLogging(appCfg.Debug)

	slog.Info("Starting News RSS server", "version", appCfg.Version)

	books := content.NewBookCache(appCfg.BooksDir)
	if err := books.Run(); err != nil {
		slog.Error("Failed to load books", "dir", appCfg.BooksDir, "error", err)
		os.Exit(1)
	}
	slog.Info("Books loaded", "dir", appCfg.BooksDir, "count", books.GetBookCount())

	fsStore := content.NewFSStore(books)

	var (
		store     content.Store = fsStore
		pageRepo  database.PageRepository
		scheduler tasks.TaskSchedulerInterface
	)

	if appCfg.UsesIndex() {
		db, err := database.NewConnection(appCfg.DBPath)
		if err != nil {
			slog.Error("Failed to open capture index", "path", appCfg.DBPath, "error", err)
			os.Exit(1)
		}
		defer db.Close()

		version, dirty, err := database.RunMigrations(db)
		if err != nil {
			slog.Error("Failed to run migrations", "error", err)
			os.Exit(1)
		}
		slog.Info("Capture index ready", "path", appCfg.DBPath, "schema_version", version, "dirty", dirty)

		pageRepo = database.NewPageRepository(db)
		store = database.NewStore(books, pageRepo)

		syncScheduler := tasks.NewScheduler(books, fsStore, pageRepo, appCfg.SyncPeriod(), appCfg.WorkerCount)
		syncScheduler.Start()
		defer syncScheduler.Stop()
		scheduler = syncScheduler

		slog.Info("Background sync started", "workers", appCfg.WorkerCount, "interval", appCfg.SyncPeriod().String())
	} else {
		slog.Info("Capture index disabled, serving pages from disk")
	}

	feeds := rss.NewService(books, store, rss.NewViewAdapter(content.NewsViewName, content.NewNewsView()), rss.Options{
		DefaultView: appCfg.DefaultView,
		Generator:   "news-rss " + appCfg.Version,
		BaseURL:     appCfg.BaseUrl,
		Location:    appCfg.Location,
	})

	handler := api.NewHandler(feeds, books, pageRepo, scheduler, appCfg.Version)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
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
}

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

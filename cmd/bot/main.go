// cmd/bot/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fittrack-bot/config"
	"fittrack-bot/internal/api"
	"fittrack-bot/internal/bot"
	"fittrack-bot/internal/dashboard"
	"fittrack-bot/internal/db"
	"fittrack-bot/internal/metrics"
	"fittrack-bot/internal/planner"
	"fittrack-bot/internal/server"
	"fittrack-bot/internal/session"
	"fittrack-bot/internal/store"
	"fittrack-bot/pkg/logger"
)

func main() {
	l := logger.New()
	l.Info("Starting FitTrack bot...")

	cfg, err := config.Load()
	if err != nil {
		l.Fatalw("Failed to load config", "error", err)
	}
	if cfg.Development {
		l = logger.NewDevelopment()
	}

	if err := cfg.Validate(); err != nil {
		l.Fatalw("Invalid configuration", "error", err)
	}

	// Sessions survive restarts only with postgres
	var repo session.Repository
	switch cfg.Session.Store {
	case "memory":
		l.Warn("Using in-memory sessions, users sign in again after a restart")
		repo = session.NewMemoryRepository()
	default:
		database := connectDB(cfg.DB, l)
		defer database.Close()
		repo = database
	}

	reg := metrics.SetupPrometheus()
	m := metrics.NewManager(cfg.Metrics.Namespace, "bot", reg)

	client := api.NewClient(cfg.API.BaseURL, &http.Client{Timeout: cfg.API.Timeout}, l.Named("api"), m)

	cache := store.NewCache(cfg.Cache.SizeMB, cfg.Cache.TTL, l.Named("cache"))
	loc := cfg.TimeLocation()

	telegramBot, err := bot.NewTelegramBot(cfg.Telegram.Token, cfg.Telegram.Debug, bot.Services{
		Auth:      client,
		Sessions:  session.NewManager(repo, l.Named("session")),
		Dashboard: dashboard.New(client, store.NewLogStore(cache), store.NewGoalStore(cache), loc, l.Named("dashboard")),
		Planner:   planner.New(client, l.Named("planner")),
		Nutrition: client,
		Metrics:   m,
		Location:  loc,
	}, l.Named("bot"))
	if err != nil {
		l.Fatalw("Failed to create Telegram bot", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l.Info("Starting Telegram bot...")
	if err := telegramBot.Start(ctx); err != nil {
		l.Fatalw("Failed to start Telegram bot", "error", err)
	}
	l.Info("Telegram bot started successfully")

	httpServer := server.NewServer(cfg.Server.Port, reg, l.Named("http"))
	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatalw("Failed to start HTTP server", "error", err)
		}
	}()

	// Wait for termination signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("Shutting down bot...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		l.Errorw("Error during HTTP server shutdown", "error", err)
	}

	if err := telegramBot.Stop(shutdownCtx); err != nil {
		l.Errorw("Error during bot shutdown", "error", err)
	}
	cancel()

	l.Info("Bot stopped successfully")
	_ = l.Sync()
}

func connectDB(cfg config.DBConfig, l *logger.Logger) *db.PostgresDB {
	const maxRetries = 5

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		database, err := db.NewPostgresDB(cfg)
		if err == nil {
			return database
		}
		lastErr = err
		l.Errorw("Failed to connect to database, retrying...", "attempt", i+1, "error", err)
		time.Sleep(time.Duration(i+1) * time.Second)
	}
	l.Fatalw("Failed to connect to database after multiple attempts", "error", lastErr)
	return nil
}

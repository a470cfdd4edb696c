package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"simvest/internal/api"
	"simvest/internal/config"
	"simvest/internal/db"
	"simvest/internal/engine"
	"simvest/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadAPIFromEnv()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	var repo engine.Repository
	if cfg.DatabaseURL != "" {
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("db connect failed", "err", err)
			os.Exit(1)
		}
		defer pool.Close()
		pg := store.NewPostgres(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Error("schema init failed", "err", err)
			os.Exit(1)
		}
		repo = pg
		logger.Info("using postgres store")
	} else {
		repo = store.NewMemory()
		logger.Info("using in-memory store")
	}

	coordinator := engine.NewCoordinator(
		repo,
		engine.NewResolver(time.Now().UnixNano()),
		engine.NewRankEngine(time.Now().UnixNano()),
		engine.Config{
			TotalShares:   cfg.TotalShares,
			StartingValue: cfg.StartingValue,
			StartingFunds: cfg.StartingFunds,
		},
		logger,
	)
	if cfg.StartupSeedCompanies {
		if err := coordinator.SeedRoster(ctx); err != nil {
			logger.Error("roster seed failed", "err", err)
			os.Exit(1)
		}
	}

	server := api.New(logger, coordinator)
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("simvest api listening", "addr", cfg.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}

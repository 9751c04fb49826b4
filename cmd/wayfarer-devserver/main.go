package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/hongminglow/wayfarer/internal/cli"
	"github.com/hongminglow/wayfarer/internal/config"
	"github.com/hongminglow/wayfarer/internal/server"
	"github.com/hongminglow/wayfarer/internal/storage"
	"github.com/hongminglow/wayfarer/internal/storage/memory"
	"github.com/hongminglow/wayfarer/internal/storage/postgres"
)

func main() {
	loadLocalEnv()
	logger := cli.NewLogger(slog.LevelInfo)

	cfg, err := config.LoadServer()
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	users, closeUsers, err := openUserStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("init user store", "error", err)
		os.Exit(1)
	}
	defer closeUsers()

	content := memory.NewContentStore()
	content.Seed()

	srv := server.New(cfg, users, content, logger)

	go func() {
		logger.Info("wayfarer dev backend listening", "address", cfg.HTTPAddress())
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Warn("graceful shutdown error", "error", err)
	}
}

func openUserStore(ctx context.Context, cfg config.Server, logger *slog.Logger) (storage.UserStore, func(), error) {
	if cfg.DatabaseURL == "" {
		logger.Info("DATABASE_URL not set; keeping users in memory")
		return memory.NewUserStore(), func() {}, nil
	}
	store, err := postgres.NewUserStore(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found; relying on existing environment")
	}
}

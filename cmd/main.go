package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	apihttp "kcvdb/internal/http"
	"kcvdb/pkg/keystore"
	"kcvdb/pkg/types"
)

const defaultConfigPath = "config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	path := os.Getenv("KCVDB_CONFIG")
	if path == "" {
		path = defaultConfigPath
	}

	cfg, err := initConfig(path)
	if err != nil {
		slog.Error("failed to load config", "path", path, "error", err)
		os.Exit(1)
	}
	if err := initLogger(&cfg); err != nil {
		slog.Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	level, err := types.ParseConsistencyLevel(cfg.DB.DefaultConsistency)
	if err != nil {
		slog.Error("bad default consistency", "error", err)
		os.Exit(1)
	}

	stores := keystore.NewManager(cfg.DB.ColumnStore)

	server := apihttp.NewServer(stores, strconv.Itoa(cfg.Server.Port), level)
	if err := server.Start(); err != nil {
		slog.Error("failed to start server", "error", err)
		os.Exit(1)
	}

	slog.Info("kcvdb started",
		"port", cfg.Server.Port,
		"default_consistency", level,
		"shrink_threshold", cfg.DB.ColumnStore.ShrinkThreshold)

	<-ctx.Done()

	if err := server.Stop(); err != nil {
		slog.Error("error stopping server", "error", err)
	}
	if err := stores.Close(); err != nil {
		slog.Error("error closing stores", "error", err)
	}

	slog.Info("kcvdb stopped")
}

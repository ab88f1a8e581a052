package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jmorel/presence-relay/internal/config"
	"github.com/jmorel/presence-relay/internal/connection"
	"github.com/jmorel/presence-relay/internal/database"
	"github.com/jmorel/presence-relay/internal/history"
	"github.com/jmorel/presence-relay/internal/router"
	"github.com/jmorel/presence-relay/internal/server"
	"github.com/jmorel/presence-relay/internal/session"
	"github.com/jmorel/presence-relay/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/relayd.example.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting relayd",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"listen", cfg.Server.Host,
		"port", cfg.Server.Port,
		"history_backend", cfg.History.Backend,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Message retention
	var store history.Store
	switch cfg.History.Backend {
	case history.BackendPostgres:
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)
		pool, err := database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg := history.NewPostgresStore(history.PostgresConfig{
			BatchSize:     cfg.History.BatchSize,
			FlushInterval: cfg.History.FlushInterval,
			BufferSize:    cfg.History.BufferSize,
		}, pool, logger)
		if err := pg.Start(ctx); err != nil {
			logger.Error("failed to start history store", "error", err)
			os.Exit(1)
		}
		store = pg
	case history.BackendMemory:
		store = history.NewMemoryStore(cfg.History.Capacity)
	default:
		store = history.Discard{}
	}

	registry := session.NewRegistry()

	hub := connection.NewHub(connection.Config{
		SendBufferSize:  cfg.Connections.SendBufferSize,
		EventBufferSize: cfg.Connections.EventBufferSize,
		WriteTimeout:    cfg.Connections.WriteTimeout,
		PingInterval:    cfg.Connections.PingInterval,
		PongTimeout:     cfg.Connections.PongTimeout,
		MaxMessageSize:  cfg.Connections.MaxMessageSize,
	}, logger)

	rt := router.New(hub.Events(), registry, hub, store, logger)

	// The router outlives the signal context: it has to keep consuming
	// while the server kicks connections during shutdown. Stop tears it
	// down below.
	if err := rt.Start(context.Background()); err != nil {
		logger.Error("failed to start router", "error", err)
		os.Exit(1)
	}

	srv := server.New(cfg.Server, hub, registry, store, logger)

	g, runCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(runCtx)
	})

	logger.Info("relayd running")

	err = g.Wait()

	logger.Info("shutting down...")

	// The server has already kicked live connections, so their disconnect
	// events are in flight. Stop the router after it drains them, then
	// flush retention.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if stopErr := rt.Stop(shutdownCtx); stopErr != nil {
		logger.Warn("router stop", "error", stopErr)
	}
	if closeErr := store.Close(shutdownCtx); closeErr != nil {
		logger.Warn("history store close", "error", closeErr)
	}

	if err != nil {
		logger.Error("relayd exited with error", "error", err)
		os.Exit(1)
	}
	logger.Info("relayd stopped")
}

package main

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"worldmap/internal/config"
	"worldmap/internal/engine"
	"worldmap/internal/logging"
	"worldmap/internal/observability"
	"worldmap/internal/store"
	"worldmap/internal/store/memory"
	"worldmap/internal/store/postgres"
	"worldmap/internal/store/sqlite"
)

func openStore(ctx context.Context, dsn string) (store.Store, error) {
	switch {
	case strings.HasPrefix(dsn, "memory://"):
		return memory.New(), nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.New(ctx, dsn)
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.New(ctx, dsn)
	default:
		return nil, fmt.Errorf("unsupported storage dsn %q", dsn)
	}
}

// session is everything a subcommand needs once the config is loaded.
type session struct {
	cfg    *config.ProjectConfig
	logger *zap.Logger
	db     store.Store
	engine *engine.Engine

	shutdownTracing func(context.Context) error
}

func openSession(ctx context.Context) (*session, error) {
	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	shutdownTracing, err := observability.Setup(ctx, observability.Config{
		ServiceName:    "worldmap",
		ServiceVersion: version,
		Enabled:        cfg.Tracing.Enabled,
		Endpoint:       cfg.Tracing.Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("setting up tracing: %w", err)
	}

	db, err := openStore(ctx, cfg.Storage.DSN)
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, err
	}

	e, err := engine.New(db, engine.OptionsFromConfig(cfg), logger)
	if err == nil {
		err = e.Open(ctx)
	}
	if err != nil {
		db.Close(ctx)
		_ = shutdownTracing(ctx)
		return nil, err
	}

	return &session{cfg: cfg, logger: logger, db: db, engine: e, shutdownTracing: shutdownTracing}, nil
}

func (s *session) Close(ctx context.Context) {
	if err := s.db.Close(ctx); err != nil {
		s.logger.Warn("closing store", zap.Error(err))
	}
	if err := s.shutdownTracing(ctx); err != nil {
		s.logger.Warn("flushing traces", zap.Error(err))
	}
	_ = s.logger.Sync()
}

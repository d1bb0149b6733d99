package main

import (
	"fmt"

	"github.com/kursadbilgin/failedemails-report/internal/config"
	"github.com/kursadbilgin/failedemails-report/internal/infra/database"
	"github.com/kursadbilgin/failedemails-report/internal/observability"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// runtime holds what every subcommand needs.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
}

func newRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, cfg.TablePrefix)
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("database initialization failed: %w", err)
	}

	return &runtime{cfg: cfg, logger: logger, db: db}, nil
}

func (r *runtime) Close() {
	if sqlDB, err := r.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = r.logger.Sync()
}

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/kursadbilgin/failedemails-report/internal/access"
	"github.com/kursadbilgin/failedemails-report/internal/handler"
	infraredis "github.com/kursadbilgin/failedemails-report/internal/infra/redis"
	"github.com/kursadbilgin/failedemails-report/internal/lang"
	"github.com/kursadbilgin/failedemails-report/internal/observability"
	"github.com/kursadbilgin/failedemails-report/internal/repository"
	"github.com/kursadbilgin/failedemails-report/internal/service"
	"github.com/kursadbilgin/failedemails-report/internal/settings"
	"github.com/kursadbilgin/failedemails-report/internal/transport"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the report over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			defer rt.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, rt)
		},
	}
}

func serve(ctx context.Context, rt *runtime) error {
	cfg, logger := rt.cfg, rt.logger

	sqlDB, err := rt.db.DB()
	if err != nil {
		return fmt.Errorf("underlying db init failed: %w", err)
	}

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis initialization failed: %w", err)
	}
	defer rdb.Close()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	siteAdmins, err := cfg.SiteAdminIDs()
	if err != nil {
		return err
	}
	reportViewers, err := cfg.ReportViewerIDs()
	if err != nil {
		return err
	}

	strs := lang.New(cfg.Lang)
	metrics := observability.NewMetrics()

	policy, err := access.NewPolicy(repository.NewGormUserRepo(rt.db), access.Options{
		SiteAdmins:            siteAdmins,
		ReportViewers:         reportViewers,
		ForceLoginForProfiles: cfg.ForceLoginForProfiles,
	})
	if err != nil {
		return err
	}

	settingsCache, err := infraredis.NewSettingsCache(rdb)
	if err != nil {
		return err
	}
	settingsSvc, err := settings.NewService(repository.NewGormConfigRepo(rt.db), settingsCache, logger)
	if err != nil {
		return err
	}

	limiter, err := infraredis.NewRedisRateLimiter(rdb, "download", cfg.DownloadRateLimit, time.Minute)
	if err != nil {
		return err
	}

	reportSvc, err := service.NewReportService(
		repository.NewGormFailureRepo(rt.db),
		settingsSvc,
		policy,
		limiter,
		strs,
		metrics,
		service.ReportConfig{WWWRoot: cfg.WWWRoot, Location: loc},
		logger,
	)
	if err != nil {
		return err
	}

	tableState, err := infraredis.NewTableStateStore(rdb, 0)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		AppName:               "failedemails",
		DisableStartupMessage: true,
		ErrorHandler:          transport.ErrorHandler(logger),
	})
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(handler.RequestContext())
	app.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(app, sqlDB, rdb)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	if err := handler.RegisterReportRoutes(app, reportSvc, tableState, policy, handler.ReportRouteOptions{
		AuthHeader: cfg.AuthHeader,
		Lang:       cfg.Lang,
		Logger:     logger,
	}); err != nil {
		return err
	}
	if err := handler.RegisterSettingsRoutes(app, settingsSvc, policy, cfg.AuthHeader, strs); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(fmt.Sprintf(":%d", cfg.APIPort))
	}()

	logger.Info("failed emails report started",
		zap.Int("port", cfg.APIPort),
		zap.String("driver", cfg.DatabaseDriver),
	)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return app.ShutdownWithContext(shutdownCtx)
}

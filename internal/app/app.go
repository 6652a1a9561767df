package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AndVl1/chatkeep-sub003/internal/config"
	"github.com/AndVl1/chatkeep-sub003/internal/metrics"
	"github.com/AndVl1/chatkeep-sub003/internal/repository"
	"github.com/AndVl1/chatkeep-sub003/internal/service"
)

// App owns the engine's process-level wiring: database, repositories, the
// moderation service, background sweeps and the metrics endpoint. The
// platform ports are supplied by the hosting process; the engine itself
// never talks to Telegram.
type App struct {
	cfg    *config.Config
	logger *slog.Logger
	ports  service.Ports

	svc service.Service
}

func NewApp(cfg *config.Config, logger *slog.Logger, ports service.Ports) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
		ports:  ports,
	}
}

// Service returns the wired moderation service; valid after Run has
// initialized the storage layer.
func (a *App) Service() service.Service {
	return a.svc
}

func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a.logger.Info("Starting moderation engine")

	db, err := repository.NewPostgresDB(a.cfg.GetDSN())
	if err != nil {
		return fmt.Errorf("failed to init db: %w", err)
	}

	repos := service.Repositories{
		Config:     repository.NewChatConfigRepository(db, a.cfg.EnableCache),
		Warnings:   repository.NewWarningRepository(db),
		Punishment: repository.NewPunishmentRepository(db),
		Blocklist:  repository.NewBlocklistRepository(db),
		Locks:      repository.NewLockRepository(db),
		Antiflood:  repository.NewAntifloodRepository(db),
		AdminCache: repository.NewAdminCacheRepository(db),
		Media:      repository.NewMediaRepository(db),
		Features:   repository.NewFeatureRepository(db),
		Stats:      repository.NewStatsRepository(db),
	}

	a.svc = service.NewModerationService(a.logger, repos, a.ports, service.Options{
		AdminCacheTTL:     a.cfg.AdminCacheTTL,
		MediaRetentionAge: a.cfg.MediaRetentionAge,
		SweepInterval:     a.cfg.SweepInterval,
	})
	a.svc.StartMetricsUpdater(ctx)
	a.svc.StartRetentionTasks(ctx)

	metricsSrv := metrics.NewServer(a.logger, a.cfg.MetricsAddr)
	go func() {
		if err := metricsSrv.Listen(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("Metrics server failed", "error", err)
		}
	}()

	<-ctx.Done()
	a.logger.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("Metrics server shutdown failed", "error", err)
	}

	return nil
}

package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "StressPulse/internal/domain/repository"
	"StressPulse/internal/services/stress"
	"StressPulse/internal/usecase"
	pkgch "StressPulse/pkg/clickhouse"
	"StressPulse/pkg/config"
	xhttp "StressPulse/pkg/http"
	applogger "StressPulse/pkg/logger"

	"github.com/robfig/cron/v3"
)

// App encapsulates the entire application lifecycle: the scheduled daily
// pipeline, the read API, and graceful teardown of infrastructure clients.
type App struct {
	cfg         *config.Config
	l           *applogger.Logger
	runner      *usecase.StressRunner
	weights     *stress.WeightManager
	httpHandler xhttp.Handler
	httpServer  *xhttp.Server
	chClient    *pkgch.Client
	weightStore domrepo.WeightStore
	publisher   domrepo.EventPublisher
	cron        *cron.Cron
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	runner *usecase.StressRunner,
	weights *stress.WeightManager,
	handler xhttp.Handler,
	chClient *pkgch.Client,
	weightStore domrepo.WeightStore,
	publisher domrepo.EventPublisher,
) *App {
	return &App{
		cfg:         cfg,
		l:           l,
		runner:      runner,
		weights:     weights,
		httpHandler: handler,
		chClient:    chClient,
		weightStore: weightStore,
		publisher:   publisher,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Restore the persisted weight vector before the first scheduled run.
	if err := a.weights.Bootstrap(ctx); err != nil {
		a.l.Warn("weight vector bootstrap failed", applogger.Error(err))
	}

	a.cron = cron.New()
	if _, err := a.cron.AddFunc(a.cfg.Stress.Schedule, func() {
		asOf := time.Now().UTC()
		if _, err := a.runner.RunDaily(ctx, asOf); err != nil {
			a.l.Error("scheduled stress run failed",
				applogger.Time("as_of", asOf),
				applogger.Error(err),
			)
		}
	}); err != nil {
		a.l.Error("invalid schedule", applogger.String("schedule", a.cfg.Stress.Schedule), applogger.Error(err))
		return err
	}
	a.cron.Start()
	a.l.Info("scheduler started", applogger.String("schedule", a.cfg.Stress.Schedule))

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// RunOnce executes a single pipeline cycle and exits. Used by the -once
// flag for backfills and operational reruns.
func (a *App) RunOnce(ctx context.Context, asOf time.Time) error {
	if err := a.weights.Bootstrap(ctx); err != nil {
		a.l.Warn("weight vector bootstrap failed", applogger.Error(err))
	}
	_, err := a.runner.RunDaily(ctx, asOf)
	a.close()
	return err
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	// Let an in-flight scheduled run finish.
	stopCtx := a.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(a.cfg.Server.ShutdownTimeout):
		a.l.Warn("scheduled run did not finish before timeout")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	a.close()
	a.l.Info("shutdown complete")
	return nil
}

func (a *App) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.l.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.weightStore != nil {
		if err := a.weightStore.Close(); err != nil {
			a.l.Warn("weight store close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}
}

package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ScoreFuse/internal/usecase"
	pkgcache "ScoreFuse/pkg/cache"
	pkgch "ScoreFuse/pkg/clickhouse"
	"ScoreFuse/pkg/config"
	xhttp "ScoreFuse/pkg/http"
	applogger "ScoreFuse/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	l           *applogger.Logger
	scores      *usecase.ScoreUsecase
	collector   *usecase.ScoreCollector
	chClient    *pkgch.Client
	redisCache  *pkgcache.RedisCache
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies. The collector,
// ClickHouse client and Redis cache may be nil when their backends are
// disabled in configuration.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	scores *usecase.ScoreUsecase,
	collector *usecase.ScoreCollector,
	chClient *pkgch.Client,
	redisCache *pkgcache.RedisCache,
	httpHandler xhttp.Handler,
) *App {
	return &App{
		cfg:         cfg,
		l:           l,
		scores:      scores,
		collector:   collector,
		chClient:    chClient,
		redisCache:  redisCache,
		httpHandler: httpHandler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start score feed collector when enabled
	if a.collector != nil {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				a.l.Error("collector start error", applogger.Error(err))
			}
		}()
		a.l.Info("score feed collector started",
			applogger.String("url", a.cfg.Feed.URL),
			applogger.Strings("symbols", a.cfg.Feed.Symbols),
		)
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}
	a.l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	if a.collector != nil {
		if err := a.collector.Shutdown(ctx); err != nil {
			a.l.Warn("collector stop error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	// Closes the publisher and the history store
	if a.scores != nil {
		a.scores.Close()
	}

	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	if a.redisCache != nil {
		if err := a.redisCache.Close(); err != nil {
			a.l.Warn("redis close error", applogger.Error(err))
		}
	}

	a.l.Info("shutdown complete")
	return nil
}

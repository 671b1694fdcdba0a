package dashboard

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"dashsync/config"
	"dashsync/internal/dashboard/feed"
	"dashsync/internal/dashboard/quotecache"
	"dashsync/internal/dashboard/store"
	"dashsync/pkg/storage/postgres"
	"dashsync/pkg/tradeapi"

	"go.uber.org/zap"
)

// Run initializes the synchronization pipeline: the upstream API client,
// the stream state store, optional archive and quote mirror, the render
// feed, and the engine's polling loops. It blocks until ctx is done,
// then tears everything down.
func Run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.Upstream.BaseURL == "" {
		return fmt.Errorf("upstream.base_url is not configured")
	}

	client := tradeapi.NewClient(cfg.Upstream.BaseURL, cfg.Upstream.Timeout)
	st := store.New()

	var engine *Engine
	hub := feed.NewHub(logger, func(view string) {
		engine.SetActiveView(view)
	})
	engine = NewEngine(logger, client, st, hub, cfg.Streams)

	// Optional snapshot archive
	if cfg.Postgres.Enabled {
		archiveClient, err := postgres.InitializeAndMigrateArchive(cfg.Postgres, cfg.Log.Environment, true)
		if err != nil {
			return fmt.Errorf("failed to connect to archive DB: %w", err)
		}
		defer archiveClient.Close()
		engine.SetArchiver(archiveClient)
		logger.Info("snapshot archive enabled")
	}

	// Optional Redis quote mirror
	if cfg.Redis.Enabled {
		mirror, err := quotecache.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Warn("redis not available, continuing without quote mirror", zap.Error(err))
		} else {
			defer mirror.Close()
			engine.SetQuoteMirror(mirror)
			logger.Info("quote mirror connected", zap.String("addr", cfg.Redis.Addr))
		}
	}

	// Render-facing HTTP/WebSocket surface
	srv := &http.Server{
		Addr:    cfg.Feed.ListenAddr,
		Handler: feed.NewRouter(st, hub),
	}
	go func() {
		logger.Info("feed listening", zap.String("addr", cfg.Feed.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("feed server failed", zap.Error(err))
		}
	}()

	engine.Start()
	logger.Info("dashboard sync engine started",
		zap.String("upstream", cfg.Upstream.BaseURL),
		zap.Duration("metrics_interval", cfg.Streams.MetricsInterval),
		zap.Duration("pricing_interval", cfg.Streams.PricingInterval))

	<-ctx.Done()
	logger.Info("shutdown initiated")

	engine.Stop()
	hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("feed server shutdown failed", zap.Error(err))
	}

	return nil
}

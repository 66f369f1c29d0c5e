package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/joshsymonds/relaybot/internal/chat"
	"github.com/joshsymonds/relaybot/internal/config"
	"github.com/joshsymonds/relaybot/internal/metrics"
	"github.com/joshsymonds/relaybot/internal/provenance"
	"github.com/joshsymonds/relaybot/internal/queue"
	"github.com/joshsymonds/relaybot/internal/session"
	"github.com/joshsymonds/relaybot/internal/telegram"
)

const (
	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 30 * time.Second

	metricsReadHeaderTimeout = 5 * time.Second
)

var errShutdownTimeout = errors.New("shutdown timeout exceeded")

// components holds all initialized components.
type components struct {
	handler       *telegram.Handler
	pool          *queue.Pool
	queueManager  *queue.Manager
	metricsServer *http.Server
	logger        *slog.Logger
}

func newComponents(cfg *config.Config, api telegram.BotAPI, logger *slog.Logger) (*components, error) {
	messenger := telegram.NewMessenger(api,
		telegram.WithPollTimeout(cfg.PollTimeout),
		telegram.WithMessengerLogger(logger))

	service, err := chat.NewService(
		session.NewRegistry(),
		provenance.NewStore(),
		messenger,
		cfg.AdminChatID,
		chat.WithLogger(logger),
		chat.WithAnonymousPrefix(cfg.AnonymousPrefix),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat service: %w", err)
	}

	queueManager := queue.NewManager()

	pool, err := queue.NewPool(queue.PoolConfig{
		Manager:   queueManager,
		Processor: service,
		Logger:    logger,
		Size:      cfg.Workers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}

	handler, err := telegram.NewHandler(messenger, queueManager, telegram.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram handler: %w", err)
	}

	c := &components{
		handler:      handler,
		pool:         pool,
		queueManager: queueManager,
		logger:       logger,
	}
	if cfg.MetricsAddr != "" {
		c.metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           metrics.Handler(),
			ReadHeaderTimeout: metricsReadHeaderTimeout,
		}
	}
	return c, nil
}

// runBot runs every component until ctx is canceled or one of them fails.
func runBot(ctx context.Context, cfg *config.Config, api telegram.BotAPI, logger *slog.Logger) error {
	c, err := newComponents(cfg, api, logger)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- c.start(ctx) }()

	logger.Info("relaybot started", slog.Int("workers", cfg.Workers))

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down components")
	select {
	case err := <-done:
		logger.Info("all components stopped")
		return err
	case <-time.After(ShutdownTimeout):
		return errShutdownTimeout
	}
}

// start blocks until every component has stopped.
func (c *components) start(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return c.handler.Start(gctx)
	})
	g.Go(func() error {
		return c.pool.Start(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		c.queueManager.Stop()
		return nil
	})

	if c.metricsServer != nil {
		g.Go(func() error {
			c.logger.Info("serving metrics", slog.String("addr", c.metricsServer.Addr))
			if err := c.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
			defer cancel()
			//nolint:contextcheck // parent context is already done
			return c.metricsServer.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

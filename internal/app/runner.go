package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"
	"golang.org/x/sync/errgroup"

	"kuryer-manager/internal/config"
	"kuryer-manager/internal/dispatch"
	"kuryer-manager/internal/gateway/telegram"
	"kuryer-manager/internal/jobs"
	"kuryer-manager/internal/logx"
	"kuryer-manager/internal/transport/kafka"
)

const shutdownTimeout = 15 * time.Second

// MustRun starts the service using the provided DI container.
func MustRun(container *dig.Container) {
	if err := run(container); err != nil {
		switch {
		case errors.Is(err, context.Canceled):
			log.Println("shutdown requested, exiting")
			return
		case errors.Is(err, context.DeadlineExceeded):
			log.Println("startup aborted: startup timeout exceeded")
			return
		default:
			log.Fatalf("run error: %v", err)
		}
	}
}

func run(container *dig.Container) error {
	return container.Invoke(func(
		ctx context.Context,
		cfg *config.Config,
		server *http.Server,
		pool *pgxpool.Pool,
		loop *dispatch.Loop,
		consumer *kafka.Consumer,
		sweeper *jobs.TokenSweepJob,
		client *telegram.Client,
		logger logx.Logger,
	) error {
		defer closeResources(pool, client, consumer, logger)

		if cfg.Bot.WebhookURL != "" {
			if err := client.SetWebhook(ctx, cfg.Bot.WebhookURL); err != nil {
				return err
			}
			logger.Info("webhook registered", logx.String("url", cfg.Bot.WebhookURL))
		}

		if err := sweeper.Start(); err != nil {
			return err
		}
		defer sweeper.Stop()

		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			logger.Info("service-dispatch listening", logx.String("addr", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			return loop.Run(gctx)
		})

		g.Go(func() error {
			// нулевой консьюмер просто выходит
			return consumer.Run(gctx)
		})

		g.Go(func() error {
			<-gctx.Done()
			logger.Info("shutting down service-dispatch")
			shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := server.Shutdown(shCtx); err != nil {
				logger.Error("graceful shutdown error", logx.Any("err", err))
			}
			return gctx.Err()
		})

		return g.Wait()
	})
}

func closeResources(pool *pgxpool.Pool, client *telegram.Client, consumer *kafka.Consumer, logger logx.Logger) {
	if err := consumer.Close(); err != nil {
		logger.Error("kafka close error", logx.Any("err", err))
	}
	if client != nil {
		client.Close()
	}
	if pool != nil {
		pool.Close()
	}
}

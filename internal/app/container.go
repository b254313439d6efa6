package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/dig"

	"kuryer-manager/internal/bot"
	"kuryer-manager/internal/config"
	"kuryer-manager/internal/dispatch"
	"kuryer-manager/internal/gateway/telegram"
	"kuryer-manager/internal/http/handlers"
	"kuryer-manager/internal/http/router"
	"kuryer-manager/internal/jobs"
	"kuryer-manager/internal/logx"
	"kuryer-manager/internal/metrics"
	"kuryer-manager/internal/repository"
	"kuryer-manager/internal/service/ingest"
	"kuryer-manager/internal/service/lifecycle"
	"kuryer-manager/internal/service/notify"
	"kuryer-manager/internal/service/register"
	"kuryer-manager/internal/transport/kafka"
)

// ContainerBuilder is a dig container builder.
type ContainerBuilder struct {
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error)
	logFatalf func(string, ...interface{})
}

// NewContainerBuilder returns a new dig container builder.
func NewContainerBuilder() *ContainerBuilder {
	return &ContainerBuilder{
		dbConnect: connectDbWithRetry,
		logFatalf: log.Fatalf,
	}
}

// WithDBConnect sets the database connection function.
func (b *ContainerBuilder) WithDBConnect(
	fn func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) *ContainerBuilder {
	if fn != nil {
		b.dbConnect = fn
	}
	return b
}

// WithLogFatalf sets the log.Fatalf function.
func (b *ContainerBuilder) WithLogFatalf(fn func(string, ...interface{})) *ContainerBuilder {
	if fn != nil {
		b.logFatalf = fn
	}
	return b
}

// MustBuild builds and returns a new dig container.
func (b *ContainerBuilder) MustBuild(ctx context.Context) *dig.Container {
	container, err := b.build(ctx)
	if err != nil {
		b.logFatalf("failed to build container: %v", err)
	}
	return container
}

func (b *ContainerBuilder) build(ctx context.Context) (*dig.Container, error) {
	container := dig.New()

	if err := registerCore(container, ctx); err != nil {
		return nil, fmt.Errorf("core: %w", err)
	}
	if err := registerDb(container, b.dbConnect); err != nil {
		return nil, fmt.Errorf("DB: %w", err)
	}
	if err := registerGateway(container); err != nil {
		return nil, fmt.Errorf("gateway: %w", err)
	}
	if err := registerService(container); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	if err := registerHTTP(container); err != nil {
		return nil, fmt.Errorf("http: %w", err)
	}
	return container, nil
}

// MustBuildContainer builds and returns a new dig container.
func MustBuildContainer(ctx context.Context) *dig.Container {
	return NewContainerBuilder().MustBuild(ctx)
}

func provideAll(container *dig.Container, providers ...any) error {
	for _, provider := range providers {
		if err := container.Provide(provider); err != nil {
			return fmt.Errorf("provide %T: %w", provider, err)
		}
	}
	return nil
}

func registerCore(container *dig.Container, ctx context.Context) error {
	return provideAll(container,
		func() context.Context { return ctx },
		NewLogger,
		config.Load,
	)
}

func registerDb(
	container *dig.Container,
	dbConnect func(context.Context, string, int, time.Duration) (*pgxpool.Pool, error),
) error {
	providerDB := func(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
		return dbConnect(ctx, cfg.DB.DSN(), 10, time.Second)
	}
	return provideAll(container, providerDB)
}

func registerGateway(container *dig.Container) error {
	return provideAll(container,
		func(cfg *config.Config) *telegram.Client {
			return telegram.NewClient(cfg.Bot.APIBase, cfg.Bot.Token, 10*time.Second)
		},
	)
}

func registerService(container *dig.Container) error {
	return provideAll(container,
		repository.NewOrderRepo,
		repository.NewCourierRepo,
		repository.NewTokenRepo,
		repository.NewProductRepo,
		func(cfg *config.Config, logger logx.Logger) *dispatch.Loop {
			return dispatch.NewLoop(cfg.Dispatch.QueueSize, logger, dispatch.Metrics{
				Submitted: metrics.NewDispatchSubmittedTotal(),
				Timeouts:  metrics.NewDispatchTimeoutsTotal(),
				Depth:     metrics.NewDispatchQueueDepth(),
			})
		},
		func(couriers *repository.CourierRepo, client *telegram.Client, cfg *config.Config, logger logx.Logger) *notify.Notifier {
			return notify.NewNotifier(couriers, client, cfg.Bot.SendDelay, logger,
				metrics.NewNotificationsSentTotal(), metrics.NewNotificationsFailedTotal())
		},
		func(orders *repository.OrderRepo, couriers *repository.CourierRepo, logger logx.Logger) *lifecycle.Service {
			return lifecycle.NewService(orders, couriers, 3*time.Second, logger, metrics.NewAcceptConflictsTotal())
		},
		func(tokens *repository.TokenRepo, logger logx.Logger) *register.Machine {
			return register.NewMachine(tokens, logger)
		},
		bot.NewSessions,
		func(client *telegram.Client, couriers *repository.CourierRepo, orders *repository.OrderRepo,
			lc *lifecycle.Service, m *register.Machine, sessions *bot.Sessions, logger logx.Logger) *bot.Router {
			return bot.NewRouter(client, couriers, orders, lc, m, sessions, logger)
		},
		func(orders *repository.OrderRepo, notifier *notify.Notifier, lc *lifecycle.Service,
			loop *dispatch.Loop, cfg *config.Config, logger logx.Logger) *ingest.Processor {
			return ingest.NewProcessor(orders, notifier, lc, loop, cfg.Bot.NotifyWait, logger)
		},
		func(cfg *config.Config, p *ingest.Processor, logger logx.Logger) (*kafka.Consumer, error) {
			return kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.Topic, p.Handle, logger)
		},
		func(tokens *repository.TokenRepo, cfg *config.Config, logger logx.Logger) *jobs.TokenSweepJob {
			return jobs.NewTokenSweepJob(tokens, cfg.Sweep.CronSpec, logger)
		},
	)
}

func registerHTTP(container *dig.Container) error {
	serverProvider := func(cfg *config.Config, mux http.Handler) *http.Server {
		return &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			// запас над ожиданием вебхука
			WriteTimeout: 40 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
	}
	return provideAll(container,
		handlers.New,
		func(loop *dispatch.Loop, r *bot.Router, cfg *config.Config, logger logx.Logger) *handlers.WebhookHandler {
			return handlers.NewWebhookHandler(loop, r, cfg.Bot.WebhookWait, logger)
		},
		func(orders *repository.OrderRepo, products *repository.ProductRepo, notifier *notify.Notifier,
			loop *dispatch.Loop, cfg *config.Config, logger logx.Logger) *handlers.OrderHandler {
			return handlers.NewOrderHandler(orders, products, notifier, loop, cfg.Bot.NotifyWait, logger)
		},
		func(tokens *repository.TokenRepo, cfg *config.Config, logger logx.Logger) *handlers.TokenHandler {
			return handlers.NewTokenHandler(tokens, cfg.Admin.Token, logger)
		},
		router.New,
		serverProvider,
	)
}

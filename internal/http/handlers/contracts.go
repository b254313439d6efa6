package handlers

import (
	"context"
	"time"

	"kuryer-manager/internal/dispatch"
	"kuryer-manager/internal/domain"
)

// submitter schedules work on the dispatch loop.
type submitter interface {
	Submit(name string, task dispatch.Task) (*dispatch.Result, error)
	SubmitWait(name string, task dispatch.Task, timeout time.Duration) error
}

// updateRouter processes one raw Telegram update.
type updateRouter interface {
	HandleUpdate(ctx context.Context, raw []byte) error
}

// orderStore persists new storefront orders.
type orderStore interface {
	Create(ctx context.Context, o *domain.Order, items []domain.OrderItem) error
}

// productCatalog reads sellable products.
type productCatalog interface {
	GetActive(ctx context.Context, id int64) (*domain.Product, error)
}

// broadcaster fans a new order out to the couriers of its region.
type broadcaster interface {
	Broadcast(ctx context.Context, order *domain.Order) error
}

// tokenStore persists one-time registration tokens.
type tokenStore interface {
	Create(ctx context.Context, t *domain.RegistrationToken) (int64, error)
}

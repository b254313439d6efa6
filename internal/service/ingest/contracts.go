package ingest

import (
	"context"
	"time"

	"kuryer-manager/internal/dispatch"
	"kuryer-manager/internal/domain"
)

// orderBook abstracts the subset of order storage the processor reads.
type orderBook interface {
	GetByID(ctx context.Context, orderID string) (*domain.Order, error)
}

// broadcaster fans a new order out to the couriers of its region.
type broadcaster interface {
	Broadcast(ctx context.Context, order *domain.Order) error
}

// canceller voids an order that the upstream shop cancelled.
type canceller interface {
	Cancel(ctx context.Context, orderID string) (*domain.Order, error)
}

// submitter schedules a task on the dispatch loop and waits for it.
type submitter interface {
	SubmitWait(name string, task dispatch.Task, timeout time.Duration) error
}

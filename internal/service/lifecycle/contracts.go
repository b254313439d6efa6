package lifecycle

import (
	"context"

	"kuryer-manager/internal/domain"
)

type orderRepository interface {
	GetByID(ctx context.Context, orderID string) (*domain.Order, error)
	Accept(ctx context.Context, orderID string, courierID int64) (bool, error)
	Advance(ctx context.Context, orderID string, from, to domain.OrderStatus) (bool, error)
}

type courierRepository interface {
	GetByTelegramID(ctx context.Context, telegramID int64) (*domain.Courier, error)
	IncCounter(ctx context.Context, id int64, name string) error
}

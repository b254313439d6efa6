// Package lifecycle enforces the order status machine:
// pending -> accepted -> delivering -> delivered, with cancellation from
// pending or accepted. All writes that resolve races go through
// compare-and-set updates at the persistence layer.
package lifecycle

import (
	"context"
	"strings"
	"time"

	"kuryer-manager/internal/apperr"
	"kuryer-manager/internal/domain"
	"kuryer-manager/internal/logx"
)

type counter interface{ Inc() }

// Service - the order lifecycle machine.
type Service struct {
	orders           orderRepository
	couriers         courierRepository
	operationTimeout time.Duration
	logger           logx.Logger
	conflicts        counter
}

// NewService creates a lifecycle Service. conflicts may be nil.
func NewService(orders orderRepository, couriers courierRepository, timeout time.Duration, logger logx.Logger, conflicts counter) *Service {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if logger == nil {
		logger = logx.Nop()
	}
	return &Service{
		orders:           orders,
		couriers:         couriers,
		operationTimeout: timeout,
		logger:           logger,
		conflicts:        conflicts,
	}
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.operationTimeout)
}

// Accept assigns the order to the courier identified by telegramID.
// Exactly one of N concurrent callers succeeds; losers get
// apperr.AlreadyAssigned and the order is left untouched.
func (s *Service) Accept(ctx context.Context, orderID string, telegramID int64) (*domain.Order, error) {
	orderID, err := validateOrderID(orderID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	courier, err := s.couriers.GetByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, err
	}
	if courier == nil {
		return nil, apperr.NotFound
	}
	if courier.Status != domain.CourierActive {
		return nil, apperr.Invalid
	}

	won, err := s.orders.Accept(ctx, orderID, courier.ID)
	if err != nil {
		return nil, err
	}
	if !won {
		order, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if order == nil {
			return nil, apperr.NotFound
		}
		// expected contention outcome, not an error
		if s.conflicts != nil {
			s.conflicts.Inc()
		}
		return nil, apperr.AlreadyAssigned
	}

	if err := s.couriers.IncCounter(ctx, courier.ID, "total_orders"); err != nil {
		s.logger.Warn("courier counter update failed",
			logx.Int64("courier_id", courier.ID),
			logx.Any("err", err),
		)
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("order accepted",
		logx.String("event", "order_accepted"),
		logx.String("order_id", orderID),
		logx.Int64("courier_id", courier.ID),
	)
	return order, nil
}

// courierTransitions maps each courier-exposed target status to its
// required predecessor.
var courierTransitions = map[domain.OrderStatus]domain.OrderStatus{
	domain.OrderDelivering: domain.OrderAccepted,
	domain.OrderDelivered:  domain.OrderDelivering,
}

// Advance moves the order to target, stamping the transition time exactly
// once. Only accepted->delivering and delivering->delivered are exposed;
// anything else fails with apperr.InvalidTransition.
func (s *Service) Advance(ctx context.Context, orderID string, target domain.OrderStatus) (*domain.Order, error) {
	orderID, err := validateOrderID(orderID)
	if err != nil {
		return nil, err
	}

	from, ok := courierTransitions[target]
	if !ok {
		return nil, apperr.InvalidTransition
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	moved, err := s.orders.Advance(ctx, orderID, from, target)
	if err != nil {
		return nil, err
	}
	if !moved {
		order, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if order == nil {
			return nil, apperr.NotFound
		}
		return nil, apperr.InvalidTransition
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if target == domain.OrderDelivered && order != nil && order.CourierID != nil {
		if err := s.couriers.IncCounter(ctx, *order.CourierID, "completed_orders"); err != nil {
			s.logger.Warn("courier counter update failed",
				logx.Int64("courier_id", *order.CourierID),
				logx.Any("err", err),
			)
		}
	}

	s.logger.Info("order advanced",
		logx.String("event", "order_advanced"),
		logx.String("order_id", orderID),
		logx.String("status", string(target)),
	)
	return order, nil
}

// Cancel moves the order to cancelled from pending or accepted.
// Administrative surface of the state space.
func (s *Service) Cancel(ctx context.Context, orderID string) (*domain.Order, error) {
	orderID, err := validateOrderID(orderID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	moved := false
	for _, from := range []domain.OrderStatus{domain.OrderPending, domain.OrderAccepted} {
		moved, err = s.orders.Advance(ctx, orderID, from, domain.OrderCancelled)
		if err != nil {
			return nil, err
		}
		if moved {
			break
		}
	}
	if !moved {
		order, err := s.orders.GetByID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if order == nil {
			return nil, apperr.NotFound
		}
		return nil, apperr.InvalidTransition
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order != nil && order.CourierID != nil {
		if err := s.couriers.IncCounter(ctx, *order.CourierID, "cancelled_orders"); err != nil {
			s.logger.Warn("courier counter update failed",
				logx.Int64("courier_id", *order.CourierID),
				logx.Any("err", err),
			)
		}
	}
	return order, nil
}

func validateOrderID(raw string) (string, error) {
	orderID := strings.TrimSpace(raw)
	if orderID == "" {
		return "", apperr.Invalid
	}
	return orderID, nil
}

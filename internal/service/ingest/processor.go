package ingest

import (
	"context"
	"errors"
	"strings"
	"time"

	"kuryer-manager/internal/apperr"
	"kuryer-manager/internal/domain"
	"kuryer-manager/internal/logx"
)

// Processor turns upstream order events into courier-side actions.
type Processor struct {
	orders     orderBook
	notifier   broadcaster
	lifecycle  canceller
	loop       submitter
	notifyWait time.Duration
	logger     logx.Logger
	byStatus   map[string]func(context.Context, Event) error
}

// NewProcessor creates an event processor bound to the dispatch loop.
func NewProcessor(orders orderBook, notifier broadcaster, lifecycle canceller, loop submitter, notifyWait time.Duration, logger logx.Logger) *Processor {
	if logger == nil {
		logger = logx.Nop()
	}
	p := &Processor{
		orders:     orders,
		notifier:   notifier,
		lifecycle:  lifecycle,
		loop:       loop,
		notifyWait: notifyWait,
		logger:     logger,
	}
	p.byStatus = map[string]func(context.Context, Event) error{
		"created":   p.onCreated,
		"pending":   p.onCreated,
		"cancelled": p.onCancelled,
		"canceled":  p.onCancelled,
		"deleted":   p.onCancelled,
	}
	return p
}

// Handle processes a single upstream event. Unknown statuses are dropped,
// transient failures are returned so the broker redelivers.
func (p *Processor) Handle(ctx context.Context, e Event) error {
	fn, ok := p.byStatus[strings.ToLower(strings.TrimSpace(e.Status))]
	if !ok {
		return nil
	}
	return fn(ctx, e)
}

func (p *Processor) onCreated(ctx context.Context, e Event) error {
	order, err := p.orders.GetByID(ctx, e.OrderID)
	if err != nil {
		return err
	}
	if order == nil {
		// заказа нет у нас, ждать бессмысленно
		p.logger.Warn("event for unknown order", logx.String("order_id", e.OrderID))
		return nil
	}
	if order.Status != domain.OrderPending {
		// повторная доставка события, рассылка уже была
		return nil
	}

	err = p.loop.SubmitWait("broadcast "+order.ID, func(taskCtx context.Context) error {
		return p.notifier.Broadcast(taskCtx, order)
	}, p.notifyWait)
	if errors.Is(err, apperr.Timeout) {
		// рассылка продолжается в фоне
		p.logger.Warn("broadcast still running", logx.String("order_id", order.ID))
		return nil
	}
	return err
}

func (p *Processor) onCancelled(ctx context.Context, e Event) error {
	_, err := p.lifecycle.Cancel(ctx, e.OrderID)
	switch {
	case errors.Is(err, apperr.NotFound):
		return nil
	case errors.Is(err, apperr.InvalidTransition):
		// уже в терминальном статусе
		return nil
	}
	return err
}

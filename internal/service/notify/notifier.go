// Package notify implements the notification fan-out engine: one new order
// is broadcast to every active courier of its region, with paced sequential
// sends and per-recipient failure isolation.
package notify

import (
	"context"
	"fmt"
	"time"

	"kuryer-manager/internal/bot"
	"kuryer-manager/internal/domain"
	"kuryer-manager/internal/gateway/telegram"
	"kuryer-manager/internal/logx"
)

type courierDirectory interface {
	ListActiveByRegion(ctx context.Context, region domain.RegionCode) ([]domain.Courier, error)
}

type sender interface {
	Send(ctx context.Context, msg telegram.SendMessage) error
}

type counter interface{ Inc() }

// Notifier broadcasts new-order notifications to the region's courier pool.
type Notifier struct {
	directory courierDirectory
	sender    sender
	delay     time.Duration
	logger    logx.Logger
	sent      counter
	failed    counter
	sleep     func(context.Context, time.Duration) bool
}

// NewNotifier creates a Notifier. delay paces consecutive sends to respect
// the Bot API rate limit. Counters may be nil.
func NewNotifier(directory courierDirectory, s sender, delay time.Duration, logger logx.Logger, sent, failed counter) *Notifier {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Notifier{
		directory: directory,
		sender:    s,
		delay:     delay,
		logger:    logger,
		sent:      sent,
		failed:    failed,
		sleep:     sleepWithContext,
	}
}

// Broadcast resolves the order's region, queries the courier pool and sends
// the notification to each courier in turn. A failed send is logged and does
// not abort the pass; only a directory failure does. An empty pool is a
// normal terminal outcome.
func (n *Notifier) Broadcast(ctx context.Context, order *domain.Order) error {
	code := domain.ResolveRegion(order.Region)

	n.logger.Info("order broadcast started",
		logx.String("order_id", order.ID),
		logx.String("region", order.Region),
		logx.String("region_code", string(code)),
	)

	couriers, err := n.directory.ListActiveByRegion(ctx, code)
	if err != nil {
		return fmt.Errorf("broadcast order %q: directory: %w", order.ID, err)
	}
	if len(couriers) == 0 {
		n.logger.Warn("no active couriers in region",
			logx.String("order_id", order.ID),
			logx.String("region_code", string(code)),
		)
		return nil
	}

	text := bot.NewOrderText(order)
	keyboard := bot.OrderActionKeyboard(order.ID)

	success := 0
	for i, c := range couriers {
		msg := telegram.SendMessage{
			ChatID:                c.TelegramID,
			Text:                  text,
			ParseMode:             "HTML",
			DisableWebPagePreview: true,
			ReplyMarkup:           keyboard,
		}
		if err := n.sender.Send(ctx, msg); err != nil {
			// isolate the failure, keep going
			if n.failed != nil {
				n.failed.Inc()
			}
			n.logger.Error("notification send failed",
				logx.String("order_id", order.ID),
				logx.Int64("courier_id", c.ID),
				logx.Any("err", err),
			)
		} else {
			success++
			if n.sent != nil {
				n.sent.Inc()
			}
		}

		if i < len(couriers)-1 && n.delay > 0 {
			if !n.sleep(ctx, n.delay) {
				break
			}
		}
	}

	n.logger.Info("order broadcast finished",
		logx.String("order_id", order.ID),
		logx.Int("couriers", len(couriers)),
		logx.Int("delivered", success),
	)
	return nil
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kuryer-manager/internal/domain"
	"kuryer-manager/internal/gateway/telegram"
	"kuryer-manager/internal/logx"
)

const activeOrdersLimit = 20

func (r *Router) courierFor(ctx context.Context, msg *telegram.Message) (*domain.Courier, error) {
	courier, err := r.couriers.GetByTelegramID(ctx, msg.From.ID)
	if err != nil {
		return nil, err
	}
	if courier == nil {
		return nil, r.send(ctx, msg.Chat.ID, textNotRegistered, nil)
	}
	return courier, nil
}

func (r *Router) handleMyOrders(ctx context.Context, msg *telegram.Message) error {
	courier, err := r.courierFor(ctx, msg)
	if err != nil || courier == nil {
		return err
	}

	orders, err := r.orders.ListByCourier(ctx, courier.ID,
		[]domain.OrderStatus{domain.OrderAccepted, domain.OrderDelivering}, activeOrdersLimit)
	if err != nil {
		r.logger.Error("list active orders failed", logx.Int64("courier_id", courier.ID), logx.Any("err", err))
		return r.send(ctx, msg.Chat.ID, textTryLater, nil)
	}
	if len(orders) == 0 {
		return r.send(ctx, msg.Chat.ID, textNoActive, nil)
	}

	// по сообщению на заказ, чтобы клавиатуры не путались
	for i := range orders {
		o := &orders[i]
		if err := r.api.Send(ctx, telegram.SendMessage{
			ChatID:      msg.Chat.ID,
			Text:        activeOrderText(o),
			ParseMode:   "HTML",
			ReplyMarkup: OrderStatusKeyboard(o.ID, o.Status),
		}); err != nil {
			r.logger.Warn("send active order failed", logx.String("order_id", o.ID), logx.Any("err", err))
		}
	}
	return nil
}

func (r *Router) handleProfile(ctx context.Context, msg *telegram.Message) error {
	courier, err := r.courierFor(ctx, msg)
	if err != nil || courier == nil {
		return err
	}

	var b strings.Builder
	b.WriteString("👤 <b>Profil</b>\n\n")
	fmt.Fprintf(&b, "Ism: %s\n", courier.FullName())
	fmt.Fprintf(&b, "Telefon: %s\n", courier.Phone)
	fmt.Fprintf(&b, "Hudud: %s\n", courier.Region.DisplayName())
	fmt.Fprintf(&b, "Holat: %s\n\n", courier.Status.DisplayName())
	fmt.Fprintf(&b, "📦 Jami buyurtmalar: %d\n", courier.TotalOrders)
	fmt.Fprintf(&b, "✅ Yetkazilgan: %d\n", courier.CompletedOrders)
	fmt.Fprintf(&b, "❌ Bekor qilingan: %d", courier.CancelledOrders)

	return r.send(ctx, msg.Chat.ID, b.String(), MainMenuKeyboard())
}

func (r *Router) handleStats(ctx context.Context, msg *telegram.Message) error {
	courier, err := r.courierFor(ctx, msg)
	if err != nil || courier == nil {
		return err
	}

	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekStart := dayStart.AddDate(0, 0, -6)

	today, err := r.orders.CountByCourier(ctx, courier.ID, domain.OrderDelivered, &dayStart)
	if err != nil {
		r.logger.Error("count today failed", logx.Int64("courier_id", courier.ID), logx.Any("err", err))
		return r.send(ctx, msg.Chat.ID, textTryLater, nil)
	}
	week, err := r.orders.CountByCourier(ctx, courier.ID, domain.OrderDelivered, &weekStart)
	if err != nil {
		r.logger.Error("count week failed", logx.Int64("courier_id", courier.ID), logx.Any("err", err))
		return r.send(ctx, msg.Chat.ID, textTryLater, nil)
	}

	text := fmt.Sprintf(
		"📊 <b>Statistika</b>\n\n"+
			"Bugun yetkazilgan: %d\n"+
			"Oxirgi 7 kun: %d\n"+
			"Jami yetkazilgan: %d",
		today, week, courier.CompletedOrders,
	)
	return r.send(ctx, msg.Chat.ID, text, MainMenuKeyboard())
}

func (r *Router) handleHistory(ctx context.Context, msg *telegram.Message) error {
	courier, err := r.courierFor(ctx, msg)
	if err != nil || courier == nil {
		return err
	}

	orders, err := r.orders.ListByCourier(ctx, courier.ID,
		[]domain.OrderStatus{domain.OrderDelivered, domain.OrderCancelled}, 10)
	if err != nil {
		r.logger.Error("list history failed", logx.Int64("courier_id", courier.ID), logx.Any("err", err))
		return r.send(ctx, msg.Chat.ID, textTryLater, nil)
	}
	if len(orders) == 0 {
		return r.send(ctx, msg.Chat.ID, textNoHistory, nil)
	}

	var b strings.Builder
	b.WriteString("📜 <b>Oxirgi buyurtmalar</b>\n\n")
	for i := range orders {
		o := &orders[i]
		fmt.Fprintf(&b, "%s <b>#%s</b> %s so'm (%s)\n",
			historyEmoji(o.Status), o.ID, FormatPrice(o.TotalPrice), o.CreatedAt.Format("02.01.2006"))
	}
	return r.send(ctx, msg.Chat.ID, b.String(), MainMenuKeyboard())
}

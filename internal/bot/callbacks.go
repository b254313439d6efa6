package bot

import (
	"context"
	"errors"
	"strings"

	"kuryer-manager/internal/apperr"
	"kuryer-manager/internal/domain"
	"kuryer-manager/internal/gateway/telegram"
	"kuryer-manager/internal/logx"
)

// handleCallback dispatches interactive-button presses. Redelivered or
// replayed callbacks are safe: a second accept lands in AlreadyAssigned,
// a second status advance in InvalidTransition, both answered as alerts.
func (r *Router) handleCallback(ctx context.Context, cb *telegram.CallbackQuery) error {
	if cb == nil || cb.Message == nil {
		return nil
	}
	data := cb.Data

	switch {
	case strings.HasPrefix(data, cbAcceptPrefix):
		return r.handleAccept(ctx, cb, strings.TrimPrefix(data, cbAcceptPrefix))
	case strings.HasPrefix(data, cbRejectPrefix):
		return r.answer(ctx, cb, textRejectAck, false)
	case strings.HasPrefix(data, cbStatusPrefix):
		return r.handleStatusChange(ctx, cb, strings.TrimPrefix(data, cbStatusPrefix))
	case data == cbBackToOrders:
		if err := r.api.Delete(ctx, telegram.DeleteMessage{
			ChatID:    cb.Message.Chat.ID,
			MessageID: cb.Message.MessageID,
		}); err != nil {
			r.logger.Warn("delete message failed", logx.Any("err", err))
		}
		return r.answer(ctx, cb, "", false)
	}
	return r.answer(ctx, cb, "", false)
}

func (r *Router) handleAccept(ctx context.Context, cb *telegram.CallbackQuery, orderID string) error {
	order, err := r.lifecycle.Accept(ctx, orderID, cb.From.ID)
	switch {
	case err == nil:
		if err := r.api.Edit(ctx, telegram.EditMessageText{
			ChatID:      cb.Message.Chat.ID,
			MessageID:   cb.Message.MessageID,
			Text:        acceptedOrderText(order),
			ParseMode:   "HTML",
			ReplyMarkup: OrderStatusKeyboard(order.ID, domain.OrderAccepted),
		}); err != nil {
			r.logger.Warn("edit after accept failed", logx.String("order_id", orderID), logx.Any("err", err))
		}
		return r.answer(ctx, cb, "✅ Buyurtma qabul qilindi!", false)

	case errors.Is(err, apperr.AlreadyAssigned):
		return r.answer(ctx, cb, textAlreadyAssigned, true)
	case errors.Is(err, apperr.NotFound):
		return r.answer(ctx, cb, textOrderNotFound, true)
	case errors.Is(err, apperr.Invalid):
		return r.answer(ctx, cb, textNotRegistered, true)
	default:
		r.logger.Error("accept failed", logx.String("order_id", orderID), logx.Any("err", err))
		return r.answer(ctx, cb, textTryLater, true)
	}
}

func (r *Router) handleStatusChange(ctx context.Context, cb *telegram.CallbackQuery, payload string) error {
	// payload is "<orderID>_<target>"
	orderID, target, ok := strings.Cut(payload, "_")
	if !ok || !domain.OrderStatus(target).Valid() {
		return r.answer(ctx, cb, textGenericError, true)
	}
	status := domain.OrderStatus(target)

	order, err := r.lifecycle.Advance(ctx, orderID, status)
	switch {
	case err == nil:
		var markup any
		if status != domain.OrderDelivered {
			markup = OrderStatusKeyboard(order.ID, status)
		}
		if err := r.api.Edit(ctx, telegram.EditMessageText{
			ChatID:      cb.Message.Chat.ID,
			MessageID:   cb.Message.MessageID,
			Text:        advancedOrderText(order, status),
			ParseMode:   "HTML",
			ReplyMarkup: markup,
		}); err != nil {
			r.logger.Warn("edit after advance failed", logx.String("order_id", orderID), logx.Any("err", err))
		}
		return r.answer(ctx, cb, "✅ Status yangilandi: "+statusLabel(status), false)

	case errors.Is(err, apperr.InvalidTransition):
		return r.answer(ctx, cb, textAlreadyAssigned, true)
	case errors.Is(err, apperr.NotFound):
		return r.answer(ctx, cb, textOrderNotFound, true)
	default:
		r.logger.Error("advance failed",
			logx.String("order_id", orderID),
			logx.String("target", target),
			logx.Any("err", err),
		)
		return r.answer(ctx, cb, textTryLater, true)
	}
}

func (r *Router) answer(ctx context.Context, cb *telegram.CallbackQuery, text string, alert bool) error {
	return r.api.AnswerCallback(ctx, telegram.AnswerCallbackQuery{
		CallbackQueryID: cb.ID,
		Text:            text,
		ShowAlert:       alert,
	})
}

// Package bot is the messaging-bot runtime: it decodes inbound Telegram
// updates and dispatches them by update kind crossed with conversation
// state. All its outbound calls run on the dispatch loop.
package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"kuryer-manager/internal/logx"
	"kuryer-manager/internal/gateway/telegram"
)

// updateKind is the coarse shape of an inbound update.
type updateKind int

const (
	kindUnknown updateKind = iota
	kindMessage
	kindCallback
)

// classify peeks at the raw payload without a full decode.
func classify(raw []byte) updateKind {
	switch {
	case gjson.GetBytes(raw, "callback_query").Exists():
		return kindCallback
	case gjson.GetBytes(raw, "message").Exists():
		return kindMessage
	default:
		return kindUnknown
	}
}

// ValidUpdate reports whether the raw payload looks like a Bot API update.
// Used by the webhook ingress to fail fast before submitting to the loop.
func ValidUpdate(raw []byte) bool {
	return gjson.ValidBytes(raw) && gjson.GetBytes(raw, "update_id").Exists()
}

// Router dispatches decoded updates to the matching handler.
type Router struct {
	api       api
	couriers  courierDirectory
	orders    orderBook
	lifecycle lifecycleService
	registrar registrar
	sessions  *Sessions
	logger    logx.Logger
}

// NewRouter wires the bot runtime together.
func NewRouter(api api, couriers courierDirectory, orders orderBook, lc lifecycleService, reg registrar, sessions *Sessions, logger logx.Logger) *Router {
	if logger == nil {
		logger = logx.Nop()
	}
	return &Router{
		api:       api,
		couriers:  couriers,
		orders:    orders,
		lifecycle: lc,
		registrar: reg,
		sessions:  sessions,
		logger:    logger,
	}
}

// HandleUpdate processes one raw update. Unknown update shapes are
// acknowledged and dropped; the provider redelivers on error returns only.
func (r *Router) HandleUpdate(ctx context.Context, raw []byte) error {
	kind := classify(raw)
	if kind == kindUnknown {
		r.logger.Debug("update ignored", logx.Int64("update_id", gjson.GetBytes(raw, "update_id").Int()))
		return nil
	}

	var upd telegram.Update
	if err := json.Unmarshal(raw, &upd); err != nil {
		return fmt.Errorf("decode update: %w", err)
	}

	switch kind {
	case kindCallback:
		return r.handleCallback(ctx, upd.CallbackQuery)
	case kindMessage:
		return r.handleMessage(ctx, upd.Message)
	}
	return nil
}

func (r *Router) handleMessage(ctx context.Context, msg *telegram.Message) error {
	if msg == nil || msg.From == nil {
		return nil
	}
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	switch {
	case strings.HasPrefix(text, "/start"):
		return r.handleStart(ctx, msg, text)
	case text == "/cancel" || strings.EqualFold(text, "bekor qilish"):
		return r.handleCancel(ctx, chatID)
	}

	// conversation state wins over menu matching
	if sess := r.sessions.Get(chatID); sess != nil {
		return r.handleRegistrationStep(ctx, msg, sess)
	}

	switch text {
	case menuMyOrders:
		return r.handleMyOrders(ctx, msg)
	case menuProfile:
		return r.handleProfile(ctx, msg)
	case menuStats:
		return r.handleStats(ctx, msg)
	case menuHistory:
		return r.handleHistory(ctx, msg)
	}
	return nil
}

func (r *Router) send(ctx context.Context, chatID int64, text string, markup any) error {
	return r.api.Send(ctx, telegram.SendMessage{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   "HTML",
		ReplyMarkup: markup,
	})
}

package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"kuryer-manager/internal/apperr"
	"kuryer-manager/internal/bot"
	"kuryer-manager/internal/dispatch"
	"kuryer-manager/internal/logx"
)

type okResponse struct {
	OK bool `json:"ok"`
}

// WebhookHandler serves the Telegram webhook endpoint. Every accepted
// update runs on the dispatch loop, the HTTP goroutine only waits.
type WebhookHandler struct {
	loop   submitter
	router updateRouter
	wait   time.Duration
	logger logx.Logger
}

// NewWebhookHandler wires the bot router and the dispatch loop into HTTP.
func NewWebhookHandler(loop submitter, router updateRouter, wait time.Duration, logger logx.Logger) *WebhookHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &WebhookHandler{loop: loop, router: router, wait: wait, logger: logger}
}

// Receive handles POST /webhook/telegram.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, bodyLimit))
	if err != nil {
		writeWebhookError(h.logger, w, r, http.StatusBadRequest, "cannot read body")
		return
	}
	if !bot.ValidUpdate(raw) {
		writeWebhookError(h.logger, w, r, http.StatusBadRequest, "not a bot update")
		return
	}

	err = h.loop.SubmitWait("webhook update", func(ctx context.Context) error {
		return h.router.HandleUpdate(ctx, raw)
	}, h.wait)

	switch {
	case err == nil:
		writeJSON(h.logger, w, r, http.StatusOK, okResponse{OK: true})
	case errors.Is(err, dispatch.ErrQueueFull):
		writeWebhookError(h.logger, w, r, http.StatusServiceUnavailable, "busy")
	case errors.Is(err, apperr.Timeout):
		// обработка продолжается в фоне
		h.logger.Warn("webhook update still running", logx.String("req_id", reqID(r.Context())))
		writeWebhookError(h.logger, w, r, http.StatusGatewayTimeout, "timeout")
	default:
		h.logger.Error("webhook update failed",
			logx.String("req_id", reqID(r.Context())),
			logx.Any("err", err),
		)
		writeWebhookError(h.logger, w, r, http.StatusInternalServerError, "internal error")
	}
}

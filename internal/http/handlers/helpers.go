package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"kuryer-manager/internal/logx"
)

const (
	bodyLimit = 1 << 20
	dbTimeout = 3 * time.Second
)

func reqID(ctx context.Context) string {
	if id := middleware.GetReqID(ctx); id != "" {
		return id
	}
	return "-"
}

func withDBTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, dbTimeout)
}

func writeJSON(l logx.Logger, w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		l.Error("json encode error",
			logx.String("req_id", reqID(r.Context())),
			logx.Any("err", err),
		)
	}
}

type errResponse struct {
	Error string `json:"error"`
}

func writeError(l logx.Logger, w http.ResponseWriter, r *http.Request, status int, msg string) {
	l.Warn("http error",
		logx.String("req_id", reqID(r.Context())),
		logx.Int("status", status),
		logx.String("msg", msg),
	)
	writeJSON(l, w, r, status, errResponse{Error: msg})
}

// webhookErrResponse mirrors the Bot API reply shape.
type webhookErrResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func writeWebhookError(l logx.Logger, w http.ResponseWriter, r *http.Request, status int, msg string) {
	l.Warn("http error",
		logx.String("req_id", reqID(r.Context())),
		logx.Int("status", status),
		logx.String("msg", msg),
	)
	writeJSON(l, w, r, status, webhookErrResponse{Error: msg})
}

// decodeJSON strictly decodes one JSON value; the caller maps the error
// into its own response envelope.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request, dst *T) error {
	r.Body = http.MaxBytesReader(w, r.Body, bodyLimit)
	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid json")
	}
	if err := dec.Decode(new(struct{})); err != io.EOF {
		return errors.New("invalid json: trailing data")
	}
	return nil
}

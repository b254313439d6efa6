package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"kuryer-manager/internal/domain"
	"kuryer-manager/internal/logx"
)

type createTokenRequest struct {
	CreatedBy string `json:"created_by"`
}

type createTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenHandler issues one-time courier registration tokens.
// Guarded by a static admin token in the X-Admin-Token header.
type TokenHandler struct {
	tokens     tokenStore
	adminToken string
	logger     logx.Logger
	now        func() time.Time
}

// NewTokenHandler wires token storage into the admin HTTP surface.
func NewTokenHandler(tokens tokenStore, adminToken string, logger logx.Logger) *TokenHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &TokenHandler{tokens: tokens, adminToken: adminToken, logger: logger, now: time.Now}
}

// Create handles POST /api/tokens.
func (h *TokenHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.adminToken == "" {
		writeError(h.logger, w, r, http.StatusForbidden, "admin surface disabled")
		return
	}
	got := r.Header.Get("X-Admin-Token")
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.adminToken)) != 1 {
		writeError(h.logger, w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createTokenRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(h.logger, w, r, http.StatusBadRequest, err.Error())
			return
		}
	}

	now := h.now()
	t := &domain.RegistrationToken{
		Token:     domain.NewTokenString(),
		CreatedBy: req.CreatedBy,
		CreatedAt: now,
		ExpiresAt: now.Add(domain.TokenTTL),
	}

	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	id, err := h.tokens.Create(ctx, t)
	if err != nil {
		h.logger.Error("token create failed",
			logx.String("req_id", reqID(r.Context())),
			logx.Any("err", err),
		)
		writeError(h.logger, w, r, http.StatusInternalServerError, "internal error")
		return
	}

	h.logger.Info("registration token issued",
		logx.Int64("token_id", id),
		logx.String("created_by", req.CreatedBy),
		logx.Time("expires_at", t.ExpiresAt),
	)
	writeJSON(h.logger, w, r, http.StatusCreated, createTokenResponse{
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
	})
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"kuryer-manager/internal/apperr"
	"kuryer-manager/internal/domain"
	"kuryer-manager/internal/logx"
)

type orderItemRequest struct {
	ID       int64   `json:"id"`
	Quantity float64 `json:"quantity"`
}

type createOrderRequest struct {
	Name     string             `json:"name"`
	Phone    string             `json:"phone"`
	Region   string             `json:"region"`
	District string             `json:"district"`
	Address  string             `json:"address"`
	Payment  string             `json:"payment"`
	Items    []orderItemRequest `json:"items"`
	Notes    string             `json:"notes"`
}

// createOrderResponse is the storefront envelope, errors included.
type createOrderResponse struct {
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// OrderHandler accepts storefront checkouts and kicks off courier fan-out.
type OrderHandler struct {
	orders     orderStore
	products   productCatalog
	notifier   broadcaster
	loop       submitter
	notifyWait time.Duration
	logger     logx.Logger
}

// NewOrderHandler wires order storage, the catalog and the notifier into HTTP.
func NewOrderHandler(orders orderStore, products productCatalog, notifier broadcaster, loop submitter, notifyWait time.Duration, logger logx.Logger) *OrderHandler {
	if logger == nil {
		logger = logx.Nop()
	}
	return &OrderHandler{
		orders:     orders,
		products:   products,
		notifier:   notifier,
		loop:       loop,
		notifyWait: notifyWait,
		logger:     logger,
	}
}

// Create handles POST /api/orders.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Region = strings.TrimSpace(req.Region)
	req.District = strings.TrimSpace(req.District)
	req.Address = strings.TrimSpace(req.Address)
	phone := normalizeOrderPhone(req.Phone)

	switch {
	case req.Name == "":
		h.writeError(w, r, http.StatusBadRequest, "name is required")
		return
	case phone == "":
		h.writeError(w, r, http.StatusBadRequest, "phone is required")
		return
	case req.Region == "":
		h.writeError(w, r, http.StatusBadRequest, "region is required")
		return
	case req.District == "":
		h.writeError(w, r, http.StatusBadRequest, "district is required")
		return
	case req.Address == "":
		h.writeError(w, r, http.StatusBadRequest, "address is required")
		return
	case req.Payment == "":
		h.writeError(w, r, http.StatusBadRequest, "payment is required")
		return
	case len(req.Items) == 0:
		h.writeError(w, r, http.StatusBadRequest, "items are required")
		return
	}

	ctx, cancel := withDBTimeout(r.Context())
	defer cancel()

	total, items, err := h.priceItems(ctx, req.Items)
	switch {
	case errors.Is(err, apperr.Invalid):
		h.writeError(w, r, http.StatusBadRequest, "invalid item")
		return
	case errors.Is(err, apperr.NotFound):
		h.writeError(w, r, http.StatusNotFound, "product not found or inactive")
		return
	case err != nil:
		h.writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	order := &domain.Order{
		ID:           domain.NewOrderID(),
		CustomerName: req.Name,
		Phone:        phone,
		Address:      req.Address,
		Region:       req.Region,
		District:     req.District,
		Payment:      domain.MapPayment(req.Payment),
		Comment:      strings.TrimSpace(req.Notes),
		TotalPrice:   total,
		Status:       domain.OrderPending,
	}

	if err := h.orders.Create(ctx, order, items); err != nil {
		h.logger.Error("order create failed",
			logx.String("req_id", reqID(r.Context())),
			logx.Any("err", err),
		)
		h.writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	h.broadcast(r, order)

	writeJSON(h.logger, w, r, http.StatusCreated, createOrderResponse{
		Success: true,
		Message: "Buyurtma qabul qilindi",
		Data: map[string]any{
			"order_id":    order.ID,
			"total":       order.TotalPrice,
			"items_count": len(items),
		},
	})
}

// writeError wraps order failures in the storefront envelope.
func (h *OrderHandler) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.logger.Warn("order rejected",
		logx.String("req_id", reqID(r.Context())),
		logx.Int("status", status),
		logx.String("msg", msg),
	)
	writeJSON(h.logger, w, r, status, createOrderResponse{Success: false, Message: msg})
}

// priceItems resolves products and totals the cart at current prices.
// A malformed item is apperr.Invalid, a missing or inactive product
// apperr.NotFound.
func (h *OrderHandler) priceItems(ctx context.Context, reqItems []orderItemRequest) (float64, []domain.OrderItem, error) {
	var total float64
	items := make([]domain.OrderItem, 0, len(reqItems))
	for _, it := range reqItems {
		if it.ID <= 0 || it.Quantity <= 0 {
			return 0, nil, apperr.Invalid
		}
		p, err := h.products.GetActive(ctx, it.ID)
		if err != nil {
			return 0, nil, err
		}
		if p == nil {
			return 0, nil, apperr.NotFound
		}
		total += p.EffectivePrice() * it.Quantity
		items = append(items, domain.OrderItem{ProductID: it.ID, Quantity: it.Quantity})
	}
	return total, items, nil
}

// broadcast hands the fan-out to the dispatch loop. The response does not
// depend on delivery: a slow or failed broadcast never fails the checkout.
func (h *OrderHandler) broadcast(r *http.Request, order *domain.Order) {
	err := h.loop.SubmitWait("broadcast "+order.ID, func(ctx context.Context) error {
		return h.notifier.Broadcast(ctx, order)
	}, h.notifyWait)
	switch {
	case err == nil:
	case errors.Is(err, apperr.Timeout):
		h.logger.Warn("broadcast still running", logx.String("order_id", order.ID))
	default:
		h.logger.Error("broadcast submit failed",
			logx.String("req_id", reqID(r.Context())),
			logx.String("order_id", order.ID),
			logx.Any("err", err),
		)
	}
}

// normalizeOrderPhone keeps digits and a leading plus.
func normalizeOrderPhone(s string) string {
	s = strings.TrimSpace(s)
	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		}
	}
	return b.String()
}

package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kuryer-manager/internal/http/handlers"
	custommw "kuryer-manager/internal/http/middleware"
	"kuryer-manager/internal/logx"
)

// requestTimeout bounds every request. Must stay above the webhook wait,
// otherwise chi cancels the request before the loop answers.
const requestTimeout = 35 * time.Second

// New constructs a chi-based http.Handler with base middleware and routes.
func New(h *handlers.Handlers, wh *handlers.WebhookHandler, oh *handlers.OrderHandler, th *handlers.TokenHandler, logger logx.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(custommw.Observability(logger))

	r.Get("/ping", h.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(h.HealthcheckHead))
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/webhook/telegram", wh.Receive)
	r.Post("/api/orders", oh.Create)
	r.Post("/api/tokens", th.Create)

	r.NotFound(http.HandlerFunc(h.NotFound))

	return r
}

// Package httptransport is the thin HTTP layer over the auth manager and the
// moderation controller. Handlers translate between JSON envelopes and
// domain calls; no business rules live here.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authservice "nyumba/internal/auth/service"
	modservice "nyumba/internal/moderation/service"
	"nyumba/internal/platform/middleware"
	"nyumba/internal/transport/http/json"
)

// Handler carries the wired services for all endpoints.
type Handler struct {
	auth       *authservice.Manager
	moderation *modservice.Controller
	selection  *modservice.SelectionSet
	logger     *slog.Logger
	health     func(ctx context.Context) error
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithHealthCheck wires a readiness probe, typically the database ping.
func WithHealthCheck(check func(ctx context.Context) error) HandlerOption {
	return func(h *Handler) {
		h.health = check
	}
}

// NewHandler constructs the HTTP handler set.
func NewHandler(auth *authservice.Manager, moderation *modservice.Controller, logger *slog.Logger, opts ...HandlerOption) *Handler {
	h := &Handler{
		auth:       auth,
		moderation: moderation,
		selection:  modservice.NewSelectionSet(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// RouterConfig carries the transport-level knobs.
type RouterConfig struct {
	// AllowedOrigin is the dashboard origin allowed by CORS.
	AllowedOrigin string
	// AuthRateLimit is the per-IP request budget per minute on the
	// credential endpoints.
	AuthRateLimit int
}

// NewRouter wires all endpoints with the middleware stack.
func NewRouter(h *Handler, logger *slog.Logger, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.DeviceInfo)
	if cfg.AllowedOrigin != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{cfg.AllowedOrigin},
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", h.handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Credential endpoints are rate limited per IP; everything else is
	// behind a live session token.
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		if cfg.AuthRateLimit > 0 {
			r.Use(httprate.LimitByIP(cfg.AuthRateLimit, time.Minute))
		}
		r.Post("/auth/login", h.handleLogin)
		r.Post("/auth/login/pin", h.handleLoginPIN)
	})

	// Session introspection answers for unauthenticated callers too, with a
	// bare state envelope; identity comes only from the presented token.
	r.Get("/auth/session", h.handleSession)

	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireSession(h.auth, logger))

		r.Post("/auth/pin", h.handleCreatePIN)
		r.Post("/auth/logout", h.handleLogout)

		r.Get("/images", h.handleListImages)
		r.Get("/images/pending", h.handleListPending)
		r.Get("/images/reviewed", h.handleListReviewed)
		r.Get("/images/stats", h.handleStats)
		r.Post("/images/{imageID}/approve", h.handleApprove)
		r.Post("/images/{imageID}/reject", h.handleReject)
		r.Post("/images/bulk-approve", h.handleBulkApprove)
		r.Get("/images/selection", h.handleGetSelection)
		r.Post("/images/selection", h.handleUpdateSelection)

		r.Get("/activity", h.handleActivity)
	})

	return r
}

func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			json.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}
	json.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Package httptransport assembles the HTTP surface: middleware chain, probes,
// metrics and the citizen routes.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"idcard/pkg/platform/httputil"
	"idcard/pkg/platform/middleware/metadata"
	"idcard/pkg/platform/middleware/request"
)

// Routes is implemented by feature handlers.
type Routes interface {
	Register(r chi.Router)
}

// PublicRoutes is implemented by handlers that expose unauthenticated endpoints.
type PublicRoutes interface {
	RegisterPublic(r chi.Router)
}

type Config struct {
	Logger         *slog.Logger
	RequestTimeout time.Duration
	MaxBodyBytes   int64
	ClientIP       *metadata.Resolver
	Metrics        *request.Metrics
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
	// Clock pins request time; nil means time.Now.
	Clock func() time.Time
}

// NewRouter mounts probes and public routes without authentication and every
// feature's Register under requireAuth.
func NewRouter(cfg Config, probes Routes, public []PublicRoutes, requireAuth func(http.Handler) http.Handler, features ...Routes) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	if cfg.ClientIP != nil {
		r.Use(cfg.ClientIP.Handler)
	}
	r.Use(request.RequestTime(cfg.Clock))
	r.Use(request.Logger(cfg.Logger))
	r.Use(request.Instrument(cfg.Metrics))
	r.Use(request.Timeout(cfg.RequestTimeout))
	r.Use(request.BodyLimit(cfg.MaxBodyBytes))
	r.Use(request.ContentTypeJSON)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.Envelope{Error: "not_found", Message: "route not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.Envelope{Error: "method_not_allowed"})
	})

	if probes != nil {
		probes.Register(r)
	}
	if cfg.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", cfg.MetricsHandler)
	}
	for _, p := range public {
		p.RegisterPublic(r)
	}

	r.Group(func(r chi.Router) {
		if requireAuth != nil {
			r.Use(requireAuth)
		}
		for _, f := range features {
			f.Register(r)
		}
	})
	return r
}

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/servicedesk/backend/internal/metrics"
	"github.com/servicedesk/backend/pkg/auth"
)

// RouterConfig collects the handlers mounted by NewRouter.
type RouterConfig struct {
	Base          *Handler
	Submissions   *SubmissionHandler
	Auth          *AuthHandler
	Authenticator auth.Authenticator
	Metrics       http.Handler
}

// NewRouter builds the HTTP surface. /api/form and /api/admin/login are
// public; listing and resending require an admin bearer token.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHTTP)
	r.Use(SecurityHeaders)
	r.Use(cfg.Base.CORS)

	r.Get("/api/health", cfg.Base.Health)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics)
	}

	r.Post("/api/form", cfg.Submissions.Submit)
	r.Post("/api/admin/login", cfg.Auth.Login)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireBearer(cfg.Authenticator))
		r.Get("/api/forms", cfg.Submissions.List)
		r.Post("/api/forms/{id}/resend", cfg.Submissions.Resend)
	})

	return r
}

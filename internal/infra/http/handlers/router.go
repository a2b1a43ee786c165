package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xavierca1/lead-system/internal/infra/http/middleware"
)

type RouterConfig struct {
	Auth        *AuthHandler
	Leads       *LeadHandler
	Dashboard   *DashboardHandler
	Health      *HealthHandler
	Sessions    middleware.SessionParser
	CORSOrigins []string
	// TrustProxy honors X-Forwarded-For/X-Real-IP. Enable only behind a proxy
	// that overwrites those headers.
	TrustProxy bool
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", cfg.Health.Handle)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", cfg.Auth.Register)
		r.Post("/login", cfg.Auth.Login)
		r.Post("/logout", cfg.Auth.Logout)
		r.With(middleware.Authenticate(cfg.Sessions)).Get("/me", cfg.Auth.Me)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(cfg.Sessions))

		r.Route("/leads", func(r chi.Router) {
			r.Post("/", cfg.Leads.Create)
			r.Get("/", cfg.Leads.List)
			r.Get("/board", cfg.Leads.Board)
			r.Patch("/{id}", cfg.Leads.Edit)
			r.Post("/{id}/transition", cfg.Leads.Transition)
			r.Post("/{id}/advance", cfg.Leads.Advance)
			r.Post("/{id}/retreat", cfg.Leads.Retreat)
			r.Post("/{id}/lost", cfg.Leads.MarkLost)
		})

		r.Get("/dashboard", cfg.Dashboard.Dashboard)
		r.Get("/dashboard/ranking", cfg.Dashboard.Ranking)
	})

	return r
}

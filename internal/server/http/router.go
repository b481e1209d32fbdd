// Package httpserver exposes the publishing API over HTTP.
package httpserver

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/and161185/neuralpress/internal/limiter"
)

// DefaultMaxBody caps request bodies.
const DefaultMaxBody = 100 * 1024

// IssueBucket names the limiter bucket of key issuance.
const IssueBucket = "issue_key"

// Options configures the router.
type Options struct {
	AllowedOrigins []string
	AdminSecret    string
	// IssueLimiter guards POST /keys; nil disables the limit.
	IssueLimiter limiter.Limiter
	MaxBody      int64
}

// NewRouter builds the chi router with the middleware chain and all routes.
func NewRouter(h *Handler, opt Options, log *zap.Logger) *chi.Mux {
	if log == nil {
		log = zap.NewNop()
	}
	if opt.MaxBody <= 0 {
		opt.MaxBody = DefaultMaxBody
	}
	origins := opt.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	r.Use(Metrics)
	r.Use(SecurityHeaders)
	r.Use(MaxBodySize(opt.MaxBody))
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(Logger(log))
	r.Use(Recoverer(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Admin-Secret"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/health", h.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if opt.IssueLimiter != nil {
				r.Use(RateLimit(opt.IssueLimiter, IssueBucket, log))
			}
			r.Post("/keys", h.IssueKey)
		})

		r.With(h.RequireKey).Post("/publish", h.Publish)

		r.Get("/posts", h.ListPosts)
		r.Get("/posts/{idOrSlug}", h.GetPost)

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin(opt.AdminSecret))
			r.Get("/posts", h.AdminListPosts)
			r.Patch("/posts/{id}", h.AdminSetPostStatus)
			r.Delete("/keys/{id}", h.AdminDeactivateKey)
			r.Patch("/keys/{id}", h.AdminSetKeyTier)
		})
	})

	return r
}

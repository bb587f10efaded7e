package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"lakegate/internal/middleware"
)

// RouterConfig carries the cross-cutting HTTP settings the router needs.
type RouterConfig struct {
	CORSAllowedOrigins []string
	RateLimit          middleware.RateLimitConfig
}

// NewRouter assembles the full HTTP surface. The health check and login are
// public; everything else requires an authenticated principal.
func NewRouter(h *Handler, auth *middleware.Authenticator, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	if cfg.RateLimit.RequestsPerSecond > 0 {
		r.Use(middleware.RateLimiter(cfg.RateLimit))
	}

	r.Get("/healthz", h.Healthz)

	r.Route("/api/transactions", func(r chi.Router) {
		r.Post("/auth/login/", h.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware)

			r.Get("/", h.ListSources)
			r.Get("/parquet/{folder_name}/", h.FetchParquet)
			r.Get("/db/{table_name}/", h.FetchWarehouse)

			r.Get("/metrics/recent-spending/", h.RecentSpending)
			r.Get("/metrics/user-spending/", h.UserSpending)
			r.Get("/metrics/top-products/", h.TopProducts)

			r.Post("/permissions/grant/", h.GrantPermission)
			r.Post("/permissions/revoke/", h.RevokePermission)
			r.Get("/permissions/list/", h.ListPermissions)
		})
	})

	return r
}

package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/actuallystonmai/course-recommender/internal/handler"
)

type Options struct {
	CORSOrigins []string
	// RateLimit is requests per minute per client IP; zero disables it.
	RateLimit int
	Timeout   time.Duration
}

func Setup(h *handler.Handler, opts Options) http.Handler {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(requestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(instrument)
		if opts.RateLimit > 0 {
			r.Use(httprate.LimitByIP(opts.RateLimit, time.Minute))
		}
		r.Use(middleware.Timeout(opts.Timeout))

		r.Post("/", h.Search)
		r.Get("/search", h.Search)
		r.Post("/search", h.Search)
		r.Get("/courses/similar", h.Similar)

		r.Route("/recommendations", func(r chi.Router) {
			r.Get("/", h.Personalized)
			r.Get("/personalized", h.Personalized)
			r.Get("/collaborative", h.Collaborative)
			r.Get("/hybrid", h.Hybrid)
			r.Get("/trending", h.Trending)
			r.Get("/batch", h.GetBatchRecommendations)
		})

		r.Route("/user", func(r chi.Router) {
			r.Get("/preferences", h.GetPreferences)
			r.Post("/preferences", h.UpdatePreferences)
			r.Get("/favorites", h.GetFavorites)
			r.Post("/favorites", h.SetFavorite)
		})

		r.Post("/interactions", h.AddInteraction)
		r.Get("/dashboard", h.Dashboard)
		r.Post("/admin/catalog/reload", h.ReloadCatalog)
	})

	return r
}

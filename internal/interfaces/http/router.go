package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"constellation-backend/internal/config"
	"constellation-backend/internal/observability"
)

// NewRouter wires the middleware stack and routes. The metrics
// collector may be nil, in which case /metrics is not mounted.
func NewRouter(h *Handler, cfg config.Server, logger *zap.Logger, metrics *observability.Collector) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(Metrics(metrics))
	r.Use(chimiddleware.Recoverer)

	r.Get("/", h.Ping)
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(
			metrics.Registry(),
			promhttp.HandlerOpts{},
		))
	}

	r.Route("/{category}", func(r chi.Router) {
		r.Get("/nodes", h.Nodes)
		r.Get("/edges", h.Edges)
		r.Post("/reload", h.Reload)
		r.Get("/graph", h.VisibleGraph)
		r.Post("/connections", h.Connections)

		r.Route("/selection", func(r chi.Router) {
			r.Post("/toggle", h.ToggleSelection)
			r.Delete("/", h.ClearSelection)
		})

		r.Route("/puzzle", func(r chi.Router) {
			r.Post("/", h.StartPuzzle)
			r.Get("/", h.PuzzleState)
			r.Post("/guess", h.SubmitGuess)
			r.Post("/skip", h.SkipPuzzle)
			r.Post("/advance", h.AdvancePuzzle)
			r.Delete("/", h.ExitPuzzle)
		})
	})

	return r
}

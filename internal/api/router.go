package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pulsefeed/autopub/internal/api/handler"
	apimw "github.com/pulsefeed/autopub/internal/api/middleware"
	"github.com/pulsefeed/autopub/internal/gate"
	"github.com/pulsefeed/autopub/internal/service"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	svc *service.PostService,
	g *gate.ReleaseGate,
	reg prometheus.Gatherer,
	enqueueRate int,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- global middleware (applied to every route) ---
	r.Use(chimw.Recoverer)          // recover panics, return 500
	r.Use(chimw.RealIP)             // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1 << 20)) // 1 MB max request body
	r.Use(apimw.CorrelationID)      // X-Correlation-ID inject / echo
	r.Use(apimw.RequestLogger(logger))

	// --- handler instances ---
	ph := handler.NewPostHandler(svc, logger)
	sh := handler.NewStatsHandler(svc, g)
	hh := handler.NewHealthHandler()

	// --- routes ---
	r.Get("/health", hh.Health)

	// Raw Prometheus scrape endpoint (for Prometheus server / Grafana)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		// Enqueue is throttled; the reporting reads are not.
		r.With(apimw.RateLimit(enqueueRate)).Post("/posts", ph.Enqueue)
		r.Get("/posts", ph.List)
		r.Get("/posts/{id}", ph.GetByID)
		r.Get("/stats", sh.GetStats)
	})

	return r
}

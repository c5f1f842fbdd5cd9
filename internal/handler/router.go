package handler

import (
	"net/http"
	"time"

	"github.com/brightpath/planview-bfa-go/internal/domain"
	"github.com/brightpath/planview-bfa-go/internal/infra/observability"
	"github.com/brightpath/planview-bfa-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(views *service.PlanViewService, drafts *service.DraftService, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(views, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Plan schedule view
		r.Get("/plans/{planId}/view", planViewHandler(views, logger))
		r.Get("/plans/{planId}/rollups", planRollupsHandler(views, logger))
		r.Get("/status-options", statusOptionsHandler(views))

		// Segment drafts
		r.Post("/plans/{planId}/segments/draft", openDraftHandler(drafts, logger))
		r.Route("/segments/draft/{draftId}", func(r chi.Router) {
			r.Get("/", getDraftHandler(drafts, logger))
			r.Post("/segments", addSegmentHandler(drafts, logger))
			r.Patch("/segments/{index}", updateSegmentHandler(drafts, logger))
			r.Delete("/segments/{index}", deleteSegmentHandler(drafts, logger))
			r.Post("/segments/{index}/move", moveSegmentHandler(drafts, logger))
			r.Post("/submit", submitDraftHandler(drafts, views, logger))
		})

		// Operational metrics snapshot
		r.Get("/metrics/ops", opsMetricsHandler(metrics))
	})

	return r
}

// healthzHandler reports overall health, probing the plan backend
// through the status options fetch.
func healthzHandler(views *service.PlanViewService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)

		services := []domain.ServiceHealth{
			{Name: "planview-api", Status: "healthy", LatencyMs: 0, LastChecked: now},
		}

		start := time.Now()
		err := views.ProbeBackend(r.Context())
		latency := time.Since(start).Milliseconds()
		backendStatus := "healthy"
		if err != nil {
			backendStatus = "degraded"
		}
		services = append(services, domain.ServiceHealth{
			Name: "plan-backend", Status: backendStatus, LatencyMs: latency, LastChecked: now,
		})

		overall := "healthy"
		for _, s := range services {
			if s.Status != "healthy" {
				overall = "degraded"
			}
		}

		writeJSON(w, http.StatusOK, domain.HealthStatus{Status: overall, Services: services})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

// opsMetricsHandler serves GET /v1/metrics/ops.
func opsMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetOpsSnapshot())
	}
}

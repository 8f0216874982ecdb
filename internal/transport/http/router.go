package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"sendgate/internal/platform/metrics"
	"sendgate/pkg/platform/httputil"
	"sendgate/pkg/platform/middleware/auth"
	"sendgate/pkg/platform/middleware/metadata"
	"sendgate/pkg/platform/middleware/request"
	"sendgate/pkg/platform/middleware/requesttime"
)

// RouterDeps collects what NewRouter mounts.
type RouterDeps struct {
	Logger    *slog.Logger
	Validator auth.JWTValidator
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Gate      *GateHandler
	Identity  *IdentityHandler

	// HealthChecks are run by /healthz; any failure reports 503.
	HealthChecks map[string]func(context.Context) error
}

// NewRouter wires the public endpoints. Everything under /v1 requires a
// bearer token whose subject is the sending account.
func NewRouter(deps RouterDeps) chi.Router {
	r := chi.NewRouter()
	r.Use(request.Recovery(deps.Logger))
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	r.Use(requesttime.Middleware)
	r.Use(request.Logger(deps.Logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	r.Get("/healthz", healthHandler(deps.HealthChecks, deps.Logger))
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Use(auth.RequireAuth(deps.Validator, deps.Logger))
		if deps.Gate != nil {
			deps.Gate.Register(r)
		}
		if deps.Identity != nil {
			deps.Identity.Register(r)
		}
	})
	return r
}

type healthResponse struct {
	Status string            `json:"status"`
	Failed map[string]string `json:"failed,omitempty"`
}

func healthHandler(checks map[string]func(context.Context) error, logger *slog.Logger) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok"}
		for _, name := range names {
			if err := checks[name](r.Context()); err != nil {
				if resp.Failed == nil {
					resp.Failed = make(map[string]string)
				}
				resp.Failed[name] = "unavailable"
				logger.WarnContext(r.Context(), "health check failed", "check", name, "error", err)
			}
		}
		status := http.StatusOK
		if resp.Failed != nil {
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
		}
		httputil.WriteJSON(w, status, resp)
	}
}

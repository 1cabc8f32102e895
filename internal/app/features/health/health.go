// Package health serves liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/stratadash/internal/app/system/jsonutil"
	"github.com/dalemusser/stratadash/internal/app/system/tasks"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// CheckFunc reports whether a dependency is usable.
type CheckFunc func(ctx context.Context) error

type check struct {
	name string
	fn   CheckFunc
}

// Handler provides health check endpoints.
type Handler struct {
	checks  []check
	logger  *zap.Logger
	timeout time.Duration
	jobs    func() []tasks.Status
}

// NewHandler creates a health Handler. A non-nil mongoClient is registered
// as the "mongodb" check.
func NewHandler(mongoClient *mongo.Client, logger *zap.Logger) *Handler {
	h := &Handler{logger: logger, timeout: 5 * time.Second}
	if mongoClient != nil {
		h.AddCheck("mongodb", func(ctx context.Context) error {
			return mongoClient.Ping(ctx, readpref.Primary())
		})
	}
	return h
}

// AddCheck registers a named dependency check used by /health and /ready.
func (h *Handler) AddCheck(name string, fn CheckFunc) {
	h.checks = append(h.checks, check{name: name, fn: fn})
}

// SetJobs enables /health/jobs, which lists background job status.
func (h *Handler) SetJobs(fn func() []tasks.Status) {
	h.jobs = fn
}

// Response represents the health check response.
type Response struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
}

// Routes returns a chi.Router with health check routes mounted.
// Provides /health (full check), /health/ready, and /health/live.
func Routes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Check)
	r.Get("/ready", h.Ready)
	r.Get("/live", h.Live)
	r.Get("/jobs", h.Jobs)
	return r
}

// MountRootEndpoints adds /ready, /readyz and /livez directly on the root
// router for Kubernetes probes.
func MountRootEndpoints(r chi.Router, h *Handler) {
	r.Get("/ready", h.Ready)
	r.Get("/readyz", h.Ready)
	r.Get("/livez", h.Live)
}

// run executes every check and returns the per-service status.
func (h *Handler) run(ctx context.Context) (map[string]string, bool) {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	services := make(map[string]string, len(h.checks))
	healthy := true
	for _, c := range h.checks {
		if err := c.fn(ctx); err != nil {
			services[c.name] = "unavailable"
			healthy = false
			h.logger.Warn("health check failed", zap.String("service", c.name), zap.Error(err))
			continue
		}
		services[c.name] = "ok"
	}
	return services, healthy
}

// Check reports the status of every registered dependency.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	services, healthy := h.run(r.Context())
	if !healthy {
		jsonutil.JSON(w, http.StatusServiceUnavailable, Response{Status: "degraded", Services: services})
		return
	}
	jsonutil.OK(w, Response{Status: "ok", Services: services})
}

// Ready checks if the service is ready to accept requests.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if _, healthy := h.run(r.Context()); !healthy {
		jsonutil.JSON(w, http.StatusServiceUnavailable, Response{Status: "not ready"})
		return
	}
	jsonutil.OK(w, Response{Status: "ready"})
}

// Live checks if the process is alive. It never touches dependencies.
func (h *Handler) Live(w http.ResponseWriter, r *http.Request) {
	jsonutil.OK(w, Response{Status: "alive"})
}

// JobsResponse lists background jobs.
type JobsResponse struct {
	Jobs []tasks.Status `json:"jobs"`
}

// Jobs reports the most recent run of every background job.
func (h *Handler) Jobs(w http.ResponseWriter, r *http.Request) {
	if h.jobs == nil {
		jsonutil.OK(w, JobsResponse{Jobs: []tasks.Status{}})
		return
	}
	jsonutil.OK(w, JobsResponse{Jobs: h.jobs()})
}

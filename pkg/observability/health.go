package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CheckFunc reports the readiness of one named dependency
type CheckFunc func(ctx context.Context) error

// HealthStatus is the body served on /health
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// HealthChecker aggregates the database ping with registered dependency
// checks. The database is load-bearing: if its ping fails the endpoint
// reports unhealthy. Dependency failures (courier circuit open, secret
// backend unreachable) only degrade the reported status, since webhook
// ingestion keeps working without them.
type HealthChecker struct {
	dbPool *pgxpool.Pool
	deps   map[string]CheckFunc
}

// NewHealthChecker creates a health checker over the connection pool
func NewHealthChecker(dbPool *pgxpool.Pool) *HealthChecker {
	return &HealthChecker{
		dbPool: dbPool,
		deps:   make(map[string]CheckFunc),
	}
}

// RegisterCheck adds a named dependency check. Register before serving; the
// map is not guarded.
func (h *HealthChecker) RegisterCheck(name string, fn CheckFunc) {
	h.deps[name] = fn
}

// Check runs the database ping and every registered dependency check
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	checks := make(map[string]string)
	status := "healthy"

	if h.dbPool != nil {
		dbCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if err := h.dbPool.Ping(dbCtx); err != nil {
			checks["database"] = "unhealthy: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "healthy"
		}
	} else {
		checks["database"] = "not configured"
	}

	names := make([]string, 0, len(h.deps))
	for name := range h.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		depCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := h.deps[name](depCtx)
		cancel()

		if err != nil {
			checks[name] = "degraded: " + err.Error()
			if status == "healthy" {
				status = "degraded"
			}
		} else {
			checks[name] = "healthy"
		}
	}

	return HealthStatus{
		Status:    status,
		Timestamp: time.Now(),
		Checks:    checks,
	}
}

// HealthHandler returns the HTTP handler for /health. Degraded still answers
// 200 so orchestrators don't restart a service that can serve traffic.
func (h *HealthChecker) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := h.Check(r.Context())

		w.Header().Set("Content-Type", "application/json")
		if status.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		json.NewEncoder(w).Encode(status)
	}
}

package observability

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthChecker_DependencyFailureDegrades(t *testing.T) {
	hc := NewHealthChecker(nil)
	hc.RegisterCheck("courier", func(ctx context.Context) error {
		return errors.New("circuit breaker open")
	})
	hc.RegisterCheck("secrets", func(ctx context.Context) error {
		return nil
	})

	status := hc.Check(context.Background())

	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "degraded: circuit breaker open", status.Checks["courier"])
	assert.Equal(t, "healthy", status.Checks["secrets"])
	assert.Equal(t, "not configured", status.Checks["database"])
}

func TestHealthChecker_AllChecksPassing(t *testing.T) {
	hc := NewHealthChecker(nil)
	hc.RegisterCheck("courier", func(ctx context.Context) error {
		return nil
	})

	status := hc.Check(context.Background())

	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "healthy", status.Checks["courier"])
}

func TestHealthHandler_DegradedStillAnswers200(t *testing.T) {
	// A degraded dependency must not make orchestrators restart the service.
	hc := NewHealthChecker(nil)
	hc.RegisterCheck("courier", func(ctx context.Context) error {
		return errors.New("circuit breaker open")
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	hc.HealthHandler()(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "degraded", status.Status)
}

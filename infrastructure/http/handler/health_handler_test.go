package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthHandler_AllDependenciesUp(t *testing.T) {
	h := NewHealthHandler(map[string]DependencyCheck{
		"database": func(context.Context) error { return nil },
		"ledger":   func(context.Context) error { return nil },
	})

	rec := httptest.NewRecorder()
	h.Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeBody(t, rec.Body)
	assert.Equal(t, "healthy", payload["status"])

	deps := payload["dependencies"].(map[string]interface{})
	assert.Equal(t, true, deps["database"])
	assert.Equal(t, true, deps["ledger"])
	assert.Contains(t, payload, "memory")
	assert.Contains(t, payload, "uptime_seconds")
}

func TestHealthHandler_DegradedDependencyStillReturns200(t *testing.T) {
	h := NewHealthHandler(map[string]DependencyCheck{
		"database": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	})

	rec := httptest.NewRecorder()
	h.Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeBody(t, rec.Body)
	assert.Equal(t, "degraded", payload["status"])

	deps := payload["dependencies"].(map[string]interface{})
	assert.Equal(t, true, deps["database"])
	assert.Equal(t, false, deps["redis"])
}

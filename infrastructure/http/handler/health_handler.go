package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/bluecarbon/registry-api/infrastructure/http/response"
)

// DependencyCheck pings one external collaborator.
type DependencyCheck func(ctx context.Context) error

type HealthHandler struct {
	startTime time.Time
	checks    map[string]DependencyCheck
}

func NewHealthHandler(checks map[string]DependencyCheck) *HealthHandler {
	return &HealthHandler{
		startTime: time.Now(),
		checks:    checks,
	}
}

type healthResponse struct {
	Status        string          `json:"status"`
	Timestamp     string          `json:"timestamp"`
	UptimeSeconds int64           `json:"uptime_seconds"`
	Memory        memoryStats     `json:"memory"`
	Dependencies  map[string]bool `json:"dependencies"`
}

type memoryStats struct {
	AllocMB      uint64 `json:"alloc_mb"`
	TotalAllocMB uint64 `json:"total_alloc_mb"`
	SysMB        uint64 `json:"sys_mb"`
	NumGC        uint32 `json:"num_gc"`
}

// Check handles GET /health: per-dependency liveness flags, memory stats
// and uptime. Degraded dependencies do not fail the endpoint; the flags
// carry the signal.
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	deps := make(map[string]bool, len(h.checks))
	status := "healthy"
	for name, check := range h.checks {
		ok := check(ctx) == nil
		deps[name] = ok
		if !ok {
			status = "degraded"
		}
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	response.JSON(w, http.StatusOK, healthResponse{
		Status:        status,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Memory: memoryStats{
			AllocMB:      mem.Alloc / 1024 / 1024,
			TotalAllocMB: mem.TotalAlloc / 1024 / 1024,
			SysMB:        mem.Sys / 1024 / 1024,
			NumGC:        mem.NumGC,
		},
		Dependencies: deps,
	})
}

// Package status implements the gateway's own liveness and capability
// surface: GET /status and GET /health.
package status

import (
	"context"
	"runtime"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/mediagate/mediagate/internal/version"
)

// PlatformLister is the narrow view of internal/extractor.Registry this
// package depends on: the platform list /status reports is whatever the
// active deployment profile currently allows.
type PlatformLister interface {
	SupportedPlatforms() []string
}

// Handler serves /status and /health.
type Handler struct {
	registry  PlatformLister
	startTime time.Time
}

// NewHandler constructs a status Handler. startTime should be captured once
// at process start so uptime reflects the whole process lifetime, not the
// handler's own construction time.
func NewHandler(registry PlatformLister, startTime time.Time) *Handler {
	return &Handler{registry: registry, startTime: startTime}
}

// Register wires /status and /health into api.
func (h *Handler) Register(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "getStatus",
		Method:      "GET",
		Path:        "/status",
		Summary:     "Gateway status",
		Description: "Reports uptime, version, and the extractor platforms currently enabled under the active deployment profile.",
		Tags:        []string{"System"},
	}, h.GetStatus)

	huma.Register(api, huma.Operation{
		OperationID: "getHealth",
		Method:      "GET",
		Path:        "/health",
		Summary:     "Liveness probe",
		Description: "A minimal always-fast check for load balancers and container orchestrators.",
		Tags:        []string{"System"},
	}, h.GetHealth)
}

// StatusInput is the (empty) input for GET /status.
type StatusInput struct{}

// StatusOutput wraps StatusResponse for huma.
type StatusOutput struct {
	Body StatusResponse
}

// StatusResponse is the body of GET /status.
type StatusResponse struct {
	Success    bool         `json:"success"`
	Status     string       `json:"status"`
	Version    string       `json:"version"`
	Uptime     string       `json:"uptime"`
	Extractors []string     `json:"extractors"`
	Meta       StatusMeta   `json:"meta"`
}

// StatusMeta carries process-level figures that don't change the contract
// of the response but give the UI collaborator something to render in a
// diagnostics panel.
type StatusMeta struct {
	GoVersion      string  `json:"goVersion"`
	NumCPU         int     `json:"numCpu"`
	NumGoroutine   int     `json:"numGoroutine"`
	Load1Min       float64 `json:"load1Min,omitempty"`
	MemoryUsedMB   float64 `json:"memoryUsedMb,omitempty"`
	MemoryTotalMB  float64 `json:"memoryTotalMb,omitempty"`
}

// GetStatus reports the gateway's uptime, version, and currently enabled
// extractor platforms.
func (h *Handler) GetStatus(ctx context.Context, input *StatusInput) (*StatusOutput, error) {
	uptime := time.Since(h.startTime).Round(time.Second)

	meta := StatusMeta{
		GoVersion:    runtime.Version(),
		NumCPU:       runtime.NumCPU(),
		NumGoroutine: runtime.NumGoroutine(),
	}
	if loadAvg, err := load.Avg(); err == nil && loadAvg != nil {
		meta.Load1Min = loadAvg.Load1
	}
	if vmStat, err := mem.VirtualMemory(); err == nil && vmStat != nil {
		meta.MemoryUsedMB = float64(vmStat.Used) / 1024 / 1024
		meta.MemoryTotalMB = float64(vmStat.Total) / 1024 / 1024
	}

	return &StatusOutput{
		Body: StatusResponse{
			Success:    true,
			Status:     "online",
			Version:    version.Version,
			Uptime:     uptime.String(),
			Extractors: h.registry.SupportedPlatforms(),
			Meta:       meta,
		},
	}, nil
}

// HealthInput is the (empty) input for GET /health.
type HealthInput struct{}

// HealthOutput wraps HealthResponse for huma.
type HealthOutput struct {
	Body HealthResponse
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// GetHealth is a minimal liveness probe: no external dependency is
// consulted, so a timeout or partial outage elsewhere never turns this
// into a false negative for an orchestrator deciding whether to restart
// the process.
func (h *Handler) GetHealth(ctx context.Context, input *HealthInput) (*HealthOutput, error) {
	return &HealthOutput{
		Body: HealthResponse{
			Status:    "ok",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

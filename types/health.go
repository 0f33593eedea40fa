package types

import "time"

// HealthStatus classifies API reachability as observed by the health probe.
type HealthStatus string

const (
	// HealthUnknown means no probe has completed yet.
	HealthUnknown HealthStatus = "unknown"
	// HealthHealthy means the last probe returned a 2xx response.
	HealthHealthy HealthStatus = "healthy"
	// HealthError means the last probe failed (non-2xx or transport error).
	HealthError HealthStatus = "error"
)

// Health records the outcome of the most recent health probe.
// It is advisory display state only and never gates the verify workflow.
type Health struct {
	Status    HealthStatus   `json:"status"`
	CheckedAt time.Time      `json:"checked_at"`
	Payload   map[string]any `json:"payload,omitempty"`
	Error     string         `json:"error,omitempty"`
}

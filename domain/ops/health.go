package ops

import (
	"context"
	"time"
)

// HealthState is the probed condition of a service.
type HealthState string

// HealthState values.
const (
	HealthHealthy  HealthState = "healthy"
	HealthDegraded HealthState = "degraded"
	HealthUnknown  HealthState = "unknown"
)

// HealthReport is the outcome of one probe.
type HealthReport struct {
	ServiceID string      `json:"service_id"`
	Status    HealthState `json:"status"`
	Detail    string      `json:"detail,omitempty"`
	CheckedAt time.Time   `json:"checked_at"`
}

// HealthProber checks a health URL and maps the response to a state.
type HealthProber interface {
	Probe(ctx context.Context, url string) (HealthState, string)
}

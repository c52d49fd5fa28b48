package ops

import (
	"context"
	"time"
)

// Integration-bus event names.
const (
	EventBusServiceRegistered       = "service.registered"
	EventBusLogsIngested            = "logs.ingested"
	EventBusIncidentOpened          = "incident.opened"
	EventBusIncidentSignal          = "incident.signal"
	EventBusIncidentStatus          = "incident.status"
	EventBusRunbookExecuted         = "runbook.executed"
	EventBusRunbookCooldownBlocked  = "runbook.cooldown_blocked"
	EventBusRunbookAwaitingApproval = "runbook.awaiting_approval"
	EventBusRunbookApproved         = "runbook.approved"
)

// BusEvent is the envelope published on the integration bus.
type BusEvent struct {
	Name          string            `json:"name"`
	TS            time.Time         `json:"ts"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Payload       map[string]string `json:"payload,omitempty"`
}

// IntegrationBus publishes events to downstream consumers. Publishing is
// best-effort: bus failures are logged, never surfaced to callers.
type IntegrationBus interface {
	Publish(ctx context.Context, event BusEvent) error
}

// AuditRecord is one immutable entry in the controller audit log.
type AuditRecord struct {
	TS            time.Time         `json:"ts"`
	Actor         string            `json:"actor"`
	Action        string            `json:"action"`
	EntityID      string            `json:"entity_id,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Detail        map[string]string `json:"detail,omitempty"`
}

// AuditLog appends controller audit records.
type AuditLog interface {
	Record(ctx context.Context, rec AuditRecord) error
	List(ctx context.Context, limit int) ([]AuditRecord, error)
}

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock implementation of Clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time { return time.Now().UTC() }

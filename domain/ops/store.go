package ops

import (
	"context"
	"errors"
	"time"

	"github.com/praxisops/praxis/domain/store"
)

// Domain errors surfaced by the ops controller.
var (
	ErrUnknownService        = errors.New("unknown service")
	ErrUnknownIncident       = errors.New("unknown incident")
	ErrUnknownAction         = errors.New("action not allow-listed")
	ErrUnknownJob            = errors.New("unknown remediation job")
	ErrParamNotAllowed       = errors.New("parameter not allowed")
	ErrInvalidApprovalTarget = errors.New("job is not awaiting approval")
)

// ServiceStore persists registered services.
type ServiceStore interface {
	// Save upserts by service id.
	Save(ctx context.Context, svc Service) error
	// Get returns the service by id, or ErrUnknownService.
	Get(ctx context.Context, id string) (Service, error)
	// List returns all registered services.
	List(ctx context.Context, options ...store.Option) ([]Service, error)
}

// IncidentStore persists incidents.
type IncidentStore interface {
	Save(ctx context.Context, incident Incident) error
	// Get returns the incident by id, or ErrUnknownIncident.
	Get(ctx context.Context, id string) (Incident, error)
	List(ctx context.Context, options ...store.Option) ([]Incident, error)
}

// ActionStore persists the runbook action allow-list.
type ActionStore interface {
	Save(ctx context.Context, action RunbookAction) error
	// Get returns the action by id, or ErrUnknownAction.
	Get(ctx context.Context, id string) (RunbookAction, error)
	List(ctx context.Context, options ...store.Option) ([]RunbookAction, error)
}

// JobStore persists remediation jobs.
type JobStore interface {
	Save(ctx context.Context, job RemediationJob) error
	// Get returns the job by id, or ErrUnknownJob.
	Get(ctx context.Context, id string) (RemediationJob, error)
	List(ctx context.Context, options ...store.Option) ([]RemediationJob, error)
	// FinishedSince returns jobs for (serviceID, actionID) whose
	// finished_at is set and at or after the cutoff.
	FinishedSince(ctx context.Context, serviceID, actionID string, cutoff time.Time) ([]RemediationJob, error)
}

// LogFilter narrows a log search. Zero values match everything.
type LogFilter struct {
	ServiceID     string
	Level         string
	TraceID       string
	CorrelationID string
	Limit         int
}

// LogSink stores and searches ingested log records.
type LogSink interface {
	Write(ctx context.Context, record LogRecord) error
	// Search returns newest-first records up to the filter limit.
	Search(ctx context.Context, filter LogFilter) ([]LogRecord, error)
}

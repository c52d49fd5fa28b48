package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/praxisops/praxis/domain/ops"
	"github.com/praxisops/praxis/domain/store"
)

// ServiceStore is an in-memory ops.ServiceStore.
type ServiceStore struct {
	mu       sync.RWMutex
	services map[string]ops.Service
}

// NewServiceStore creates an empty ServiceStore.
func NewServiceStore() *ServiceStore {
	return &ServiceStore{services: make(map[string]ops.Service)}
}

// Save upserts by service id.
func (s *ServiceStore) Save(_ context.Context, svc ops.Service) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.services[svc.ID()] = svc
	return nil
}

// Get returns the service by id.
func (s *ServiceStore) Get(_ context.Context, id string) (ops.Service, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	svc, ok := s.services[id]
	if !ok {
		return ops.Service{}, fmt.Errorf("%w: %s", ops.ErrUnknownService, id)
	}
	return svc, nil
}

// List returns all services ordered by id.
func (s *ServiceStore) List(_ context.Context, options ...store.Option) ([]ops.Service, error) {
	q := store.Build(options...)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ops.Service, 0, len(s.services))
	for _, svc := range s.services {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return paginate(out, q), nil
}

// IncidentStore is an in-memory ops.IncidentStore.
type IncidentStore struct {
	mu        sync.RWMutex
	incidents map[string]ops.Incident
}

// NewIncidentStore creates an empty IncidentStore.
func NewIncidentStore() *IncidentStore {
	return &IncidentStore{incidents: make(map[string]ops.Incident)}
}

// Save upserts by incident id.
func (s *IncidentStore) Save(_ context.Context, incident ops.Incident) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incidents[incident.ID()] = incident
	return nil
}

// Get returns the incident by id.
func (s *IncidentStore) Get(_ context.Context, id string) (ops.Incident, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	incident, ok := s.incidents[id]
	if !ok {
		return ops.Incident{}, fmt.Errorf("%w: %s", ops.ErrUnknownIncident, id)
	}
	return incident, nil
}

// List returns incidents matching the conditions, newest first.
func (s *IncidentStore) List(_ context.Context, options ...store.Option) ([]ops.Incident, error) {
	q := store.Build(options...)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ops.Incident, 0, len(s.incidents))
	for _, incident := range s.incidents {
		if matchIncident(incident, q) {
			out = append(out, incident)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt().Equal(out[j].CreatedAt()) {
			return out[i].ID() < out[j].ID()
		}
		return out[i].CreatedAt().After(out[j].CreatedAt())
	})
	return paginate(out, q), nil
}

func matchIncident(incident ops.Incident, q store.Query) bool {
	for _, cond := range q.Conditions() {
		switch cond.Field() {
		case "service_id":
			if !condMatches(cond, incident.ServiceID()) {
				return false
			}
		case "status":
			if !condMatches(cond, string(incident.Status())) {
				return false
			}
		}
	}
	return true
}

// ActionStore is an in-memory ops.ActionStore.
type ActionStore struct {
	mu      sync.RWMutex
	actions map[string]ops.RunbookAction
}

// NewActionStore creates an empty ActionStore.
func NewActionStore() *ActionStore {
	return &ActionStore{actions: make(map[string]ops.RunbookAction)}
}

// Save upserts by action id.
func (s *ActionStore) Save(_ context.Context, action ops.RunbookAction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions[action.ID()] = action
	return nil
}

// Get returns the action by id.
func (s *ActionStore) Get(_ context.Context, id string) (ops.RunbookAction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	action, ok := s.actions[id]
	if !ok {
		return ops.RunbookAction{}, fmt.Errorf("%w: %s", ops.ErrUnknownAction, id)
	}
	return action, nil
}

// List returns all actions ordered by id.
func (s *ActionStore) List(_ context.Context, options ...store.Option) ([]ops.RunbookAction, error) {
	q := store.Build(options...)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ops.RunbookAction, 0, len(s.actions))
	for _, action := range s.actions {
		out = append(out, action)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return paginate(out, q), nil
}

// JobStore is an in-memory ops.JobStore.
type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]ops.RemediationJob
}

// NewJobStore creates an empty JobStore.
func NewJobStore() *JobStore {
	return &JobStore{jobs: make(map[string]ops.RemediationJob)}
}

// Save upserts by job id.
func (s *JobStore) Save(_ context.Context, job ops.RemediationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID()] = job
	return nil
}

// Get returns the job by id.
func (s *JobStore) Get(_ context.Context, id string) (ops.RemediationJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return ops.RemediationJob{}, fmt.Errorf("%w: %s", ops.ErrUnknownJob, id)
	}
	return job, nil
}

// List returns jobs matching the conditions, newest first by start time.
func (s *JobStore) List(_ context.Context, options ...store.Option) ([]ops.RemediationJob, error) {
	q := store.Build(options...)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ops.RemediationJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		if matchJob(job, q) {
			out = append(out, job)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartedAt().Equal(out[j].StartedAt()) {
			return out[i].ID() < out[j].ID()
		}
		return out[i].StartedAt().After(out[j].StartedAt())
	})
	return paginate(out, q), nil
}

func matchJob(job ops.RemediationJob, q store.Query) bool {
	for _, cond := range q.Conditions() {
		switch cond.Field() {
		case "service_id":
			if !condMatches(cond, job.ServiceID()) {
				return false
			}
		case "action_id":
			if !condMatches(cond, job.ActionID()) {
				return false
			}
		case "incident_id":
			if !condMatches(cond, job.IncidentID()) {
				return false
			}
		case "status":
			if !condMatches(cond, string(job.Status())) {
				return false
			}
		}
	}
	return true
}

// FinishedSince returns finished jobs for the pair at or after cutoff.
func (s *JobStore) FinishedSince(_ context.Context, serviceID, actionID string, cutoff time.Time) ([]ops.RemediationJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ops.RemediationJob
	for _, job := range s.jobs {
		if job.ServiceID() != serviceID || job.ActionID() != actionID {
			continue
		}
		if job.FinishedAt().IsZero() || job.FinishedAt().Before(cutoff) {
			continue
		}
		out = append(out, job)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FinishedAt().After(out[j].FinishedAt()) })
	return out, nil
}

// LogSink is an in-memory ops.LogSink.
type LogSink struct {
	mu      sync.RWMutex
	records []ops.LogRecord
}

// NewLogSink creates an empty LogSink.
func NewLogSink() *LogSink {
	return &LogSink{}
}

// Write appends a record.
func (s *LogSink) Write(_ context.Context, record ops.LogRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// Search returns newest-first records matching the filter.
func (s *LogSink) Search(_ context.Context, filter ops.LogFilter) ([]ops.LogRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ops.LogRecord
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if filter.ServiceID != "" && r.ServiceID != filter.ServiceID {
			continue
		}
		if filter.Level != "" && r.Level != filter.Level {
			continue
		}
		if filter.TraceID != "" && r.TraceID != filter.TraceID {
			continue
		}
		if filter.CorrelationID != "" && r.CorrelationID != filter.CorrelationID {
			continue
		}
		out = append(out, r)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// AuditLog is an in-memory ops.AuditLog.
type AuditLog struct {
	mu      sync.RWMutex
	records []ops.AuditRecord
}

// NewAuditLog creates an empty AuditLog.
func NewAuditLog() *AuditLog {
	return &AuditLog{}
}

// Record appends an audit record.
func (s *AuditLog) Record(_ context.Context, rec ops.AuditRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	return nil
}

// List returns newest-first records up to limit.
func (s *AuditLog) List(_ context.Context, limit int) ([]ops.AuditRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ops.AuditRecord
	for i := len(s.records) - 1; i >= 0; i-- {
		out = append(out, s.records[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

// Len returns the number of stored audit records.
func (s *AuditLog) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

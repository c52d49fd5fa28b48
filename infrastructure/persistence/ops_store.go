package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/praxisops/praxis/domain/ops"
	"github.com/praxisops/praxis/domain/severity"
	"github.com/praxisops/praxis/domain/store"
	"github.com/praxisops/praxis/internal/database"
)

type serviceMapper struct{}

func (serviceMapper) ToDomain(m ServiceModel) ops.Service {
	svc, err := ops.NewService(m.ID, m.Name, ops.Environment(m.Env),
		ops.WithOwners(fromJSON[[]string](m.Owners)),
		ops.WithHealthURL(m.HealthURL),
		ops.WithLoggingEndpoint(m.LoggingEndpoint),
		ops.WithServiceTags(fromJSON[[]string](m.Tags)),
		ops.WithOtelConfig(fromJSON[map[string]string](m.OtelConfig)),
		ops.WithServiceMetadata(fromJSON[map[string]string](m.Metadata)),
	)
	if err != nil {
		return ops.Service{}
	}
	return svc
}

func (serviceMapper) ToModel(s ops.Service) ServiceModel {
	return ServiceModel{
		ID:              s.ID(),
		Name:            s.Name(),
		Env:             string(s.Env()),
		Owners:          toJSON(s.Owners()),
		HealthURL:       s.HealthURL(),
		LoggingEndpoint: s.LoggingEndpoint(),
		Tags:            toJSON(s.Tags()),
		OtelConfig:      toJSON(s.OtelConfig()),
		Metadata:        toJSON(s.Metadata()),
		UpdatedAt:       time.Now().UTC(),
	}
}

// ServiceStore is the GORM-backed ops.ServiceStore.
type ServiceStore struct {
	repo database.Repository[ops.Service, ServiceModel]
}

// NewServiceStore creates a ServiceStore.
func NewServiceStore(db database.Database) *ServiceStore {
	return &ServiceStore{repo: database.NewRepository[ops.Service, ServiceModel](db, serviceMapper{}, "service")}
}

// Save upserts by service id.
func (s *ServiceStore) Save(ctx context.Context, svc ops.Service) error {
	return s.repo.Save(ctx, svc)
}

// Get returns the service by id.
func (s *ServiceStore) Get(ctx context.Context, id string) (ops.Service, error) {
	svc, err := s.repo.FindOne(ctx, store.WithID(id))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ops.Service{}, fmt.Errorf("%w: %s", ops.ErrUnknownService, id)
		}
		return ops.Service{}, err
	}
	return svc, nil
}

// List returns registered services ordered by id.
func (s *ServiceStore) List(ctx context.Context, options ...store.Option) ([]ops.Service, error) {
	options = append(options, store.WithOrderAsc("id"))
	return s.repo.Find(ctx, options...)
}

type incidentMapper struct{}

func (incidentMapper) ToDomain(m IncidentModel) ops.Incident {
	return ops.ReconstructIncident(
		m.ID,
		m.ServiceID,
		severity.Severity(m.Severity),
		ops.IncidentStatus(m.Status),
		m.Summary,
		fromJSON[[]ops.Signal](m.Signals),
		fromJSON[[]ops.TimelineEvent](m.Timeline),
		fromJSON[[]string](m.RunbookRefs),
		m.CreatedAt,
		m.UpdatedAt,
		m.CorrelationID,
	)
}

func (incidentMapper) ToModel(i ops.Incident) IncidentModel {
	return IncidentModel{
		ID:            i.ID(),
		ServiceID:     i.ServiceID(),
		Severity:      i.Severity().String(),
		Status:        string(i.Status()),
		Summary:       i.Summary(),
		Signals:       toJSON(i.Signals()),
		Timeline:      toJSON(i.Timeline()),
		RunbookRefs:   toJSON(i.RunbookRefs()),
		CreatedAt:     i.CreatedAt(),
		UpdatedAt:     i.UpdatedAt(),
		CorrelationID: i.CorrelationID(),
	}
}

// IncidentStore is the GORM-backed ops.IncidentStore.
type IncidentStore struct {
	repo database.Repository[ops.Incident, IncidentModel]
}

// NewIncidentStore creates an IncidentStore.
func NewIncidentStore(db database.Database) *IncidentStore {
	return &IncidentStore{repo: database.NewRepository[ops.Incident, IncidentModel](db, incidentMapper{}, "incident")}
}

// Save upserts by incident id.
func (s *IncidentStore) Save(ctx context.Context, incident ops.Incident) error {
	return s.repo.Save(ctx, incident)
}

// Get returns the incident by id.
func (s *IncidentStore) Get(ctx context.Context, id string) (ops.Incident, error) {
	incident, err := s.repo.FindOne(ctx, store.WithID(id))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ops.Incident{}, fmt.Errorf("%w: %s", ops.ErrUnknownIncident, id)
		}
		return ops.Incident{}, err
	}
	return incident, nil
}

// List returns incidents, newest first.
func (s *IncidentStore) List(ctx context.Context, options ...store.Option) ([]ops.Incident, error) {
	options = append(options, store.WithOrderDesc("created_at"))
	return s.repo.Find(ctx, options...)
}

type actionMapper struct{}

func (actionMapper) ToDomain(m ActionModel) ops.RunbookAction {
	action, err := ops.NewRunbookAction(m.ID, m.Name, m.Description,
		fromJSON[[]string](m.AllowedParams), m.CooldownSeconds, m.RequiresApproval,
		fromJSON[map[string]string](m.Guardrails))
	if err != nil {
		return ops.RunbookAction{}
	}
	return action
}

func (actionMapper) ToModel(a ops.RunbookAction) ActionModel {
	return ActionModel{
		ID:               a.ID(),
		Name:             a.Name(),
		Description:      a.Description(),
		AllowedParams:    toJSON(a.AllowedParams()),
		CooldownSeconds:  a.CooldownSeconds(),
		RequiresApproval: a.RequiresApproval(),
		Guardrails:       toJSON(a.Guardrails()),
	}
}

// ActionStore is the GORM-backed ops.ActionStore.
type ActionStore struct {
	repo database.Repository[ops.RunbookAction, ActionModel]
}

// NewActionStore creates an ActionStore.
func NewActionStore(db database.Database) *ActionStore {
	return &ActionStore{repo: database.NewRepository[ops.RunbookAction, ActionModel](db, actionMapper{}, "runbook action")}
}

// Save upserts by action id.
func (s *ActionStore) Save(ctx context.Context, action ops.RunbookAction) error {
	return s.repo.Save(ctx, action)
}

// Get returns the action by id.
func (s *ActionStore) Get(ctx context.Context, id string) (ops.RunbookAction, error) {
	action, err := s.repo.FindOne(ctx, store.WithID(id))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ops.RunbookAction{}, fmt.Errorf("%w: %s", ops.ErrUnknownAction, id)
		}
		return ops.RunbookAction{}, err
	}
	return action, nil
}

// List returns all actions ordered by id.
func (s *ActionStore) List(ctx context.Context, options ...store.Option) ([]ops.RunbookAction, error) {
	options = append(options, store.WithOrderAsc("id"))
	return s.repo.Find(ctx, options...)
}

type jobMapper struct{}

func (jobMapper) ToDomain(m JobModel) ops.RemediationJob {
	finishedAt := time.Time{}
	if m.FinishedAt != nil {
		finishedAt = *m.FinishedAt
	}
	return ops.ReconstructRemediationJob(
		m.ID, m.IncidentID, m.ActionID, m.ServiceID,
		fromJSON[map[string]string](m.Params),
		m.Actor, m.CorrelationID,
		ops.JobStatus(m.Status),
		m.StartedAt, finishedAt,
		m.Output, m.ErrorDetail,
	)
}

func (jobMapper) ToModel(j ops.RemediationJob) JobModel {
	var finishedAt *time.Time
	if !j.FinishedAt().IsZero() {
		t := j.FinishedAt()
		finishedAt = &t
	}
	return JobModel{
		ID:            j.ID(),
		IncidentID:    j.IncidentID(),
		ActionID:      j.ActionID(),
		ServiceID:     j.ServiceID(),
		Params:        toJSON(j.Params()),
		Actor:         j.Actor(),
		CorrelationID: j.CorrelationID(),
		Status:        string(j.Status()),
		StartedAt:     j.StartedAt(),
		FinishedAt:    finishedAt,
		Output:        j.Output(),
		ErrorDetail:   j.ErrorDetail(),
	}
}

// JobStore is the GORM-backed ops.JobStore.
type JobStore struct {
	repo database.Repository[ops.RemediationJob, JobModel]
}

// NewJobStore creates a JobStore.
func NewJobStore(db database.Database) *JobStore {
	return &JobStore{repo: database.NewRepository[ops.RemediationJob, JobModel](db, jobMapper{}, "remediation job")}
}

// Save upserts by job id.
func (s *JobStore) Save(ctx context.Context, job ops.RemediationJob) error {
	return s.repo.Save(ctx, job)
}

// Get returns the job by id.
func (s *JobStore) Get(ctx context.Context, id string) (ops.RemediationJob, error) {
	job, err := s.repo.FindOne(ctx, store.WithID(id))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return ops.RemediationJob{}, fmt.Errorf("%w: %s", ops.ErrUnknownJob, id)
		}
		return ops.RemediationJob{}, err
	}
	return job, nil
}

// List returns jobs, newest first by start time.
func (s *JobStore) List(ctx context.Context, options ...store.Option) ([]ops.RemediationJob, error) {
	options = append(options, store.WithOrderDesc("started_at"))
	return s.repo.Find(ctx, options...)
}

// FinishedSince returns finished jobs for the pair at or after cutoff.
func (s *JobStore) FinishedSince(ctx context.Context, serviceID, actionID string, cutoff time.Time) ([]ops.RemediationJob, error) {
	var models []JobModel
	db := s.repo.DB(ctx).
		Where("service_id = ?", serviceID).
		Where("action_id = ?", actionID).
		Where("finished_at IS NOT NULL").
		Where("finished_at >= ?", cutoff).
		Order("finished_at DESC")
	if err := db.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("scan finished jobs: %w", err)
	}

	jobs := make([]ops.RemediationJob, len(models))
	for i, m := range models {
		jobs[i] = s.repo.Mapper().ToDomain(m)
	}
	return jobs, nil
}

// LogSink is the GORM-backed ops.LogSink.
type LogSink struct {
	db database.Database
}

// NewLogSink creates a LogSink.
func NewLogSink(db database.Database) *LogSink {
	return &LogSink{db: db}
}

// Write appends a log record.
func (s *LogSink) Write(ctx context.Context, record ops.LogRecord) error {
	model := LogModel{
		ServiceID:     record.ServiceID,
		Env:           record.Env,
		Level:         record.Level,
		Message:       record.Message,
		TraceID:       record.TraceID,
		CorrelationID: record.CorrelationID,
		ContainerName: record.ContainerName,
		TS:            record.TS,
		Extra:         toJSON(record.Extra),
	}
	if err := s.db.Session(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("write log record: %w", err)
	}
	return nil
}

// Search returns newest-first records matching the filter.
func (s *LogSink) Search(ctx context.Context, filter ops.LogFilter) ([]ops.LogRecord, error) {
	db := s.db.Session(ctx).Model(&LogModel{})
	if filter.ServiceID != "" {
		db = db.Where("service_id = ?", filter.ServiceID)
	}
	if filter.Level != "" {
		db = db.Where("level = ?", filter.Level)
	}
	if filter.TraceID != "" {
		db = db.Where("trace_id = ?", filter.TraceID)
	}
	if filter.CorrelationID != "" {
		db = db.Where("correlation_id = ?", filter.CorrelationID)
	}
	if filter.Limit > 0 {
		db = db.Limit(filter.Limit)
	}

	var models []LogModel
	if err := db.Order("ts DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("search logs: %w", err)
	}

	records := make([]ops.LogRecord, len(models))
	for i, m := range models {
		records[i] = ops.LogRecord{
			ServiceID:     m.ServiceID,
			Env:           m.Env,
			Level:         m.Level,
			Message:       m.Message,
			TraceID:       m.TraceID,
			CorrelationID: m.CorrelationID,
			ContainerName: m.ContainerName,
			TS:            m.TS,
			Extra:         fromJSON[map[string]string](m.Extra),
		}
	}
	return records, nil
}

// AuditLog is the GORM-backed ops.AuditLog.
type AuditLog struct {
	db database.Database
}

// NewAuditLog creates an AuditLog.
func NewAuditLog(db database.Database) *AuditLog {
	return &AuditLog{db: db}
}

// Record appends an audit record.
func (s *AuditLog) Record(ctx context.Context, rec ops.AuditRecord) error {
	model := AuditModel{
		TS:            rec.TS,
		Actor:         rec.Actor,
		Action:        rec.Action,
		EntityID:      rec.EntityID,
		CorrelationID: rec.CorrelationID,
		Detail:        toJSON(rec.Detail),
	}
	if err := s.db.Session(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("write audit record: %w", err)
	}
	return nil
}

// List returns newest-first audit records up to limit.
func (s *AuditLog) List(ctx context.Context, limit int) ([]ops.AuditRecord, error) {
	db := s.db.Session(ctx).Model(&AuditModel{}).Order("ts DESC")
	if limit > 0 {
		db = db.Limit(limit)
	}

	var models []AuditModel
	if err := db.Find(&models).Error; err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}

	records := make([]ops.AuditRecord, len(models))
	for i, m := range models {
		records[i] = ops.AuditRecord{
			TS:            m.TS,
			Actor:         m.Actor,
			Action:        m.Action,
			EntityID:      m.EntityID,
			CorrelationID: m.CorrelationID,
			Detail:        fromJSON[map[string]string](m.Detail),
		}
	}
	return records, nil
}

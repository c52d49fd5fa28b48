package dto

import (
	"time"

	"github.com/praxisops/praxis/domain/ops"
	"github.com/praxisops/praxis/domain/severity"
)

// RegisterServiceRequest is the body of POST /services.
type RegisterServiceRequest struct {
	ID              string            `json:"id" validate:"required"`
	Name            string            `json:"name" validate:"required"`
	Env             string            `json:"env,omitempty"`
	Owners          []string          `json:"owners,omitempty"`
	HealthURL       string            `json:"health_url,omitempty" validate:"omitempty,url"`
	LoggingEndpoint string            `json:"logging_endpoint,omitempty"`
	Tags            []string          `json:"tags,omitempty"`
	OtelConfig      map[string]string `json:"otel_config,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// ToDomain converts the request to a domain service.
func (r RegisterServiceRequest) ToDomain() (ops.Service, error) {
	return ops.NewService(r.ID, r.Name, ops.ParseEnvironment(r.Env),
		ops.WithOwners(r.Owners),
		ops.WithHealthURL(r.HealthURL),
		ops.WithLoggingEndpoint(r.LoggingEndpoint),
		ops.WithServiceTags(r.Tags),
		ops.WithOtelConfig(r.OtelConfig),
		ops.WithServiceMetadata(r.Metadata),
	)
}

// ServiceResponse is one registered service.
type ServiceResponse struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Env             string            `json:"env"`
	Owners          []string          `json:"owners,omitempty"`
	HealthURL       string            `json:"health_url,omitempty"`
	LoggingEndpoint string            `json:"logging_endpoint,omitempty"`
	Tags            []string          `json:"tags,omitempty"`
	OtelConfig      map[string]string `json:"otel_config,omitempty"`
	Metadata        map[string]string `json:"metadata,omitempty"`
}

// NewServiceResponse maps a domain service onto the wire shape.
func NewServiceResponse(s ops.Service) ServiceResponse {
	return ServiceResponse{
		ID:              s.ID(),
		Name:            s.Name(),
		Env:             string(s.Env()),
		Owners:          s.Owners(),
		HealthURL:       s.HealthURL(),
		LoggingEndpoint: s.LoggingEndpoint(),
		Tags:            s.Tags(),
		OtelConfig:      s.OtelConfig(),
		Metadata:        s.Metadata(),
	}
}

// LogRequest is the body of POST /logs. Batches are accepted; a single
// record may be posted as a one-element batch.
type LogRequest struct {
	Records []ops.LogRecord `json:"records" validate:"required,min=1"`
}

// OpenIncidentRequest is the body of POST /incidents.
type OpenIncidentRequest struct {
	ServiceID     string `json:"service_id" validate:"required"`
	Severity      string `json:"severity,omitempty"`
	Summary       string `json:"summary" validate:"required"`
	CorrelationID string `json:"correlation_id,omitempty"`
	TraceID       string `json:"trace_id,omitempty"`
}

// AlertRequest is the body of POST /alerts.
type AlertRequest struct {
	ServiceID     string            `json:"service_id" validate:"required"`
	Type          string            `json:"type,omitempty"`
	Severity      string            `json:"severity,omitempty"`
	Message       string            `json:"message" validate:"required"`
	TraceID       string            `json:"trace_id,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	TS            time.Time         `json:"ts,omitempty"`
	Attributes    map[string]string `json:"attributes,omitempty"`
}

// ToSignal converts the alert to a domain signal.
func (r AlertRequest) ToSignal() ops.Signal {
	signalType := ops.SignalType(r.Type)
	if signalType == "" {
		signalType = ops.SignalAlert
	}
	sev, err := severity.Parse(r.Severity)
	if err != nil {
		sev = severity.Medium
	}
	return ops.Signal{
		ServiceID:     r.ServiceID,
		Type:          signalType,
		Severity:      sev,
		Message:       r.Message,
		TraceID:       r.TraceID,
		CorrelationID: r.CorrelationID,
		TS:            r.TS,
		Attributes:    r.Attributes,
	}
}

// SetStatusRequest is the body of POST /incidents/{id}/status.
type SetStatusRequest struct {
	Status        string `json:"status" validate:"required"`
	CorrelationID string `json:"correlation_id,omitempty"`
}

// IncidentResponse is one incident with its full timeline.
type IncidentResponse struct {
	ID            string              `json:"id"`
	ServiceID     string              `json:"service_id"`
	Severity      string              `json:"severity"`
	Status        string              `json:"status"`
	Summary       string              `json:"summary"`
	Signals       []ops.Signal        `json:"signals,omitempty"`
	Timeline      []ops.TimelineEvent `json:"timeline"`
	RunbookRefs   []string            `json:"runbook_refs,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	CorrelationID string              `json:"correlation_id,omitempty"`
}

// NewIncidentResponse maps a domain incident onto the wire shape.
func NewIncidentResponse(i ops.Incident) IncidentResponse {
	return IncidentResponse{
		ID:            i.ID(),
		ServiceID:     i.ServiceID(),
		Severity:      string(i.Severity()),
		Status:        string(i.Status()),
		Summary:       i.Summary(),
		Signals:       i.Signals(),
		Timeline:      i.Timeline(),
		RunbookRefs:   i.RunbookRefs(),
		CreatedAt:     i.CreatedAt(),
		UpdatedAt:     i.UpdatedAt(),
		CorrelationID: i.CorrelationID(),
	}
}

// RegisterActionRequest is the body of POST /runbooks/actions.
type RegisterActionRequest struct {
	ID               string            `json:"id" validate:"required"`
	Name             string            `json:"name,omitempty"`
	Description      string            `json:"description,omitempty"`
	AllowedParams    []string          `json:"allowed_params,omitempty"`
	CooldownSeconds  int               `json:"cooldown_seconds,omitempty" validate:"min=0"`
	RequiresApproval bool              `json:"requires_approval,omitempty"`
	Guardrails       map[string]string `json:"guardrails,omitempty"`
}

// ToDomain converts the request to a domain runbook action.
func (r RegisterActionRequest) ToDomain() (ops.RunbookAction, error) {
	return ops.NewRunbookAction(r.ID, r.Name, r.Description, r.AllowedParams,
		r.CooldownSeconds, r.RequiresApproval, r.Guardrails)
}

// ActionResponse is one registered runbook action.
type ActionResponse struct {
	ID               string            `json:"id"`
	Name             string            `json:"name,omitempty"`
	Description      string            `json:"description,omitempty"`
	AllowedParams    []string          `json:"allowed_params,omitempty"`
	CooldownSeconds  int               `json:"cooldown_seconds"`
	RequiresApproval bool              `json:"requires_approval"`
	Guardrails       map[string]string `json:"guardrails,omitempty"`
}

// NewActionResponse maps a domain action onto the wire shape.
func NewActionResponse(a ops.RunbookAction) ActionResponse {
	return ActionResponse{
		ID:               a.ID(),
		Name:             a.Name(),
		Description:      a.Description(),
		AllowedParams:    a.AllowedParams(),
		CooldownSeconds:  a.CooldownSeconds(),
		RequiresApproval: a.RequiresApproval(),
		Guardrails:       a.Guardrails(),
	}
}

// ExecuteRunbookRequest is the body of POST /runbooks/execute.
type ExecuteRunbookRequest struct {
	ServiceID     string            `json:"service_id" validate:"required"`
	IncidentID    string            `json:"incident_id" validate:"required"`
	ActionID      string            `json:"action_id" validate:"required"`
	Params        map[string]string `json:"params,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
}

// ApproveRunbookRequest is the body of POST /runbooks/approve.
type ApproveRunbookRequest struct {
	JobID string `json:"job_id" validate:"required"`
	Note  string `json:"note,omitempty"`
}

// JobResponse is one remediation job.
type JobResponse struct {
	ID            string            `json:"id"`
	IncidentID    string            `json:"incident_id"`
	ActionID      string            `json:"action_id"`
	ServiceID     string            `json:"service_id"`
	Params        map[string]string `json:"params,omitempty"`
	Actor         string            `json:"actor,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Status        string            `json:"status"`
	StartedAt     time.Time         `json:"started_at"`
	FinishedAt    *time.Time        `json:"finished_at,omitempty"`
	Output        string            `json:"output,omitempty"`
	ErrorDetail   string            `json:"error_detail,omitempty"`
}

// NewJobResponse maps a domain job onto the wire shape.
func NewJobResponse(j ops.RemediationJob) JobResponse {
	resp := JobResponse{
		ID:            j.ID(),
		IncidentID:    j.IncidentID(),
		ActionID:      j.ActionID(),
		ServiceID:     j.ServiceID(),
		Params:        j.Params(),
		Actor:         j.Actor(),
		CorrelationID: j.CorrelationID(),
		Status:        string(j.Status()),
		StartedAt:     j.StartedAt(),
		Output:        j.Output(),
		ErrorDetail:   j.ErrorDetail(),
	}
	if finished := j.FinishedAt(); !finished.IsZero() {
		resp.FinishedAt = &finished
	}
	return resp
}

// MetricsResponse is the body of GET /metrics.
type MetricsResponse struct {
	Services  int `json:"services"`
	Incidents int `json:"incidents"`
	Jobs      int `json:"jobs"`
	Audits    int `json:"audits"`
}

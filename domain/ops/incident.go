package ops

import (
	"fmt"
	"time"

	"github.com/praxisops/praxis/domain/severity"
)

// IncidentStatus is a state of the incident lifecycle.
type IncidentStatus string

// Incident lifecycle states.
const (
	IncidentOpen       IncidentStatus = "open"
	IncidentMitigating IncidentStatus = "mitigating"
	IncidentMonitoring IncidentStatus = "monitoring"
	IncidentResolved   IncidentStatus = "resolved"
)

// ParseIncidentStatus validates an incident status string.
func ParseIncidentStatus(s string) (IncidentStatus, error) {
	switch IncidentStatus(s) {
	case IncidentOpen, IncidentMitigating, IncidentMonitoring, IncidentResolved:
		return IncidentStatus(s), nil
	}
	return "", fmt.Errorf("unknown incident status %q", s)
}

// EventType classifies a timeline event.
type EventType string

// Timeline event types.
const (
	EventOpened            EventType = "opened"
	EventSignal            EventType = "signal"
	EventStatusChange      EventType = "status_change"
	EventRunbookBlocked    EventType = "runbook_blocked"
	EventRunbookPending    EventType = "runbook_pending"
	EventRunbookExecuted   EventType = "runbook_executed"
	EventRunbookApproved   EventType = "runbook_approved"
	EventLogIngested       EventType = "log_ingested"
	EventServiceRegistered EventType = "service_registered"
)

// TimelineEvent is one append-only entry in an incident's history.
type TimelineEvent struct {
	Message       string    `json:"message"`
	Actor         string    `json:"actor"`
	EventType     EventType `json:"event_type"`
	TS            time.Time `json:"ts"`
	CorrelationID string    `json:"correlation_id,omitempty"`
	TraceID       string    `json:"trace_id,omitempty"`
}

// Incident tracks one operational event from open to resolved. Every
// mutation appends a timeline event; updated_at always equals the
// timestamp of the last appended event.
type Incident struct {
	id            string
	serviceID     string
	severity      severity.Severity
	status        IncidentStatus
	summary       string
	signals       []Signal
	timeline      []TimelineEvent
	runbookRefs   []string
	createdAt     time.Time
	updatedAt     time.Time
	correlationID string
}

// NewIncident opens an incident with the given opening event.
func NewIncident(id, serviceID string, sev severity.Severity, summary string, opened TimelineEvent, correlationID string) (Incident, error) {
	if id == "" {
		return Incident{}, fmt.Errorf("incident id must not be empty")
	}
	if serviceID == "" {
		return Incident{}, fmt.Errorf("incident service id must not be empty")
	}
	ts := opened.TS.UTC()
	return Incident{
		id:            id,
		serviceID:     serviceID,
		severity:      sev,
		status:        IncidentOpen,
		summary:       summary,
		timeline:      []TimelineEvent{opened},
		createdAt:     ts,
		updatedAt:     ts,
		correlationID: correlationID,
	}, nil
}

// ReconstructIncident rebuilds an Incident from persisted state.
func ReconstructIncident(id, serviceID string, sev severity.Severity, status IncidentStatus, summary string, signals []Signal, timeline []TimelineEvent, runbookRefs []string, createdAt, updatedAt time.Time, correlationID string) Incident {
	return Incident{
		id:            id,
		serviceID:     serviceID,
		severity:      sev,
		status:        status,
		summary:       summary,
		signals:       signals,
		timeline:      timeline,
		runbookRefs:   runbookRefs,
		createdAt:     createdAt.UTC(),
		updatedAt:     updatedAt.UTC(),
		correlationID: correlationID,
	}
}

// ID returns the incident identifier.
func (i Incident) ID() string { return i.id }

// ServiceID returns the affected service.
func (i Incident) ServiceID() string { return i.serviceID }

// Severity returns the incident severity.
func (i Incident) Severity() severity.Severity { return i.severity }

// Status returns the current lifecycle state.
func (i Incident) Status() IncidentStatus { return i.status }

// Summary returns the incident summary.
func (i Incident) Summary() string { return i.summary }

// Signals returns the attached signals.
func (i Incident) Signals() []Signal { return i.signals }

// Timeline returns the append-only event history.
func (i Incident) Timeline() []TimelineEvent { return i.timeline }

// RunbookRefs returns the ids of jobs run against this incident.
func (i Incident) RunbookRefs() []string { return i.runbookRefs }

// CreatedAt returns when the incident was opened.
func (i Incident) CreatedAt() time.Time { return i.createdAt }

// UpdatedAt returns the timestamp of the last timeline event.
func (i Incident) UpdatedAt() time.Time { return i.updatedAt }

// CorrelationID returns the originating correlation id, if any.
func (i Incident) CorrelationID() string { return i.correlationID }

// AddEvent appends a timeline event and advances updated_at.
func (i *Incident) AddEvent(e TimelineEvent) {
	e.TS = e.TS.UTC()
	i.timeline = append(i.timeline, e)
	if e.TS.After(i.updatedAt) {
		i.updatedAt = e.TS
	}
}

// AddSignal attaches a signal to the incident.
func (i *Incident) AddSignal(s Signal) {
	i.signals = append(i.signals, s)
}

// AddRunbookRef records a remediation job id against the incident.
func (i *Incident) AddRunbookRef(jobID string) {
	i.runbookRefs = append(i.runbookRefs, jobID)
}

// SetStatus transitions the incident and appends a status_change event.
// Transitions are unconstrained: any state may move to any other.
func (i *Incident) SetStatus(status IncidentStatus, actor string, ts time.Time, correlationID string) {
	i.status = status
	i.AddEvent(TimelineEvent{
		Message:       fmt.Sprintf("status changed to %s", status),
		Actor:         actor,
		EventType:     EventStatusChange,
		TS:            ts,
		CorrelationID: correlationID,
	})
}

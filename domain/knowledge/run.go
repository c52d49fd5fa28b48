package knowledge

import (
	"fmt"
	"time"
)

// IngestionRequest is one document submitted for ingestion. Requests are
// stored verbatim with the run so that reprocessing can replay them.
type IngestionRequest struct {
	ExternalID  string            `json:"external_id"`
	SourceID    string            `json:"source_id"`
	SourceName  string            `json:"source_name,omitempty"`
	SourceType  string            `json:"source_type"`
	Content     string            `json:"content"`
	ContentType string            `json:"content_type,omitempty"`
	Summary     string            `json:"summary,omitempty"`
	Tags        []Tag             `json:"tags,omitempty"`
	Taxonomy    []string          `json:"taxonomy,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// IngestionResult is the per-request outcome, one per input in order.
type IngestionResult struct {
	EntryID      string `json:"entry_id"`
	VersionID    string `json:"version_id"`
	Fingerprint  string `json:"fingerprint"`
	RunID        string `json:"run_id"`
	Deduplicated bool   `json:"deduplicated"`
	Error        string `json:"error,omitempty"`
}

// RunStatus is the terminal state of an ingestion run.
type RunStatus string

// RunStatus values.
const (
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// IngestionRun is the immutable record of one ingestion invocation.
type IngestionRun struct {
	runID       string
	requests    []IngestionRequest
	results     []IngestionResult
	status      RunStatus
	startedAt   time.Time
	finishedAt  time.Time
	auditEvents []AuditEvent
}

// NewIngestionRun creates a completed run record.
func NewIngestionRun(runID string, requests []IngestionRequest, results []IngestionResult, status RunStatus, startedAt, finishedAt time.Time, events []AuditEvent) (IngestionRun, error) {
	if runID == "" {
		return IngestionRun{}, fmt.Errorf("run id must not be empty")
	}
	return IngestionRun{
		runID:       runID,
		requests:    requests,
		results:     results,
		status:      status,
		startedAt:   startedAt.UTC(),
		finishedAt:  finishedAt.UTC(),
		auditEvents: events,
	}, nil
}

// RunID returns the globally unique run identifier.
func (r IngestionRun) RunID() string { return r.runID }

// Requests returns the verbatim submitted requests.
func (r IngestionRun) Requests() []IngestionRequest { return r.requests }

// Results returns the per-request outcomes.
func (r IngestionRun) Results() []IngestionResult { return r.results }

// Status returns the terminal run status.
func (r IngestionRun) Status() RunStatus { return r.status }

// StartedAt returns when the run began.
func (r IngestionRun) StartedAt() time.Time { return r.startedAt }

// FinishedAt returns when the run finished.
func (r IngestionRun) FinishedAt() time.Time { return r.finishedAt }

// AuditEvents returns the ordered audit trail of the run.
func (r IngestionRun) AuditEvents() []AuditEvent { return r.auditEvents }

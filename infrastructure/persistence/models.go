// Package persistence provides GORM-backed store implementations.
package persistence

import (
	"encoding/json"
	"time"
)

// EntryModel is the database row for a knowledge entry. The version
// history is stored as a JSON document alongside the row.
type EntryModel struct {
	ID         string `gorm:"primaryKey"`
	SourceID   string `gorm:"index"`
	SourceName string
	SourceType string `gorm:"index"`
	ExternalID string
	Versions   string `gorm:"type:text"`
	UpdatedAt  time.Time
}

// TableName sets the entries table name.
func (EntryModel) TableName() string { return "knowledge_entries" }

// VersionDoc is the JSON shape of one stored version.
type VersionDoc struct {
	ID                string    `json:"id"`
	Fingerprint       string    `json:"fingerprint"`
	NormalizedContent string    `json:"normalized_content"`
	Summary           string    `json:"summary"`
	Tags              string    `json:"tags,omitempty"`
	Taxonomy          []string  `json:"taxonomy,omitempty"`
	RawURI            string    `json:"raw_uri,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// RunModel is the database row for an ingestion run. Requests are kept
// verbatim for replay.
type RunModel struct {
	RunID       string `gorm:"primaryKey"`
	Requests    string `gorm:"type:text"`
	Results     string `gorm:"type:text"`
	Status      string
	StartedAt   time.Time
	FinishedAt  time.Time
	AuditEvents string `gorm:"type:text"`
}

// TableName sets the runs table name.
func (RunModel) TableName() string { return "ingestion_runs" }

// ServiceModel is the database row for a registered service.
type ServiceModel struct {
	ID              string `gorm:"primaryKey"`
	Name            string
	Env             string `gorm:"index"`
	Owners          string `gorm:"type:text"`
	HealthURL       string
	LoggingEndpoint string
	Tags            string `gorm:"type:text"`
	OtelConfig      string `gorm:"type:text"`
	Metadata        string `gorm:"type:text"`
	UpdatedAt       time.Time
}

// TableName sets the services table name.
func (ServiceModel) TableName() string { return "ops_services" }

// IncidentModel is the database row for an incident. Signals and the
// timeline are JSON documents.
type IncidentModel struct {
	ID            string `gorm:"primaryKey"`
	ServiceID     string `gorm:"index"`
	Severity      string
	Status        string `gorm:"index"`
	Summary       string
	Signals       string `gorm:"type:text"`
	Timeline      string `gorm:"type:text"`
	RunbookRefs   string `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time
	CorrelationID string
}

// TableName sets the incidents table name.
func (IncidentModel) TableName() string { return "ops_incidents" }

// ActionModel is the database row for a runbook action.
type ActionModel struct {
	ID               string `gorm:"primaryKey"`
	Name             string
	Description      string
	AllowedParams    string `gorm:"type:text"`
	CooldownSeconds  int
	RequiresApproval bool
	Guardrails       string `gorm:"type:text"`
}

// TableName sets the actions table name.
func (ActionModel) TableName() string { return "runbook_actions" }

// JobModel is the database row for a remediation job.
type JobModel struct {
	ID            string `gorm:"primaryKey"`
	IncidentID    string `gorm:"index"`
	ActionID      string `gorm:"index:idx_jobs_pair"`
	ServiceID     string `gorm:"index:idx_jobs_pair"`
	Params        string `gorm:"type:text"`
	Actor         string
	CorrelationID string
	Status        string `gorm:"index"`
	StartedAt     time.Time `gorm:"index"`
	FinishedAt    *time.Time
	Output        string
	ErrorDetail   string
}

// TableName sets the jobs table name.
func (JobModel) TableName() string { return "remediation_jobs" }

// LogModel is the database row for an ingested log record.
type LogModel struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	ServiceID     string `gorm:"index"`
	Env           string
	Level         string `gorm:"index"`
	Message       string
	TraceID       string `gorm:"index"`
	CorrelationID string `gorm:"index"`
	ContainerName string
	TS            time.Time `gorm:"index"`
	Extra         string    `gorm:"type:text"`
}

// TableName sets the logs table name.
func (LogModel) TableName() string { return "ops_logs" }

// AuditModel is the database row for a controller audit record.
type AuditModel struct {
	ID            uint `gorm:"primaryKey;autoIncrement"`
	TS            time.Time `gorm:"index"`
	Actor         string
	Action        string `gorm:"index"`
	EntityID      string
	CorrelationID string
	Detail        string `gorm:"type:text"`
}

// TableName sets the audit table name.
func (AuditModel) TableName() string { return "ops_audit" }

// ScanModel is the database row for a persisted gate scan.
type ScanModel struct {
	ID       string `gorm:"primaryKey"`
	Repo     string `gorm:"index"`
	Commit   string `gorm:"index"`
	TS       time.Time
	Findings string `gorm:"type:text"`
	Summary  string `gorm:"type:text"`
}

// TableName sets the scans table name.
func (ScanModel) TableName() string { return "gate_scans" }

// WaiverModel is the database row for a gate waiver.
type WaiverModel struct {
	ID                 string `gorm:"primaryKey"`
	FindingFingerprint string `gorm:"index"`
	Justification      string
	Owner              string
	ExpiresAt          time.Time
	CreatedAt          time.Time
}

// TableName sets the waivers table name.
func (WaiverModel) TableName() string { return "gate_waivers" }

// BookModel is the database row for a catalog book.
type BookModel struct {
	ID            string `gorm:"primaryKey"`
	Title         string `gorm:"index"`
	TitleNorm     string `gorm:"index"`
	Fingerprint   string `gorm:"uniqueIndex"`
	Authors       string `gorm:"type:text"`
	ISBN          string `gorm:"index"`
	Genre         string `gorm:"index"`
	Description   string `gorm:"type:text"`
	ImageLinks    string `gorm:"type:text"`
	PublishedDate string
	Metadata      string `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"index"`
	UpdatedAt     time.Time
}

// TableName sets the books table name.
func (BookModel) TableName() string { return "catalog_books" }

// toJSON serializes v, returning "" for nil-ish values.
func toJSON(v any) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(raw)
}

// fromJSON deserializes raw into v, tolerating empty input.
func fromJSON[T any](raw string) T {
	var v T
	if raw == "" {
		return v
	}
	_ = json.Unmarshal([]byte(raw), &v)
	return v
}

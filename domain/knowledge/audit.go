package knowledge

import "time"

// Step names one stage of the ingestion pipeline.
type Step string

// Pipeline steps, in execution order.
const (
	StepPersistRaw Step = "persist_raw"
	StepNormalize  Step = "normalize"
	StepEnrich     Step = "enrich"
	StepSummarize  Step = "summarize"
	StepPersist    Step = "persist"
	StepIndex      Step = "index"
)

// StepStatus is the outcome of a pipeline step.
type StepStatus string

// StepStatus values.
const (
	StatusOK           StepStatus = "ok"
	StatusCreated      StepStatus = "created"
	StatusVersioned    StepStatus = "versioned"
	StatusDeduplicated StepStatus = "deduplicated"
	StatusFailed       StepStatus = "failed"
)

// AuditEvent records the outcome of one pipeline step for one request.
type AuditEvent struct {
	RunID    string            `json:"run_id"`
	Step     Step              `json:"step"`
	Status   StepStatus        `json:"status"`
	EntryID  string            `json:"entry_id"`
	TS       time.Time         `json:"ts"`
	Detail   string            `json:"detail,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

package ops

import (
	"time"

	"github.com/praxisops/praxis/domain/severity"
)

// SignalType classifies an incoming signal.
type SignalType string

// SignalType values.
const (
	SignalLog    SignalType = "log"
	SignalMetric SignalType = "metric"
	SignalHealth SignalType = "health"
	SignalAlert  SignalType = "alert"
)

// Signal is an observation emitted by or about a service.
type Signal struct {
	ServiceID     string            `json:"service_id"`
	Type          SignalType        `json:"type"`
	Severity      severity.Severity `json:"severity"`
	Message       string            `json:"message"`
	TraceID       string            `json:"trace_id,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	TS            time.Time         `json:"ts"`
	Attributes    map[string]string `json:"attributes,omitempty"`
}

// LogRecord is a structured log line ingested for a service.
type LogRecord struct {
	ServiceID     string            `json:"service_id"`
	Env           string            `json:"env,omitempty"`
	Level         string            `json:"level,omitempty"`
	Message       string            `json:"message"`
	TraceID       string            `json:"trace_id,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	ContainerName string            `json:"container_name,omitempty"`
	TS            time.Time         `json:"ts"`
	Extra         map[string]string `json:"extra,omitempty"`
}

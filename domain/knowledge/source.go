// Package knowledge provides the knowledge-store domain: entries with
// append-only version history, ingestion runs, and audit trails.
package knowledge

import (
	"fmt"
	"strings"
)

// SourceType classifies where a document originated.
type SourceType string

// SourceType values.
const (
	SourceQualityGate SourceType = "quality-gate"
	SourceOps         SourceType = "ops"
	SourceCodeGen     SourceType = "code-gen"
	SourceOther       SourceType = "other"
)

// ParseSourceType converts a string to a SourceType, defaulting to other.
func ParseSourceType(s string) SourceType {
	switch SourceType(strings.ToLower(strings.TrimSpace(s))) {
	case SourceQualityGate:
		return SourceQualityGate
	case SourceOps:
		return SourceOps
	case SourceCodeGen:
		return SourceCodeGen
	default:
		return SourceOther
	}
}

// Source identifies a producing system.
type Source struct {
	id         string
	name       string
	sourceType SourceType
}

// NewSource creates a Source, validating the id.
func NewSource(id, name string, sourceType SourceType) (Source, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Source{}, fmt.Errorf("source id must not be empty")
	}
	return Source{id: id, name: name, sourceType: sourceType}, nil
}

// ID returns the source identifier.
func (s Source) ID() string { return s.id }

// Name returns the human-readable source name.
func (s Source) Name() string { return s.name }

// Type returns the source classification.
func (s Source) Type() SourceType { return s.sourceType }

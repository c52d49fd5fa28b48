// Package dto defines the HTTP request and response shapes for the v1 API.
package dto

import (
	"time"

	"github.com/praxisops/praxis/domain/knowledge"
)

// IngestRequest is the body of POST /ingestions.
type IngestRequest struct {
	RunID    string             `json:"run_id,omitempty"`
	Requests []IngestionPayload `json:"requests" validate:"required,min=1,dive"`
}

// IngestionPayload is one document submitted for ingestion.
type IngestionPayload struct {
	ExternalID  string            `json:"external_id" validate:"required"`
	SourceID    string            `json:"source_id" validate:"required"`
	SourceName  string            `json:"source_name,omitempty"`
	SourceType  string            `json:"source_type,omitempty"`
	Content     string            `json:"content" validate:"required"`
	ContentType string            `json:"content_type,omitempty"`
	Summary     string            `json:"summary,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	Taxonomy    []string          `json:"taxonomy,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// ToDomain converts the payload to a domain ingestion request.
func (p IngestionPayload) ToDomain() knowledge.IngestionRequest {
	tags := make([]knowledge.Tag, 0, len(p.Tags))
	for _, raw := range p.Tags {
		tags = append(tags, knowledge.ParseTag(raw))
	}
	return knowledge.IngestionRequest{
		ExternalID:  p.ExternalID,
		SourceID:    p.SourceID,
		SourceName:  p.SourceName,
		SourceType:  p.SourceType,
		Content:     p.Content,
		ContentType: p.ContentType,
		Summary:     p.Summary,
		Tags:        tags,
		Taxonomy:    p.Taxonomy,
		Metadata:    p.Metadata,
	}
}

// IngestResponse is the body returned by POST /ingestions and
// POST /reprocess/{run_id}.
type IngestResponse struct {
	RunID   string                      `json:"run_id"`
	Results []knowledge.IngestionResult `json:"results"`
}

// EntryResponse is one knowledge entry hydrated from its latest version.
type EntryResponse struct {
	ID         string    `json:"id"`
	SourceID   string    `json:"source_id"`
	SourceName string    `json:"source_name,omitempty"`
	SourceType string    `json:"source_type"`
	ExternalID string    `json:"external_id"`
	Versions   int       `json:"versions"`
	Content    string    `json:"content"`
	Summary    string    `json:"summary,omitempty"`
	Tags       []string  `json:"tags,omitempty"`
	Taxonomy   []string  `json:"taxonomy,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewEntryResponse maps a domain entry onto the wire shape.
func NewEntryResponse(entry knowledge.Entry) EntryResponse {
	latest := entry.LatestVersion()
	tags := make([]string, 0, len(latest.Tags()))
	for _, t := range latest.Tags() {
		tags = append(tags, t.String())
	}
	return EntryResponse{
		ID:         entry.ID(),
		SourceID:   entry.Source().ID(),
		SourceName: entry.Source().Name(),
		SourceType: string(entry.Source().Type()),
		ExternalID: entry.ExternalID(),
		Versions:   len(entry.Versions()),
		Content:    latest.NormalizedContent(),
		Summary:    latest.Summary(),
		Tags:       tags,
		Taxonomy:   latest.Taxonomy(),
		CreatedAt:  latest.CreatedAt(),
	}
}

// SearchResponse is the body of GET /search.
type SearchResponse struct {
	Entries []EntryResponse `json:"entries"`
}

// RunResponse is the body of GET /runs/{run_id}.
type RunResponse struct {
	RunID       string                       `json:"run_id"`
	Status      string                       `json:"status"`
	StartedAt   time.Time                    `json:"started_at"`
	FinishedAt  time.Time                    `json:"finished_at"`
	Requests    []knowledge.IngestionRequest `json:"requests"`
	Results     []knowledge.IngestionResult  `json:"results"`
	AuditEvents []knowledge.AuditEvent       `json:"audit_events"`
}

// NewRunResponse maps a stored run onto the wire shape.
func NewRunResponse(run knowledge.IngestionRun) RunResponse {
	return RunResponse{
		RunID:       run.RunID(),
		Status:      string(run.Status()),
		StartedAt:   run.StartedAt(),
		FinishedAt:  run.FinishedAt(),
		Requests:    run.Requests(),
		Results:     run.Results(),
		AuditEvents: run.AuditEvents(),
	}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}

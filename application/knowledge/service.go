// Package knowledge orchestrates the ingestion pipeline, search, and
// run replay over the knowledge-store domain.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/praxisops/praxis/domain/knowledge"
	"github.com/praxisops/praxis/internal/locks"
	"github.com/praxisops/praxis/internal/log"
)

// SummaryLength is the maximum derived-summary length in runes.
const SummaryLength = 140

// Service runs ingestion pipelines and serves search and replay.
type Service struct {
	entries knowledge.EntryStore
	runs    knowledge.RunStore
	index   knowledge.SearchIndex
	blobs   knowledge.BlobStore
	locks   *locks.Keyed
	logger  *log.Logger
	now     func() time.Time
}

// ServiceOption configures optional Service collaborators.
type ServiceOption func(*Service)

// WithBlobStore enables raw-content persistence.
func WithBlobStore(blobs knowledge.BlobStore) ServiceOption {
	return func(s *Service) { s.blobs = blobs }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a knowledge Service.
func NewService(entries knowledge.EntryStore, runs knowledge.RunStore, index knowledge.SearchIndex, logger *log.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		entries: entries,
		runs:    runs,
		index:   index,
		locks:   locks.NewKeyed(),
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest processes requests through the pipeline and returns one result
// per input in order. Ingest is idempotent on runID: when a run with the
// same id already exists its stored results are returned verbatim and no
// side effects occur.
func (s *Service) Ingest(ctx context.Context, runID string, requests []knowledge.IngestionRequest) ([]knowledge.IngestionResult, error) {
	if runID == "" {
		runID = uuid.NewString()
	}

	if prior, err := s.runs.Get(ctx, runID); err == nil {
		s.logger.InfoContext(ctx, "run replayed from cache", "run_id", runID)
		return prior.Results(), nil
	} else if !errors.Is(err, knowledge.ErrRunNotFound) {
		return nil, fmt.Errorf("check run cache: %w", err)
	}

	startedAt := s.now()
	results := make([]knowledge.IngestionResult, 0, len(requests))
	events := make([]knowledge.AuditEvent, 0, len(requests)*6)
	succeeded := 0

	for _, req := range requests {
		result, reqEvents := s.process(ctx, runID, req)
		events = append(events, reqEvents...)
		results = append(results, result)
		if result.Error == "" {
			succeeded++
		} else {
			s.logger.WarnContext(ctx, "ingestion request failed",
				"run_id", runID,
				"external_id", req.ExternalID,
				"error", result.Error,
			)
		}
	}

	status := knowledge.RunCompleted
	if succeeded == 0 && len(requests) > 0 {
		status = knowledge.RunFailed
	}

	run, err := knowledge.NewIngestionRun(runID, requests, results, status, startedAt, s.now(), events)
	if err != nil {
		return nil, fmt.Errorf("build run record: %w", err)
	}
	if err := s.runs.Save(ctx, run); err != nil {
		return nil, fmt.Errorf("save run %s: %w", runID, err)
	}

	s.logger.InfoContext(ctx, "ingestion run finished",
		"run_id", runID,
		"status", string(status),
		"requests", len(requests),
		"succeeded", succeeded,
	)
	return results, nil
}

// process runs the pipeline for a single request. Failures are absorbed
// into the returned result and its audit events.
func (s *Service) process(ctx context.Context, runID string, req knowledge.IngestionRequest) (knowledge.IngestionResult, []knowledge.AuditEvent) {
	source, err := knowledge.NewSource(req.SourceID, req.SourceName, knowledge.ParseSourceType(req.SourceType))
	if err != nil {
		return s.failed(runID, "", knowledge.StepNormalize, err)
	}
	entryID := knowledge.EntryID(source.ID(), req.ExternalID)

	var events []knowledge.AuditEvent
	audit := func(step knowledge.Step, status knowledge.StepStatus, detail string) {
		events = append(events, knowledge.AuditEvent{
			RunID:   runID,
			Step:    step,
			Status:  status,
			EntryID: entryID,
			TS:      s.now(),
			Detail:  detail,
		})
	}

	rawURI := ""
	if s.blobs != nil {
		key := fmt.Sprintf("runs/%s/%s.%s", runID, req.ExternalID, contentExt(req.ContentType))
		uri, err := s.blobs.Put(ctx, key, []byte(req.Content))
		if err != nil {
			audit(knowledge.StepPersistRaw, knowledge.StatusFailed, err.Error())
			return s.abort(entryID, runID, events, err)
		}
		rawURI = uri
		audit(knowledge.StepPersistRaw, knowledge.StatusOK, uri)
	}

	normalized := Normalize(req.Content)
	taxonomy := DedupeTaxonomy(req.Taxonomy)
	fingerprint := knowledge.ContentFingerprint(normalized)
	audit(knowledge.StepNormalize, knowledge.StatusOK, fingerprint)

	tags := knowledge.MergeTags(req.Tags, []knowledge.Tag{{Key: "source", Value: string(source.Type())}})
	audit(knowledge.StepEnrich, knowledge.StatusOK, "")

	summary := req.Summary
	if summary == "" {
		summary = Summarize(normalized)
	}
	audit(knowledge.StepSummarize, knowledge.StatusOK, "")

	result := knowledge.IngestionResult{
		EntryID:     entryID,
		Fingerprint: fingerprint,
		RunID:       runID,
	}

	var persisted knowledge.Entry
	err = s.locks.Do(entryID, func() error {
		existing, getErr := s.entries.Get(ctx, entryID)
		switch {
		case getErr == nil:
			latest := existing.LatestVersion()
			if latest.Fingerprint() == fingerprint {
				result.VersionID = latest.ID()
				result.Deduplicated = true
				persisted = existing
				audit(knowledge.StepPersist, knowledge.StatusDeduplicated, latest.ID())
				return nil
			}
			version, vErr := knowledge.NewVersion(uuid.NewString(), fingerprint, normalized, summary, tags, taxonomy, rawURI, s.now())
			if vErr != nil {
				return vErr
			}
			if aErr := existing.AppendVersion(version); aErr != nil {
				return aErr
			}
			if sErr := s.entries.Save(ctx, existing); sErr != nil {
				return sErr
			}
			result.VersionID = version.ID()
			persisted = existing
			audit(knowledge.StepPersist, knowledge.StatusVersioned, version.ID())
			return nil

		case errors.Is(getErr, knowledge.ErrEntryNotFound):
			version, vErr := knowledge.NewVersion(uuid.NewString(), fingerprint, normalized, summary, tags, taxonomy, rawURI, s.now())
			if vErr != nil {
				return vErr
			}
			entry, nErr := knowledge.NewEntry(source, req.ExternalID, version)
			if nErr != nil {
				return nErr
			}
			if sErr := s.entries.Save(ctx, entry); sErr != nil {
				return sErr
			}
			result.VersionID = version.ID()
			persisted = entry
			audit(knowledge.StepPersist, knowledge.StatusCreated, version.ID())
			return nil

		default:
			return getErr
		}
	})
	if err != nil {
		audit(knowledge.StepPersist, knowledge.StatusFailed, err.Error())
		return s.abort(entryID, runID, events, err)
	}

	if !result.Deduplicated {
		if err := s.index.Index(ctx, indexDocument(persisted)); err != nil {
			audit(knowledge.StepIndex, knowledge.StatusFailed, err.Error())
			return s.abort(entryID, runID, events, err)
		}
		audit(knowledge.StepIndex, knowledge.StatusOK, "")
	}

	return result, events
}

func (s *Service) failed(runID, entryID string, step knowledge.Step, err error) (knowledge.IngestionResult, []knowledge.AuditEvent) {
	return knowledge.IngestionResult{
			EntryID: entryID,
			RunID:   runID,
			Error:   err.Error(),
		}, []knowledge.AuditEvent{{
			RunID:   runID,
			Step:    step,
			Status:  knowledge.StatusFailed,
			EntryID: entryID,
			TS:      s.now(),
			Detail:  err.Error(),
		}}
}

func (s *Service) abort(entryID, runID string, events []knowledge.AuditEvent, err error) (knowledge.IngestionResult, []knowledge.AuditEvent) {
	return knowledge.IngestionResult{
		EntryID: entryID,
		RunID:   runID,
		Error:   err.Error(),
	}, events
}

// SearchQuery filters entries by their latest version.
type SearchQuery struct {
	Text        string
	Tags        []string
	Taxonomy    []string
	SourceTypes []string
}

// Search returns entries whose latest version matches all supplied
// filters, in stable index order.
func (s *Service) Search(ctx context.Context, query SearchQuery) ([]knowledge.Entry, error) {
	ids, err := s.index.Search(ctx, knowledge.IndexQuery{
		Text:        query.Text,
		Tags:        query.Tags,
		Taxonomy:    query.Taxonomy,
		SourceTypes: query.SourceTypes,
	})
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	entries := make([]knowledge.Entry, 0, len(ids))
	for _, id := range ids {
		entry, err := s.entries.Get(ctx, id)
		if err != nil {
			if errors.Is(err, knowledge.ErrEntryNotFound) {
				continue
			}
			return nil, fmt.Errorf("hydrate entry %s: %w", id, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Reprocess replays a stored run. Pure replay: the run cache returns the
// original results unchanged.
func (s *Service) Reprocess(ctx context.Context, runID string) ([]knowledge.IngestionResult, error) {
	run, err := s.runs.Get(ctx, runID)
	if err != nil {
		return nil, err
	}
	return s.Ingest(ctx, run.RunID(), run.Requests())
}

// GetRun returns the stored run with its audit trail.
func (s *Service) GetRun(ctx context.Context, runID string) (knowledge.IngestionRun, error) {
	return s.runs.Get(ctx, runID)
}

func indexDocument(entry knowledge.Entry) knowledge.IndexDocument {
	latest := entry.LatestVersion()
	tags := make([]string, len(latest.Tags()))
	for i, t := range latest.Tags() {
		tags[i] = t.String()
	}
	return knowledge.IndexDocument{
		EntryID:    entry.ID(),
		Text:       latest.NormalizedContent() + "\n" + latest.Summary(),
		Tags:       tags,
		Taxonomy:   latest.Taxonomy(),
		SourceType: string(entry.Source().Type()),
	}
}

func contentExt(contentType string) string {
	switch strings.ToLower(contentType) {
	case "text/markdown", "markdown", "md":
		return "md"
	case "application/json", "json":
		return "json"
	default:
		return "txt"
	}
}

package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/praxisops/praxis/domain/knowledge"
	"github.com/praxisops/praxis/domain/store"
	"github.com/praxisops/praxis/internal/database"
)

type entryMapper struct{}

func (entryMapper) ToDomain(m EntryModel) knowledge.Entry {
	source, err := knowledge.NewSource(m.SourceID, m.SourceName, knowledge.SourceType(m.SourceType))
	if err != nil {
		return knowledge.Entry{}
	}

	docs := fromJSON[[]VersionDoc](m.Versions)
	versions := make([]knowledge.Version, 0, len(docs))
	for _, d := range docs {
		v, err := knowledge.NewVersion(d.ID, d.Fingerprint, d.NormalizedContent, d.Summary,
			fromJSON[[]knowledge.Tag](d.Tags), d.Taxonomy, d.RawURI, d.CreatedAt)
		if err != nil {
			continue
		}
		versions = append(versions, v)
	}

	entry, err := knowledge.ReconstructEntry(source, m.ExternalID, versions)
	if err != nil {
		return knowledge.Entry{}
	}
	return entry
}

func (entryMapper) ToModel(e knowledge.Entry) EntryModel {
	docs := make([]VersionDoc, 0, len(e.Versions()))
	for _, v := range e.Versions() {
		docs = append(docs, VersionDoc{
			ID:                v.ID(),
			Fingerprint:       v.Fingerprint(),
			NormalizedContent: v.NormalizedContent(),
			Summary:           v.Summary(),
			Tags:              toJSON(v.Tags()),
			Taxonomy:          v.Taxonomy(),
			RawURI:            v.RawURI(),
			CreatedAt:         v.CreatedAt(),
		})
	}
	return EntryModel{
		ID:         e.ID(),
		SourceID:   e.Source().ID(),
		SourceName: e.Source().Name(),
		SourceType: string(e.Source().Type()),
		ExternalID: e.ExternalID(),
		Versions:   toJSON(docs),
		UpdatedAt:  time.Now().UTC(),
	}
}

// EntryStore is the GORM-backed knowledge.EntryStore.
type EntryStore struct {
	repo database.Repository[knowledge.Entry, EntryModel]
}

// NewEntryStore creates an EntryStore.
func NewEntryStore(db database.Database) *EntryStore {
	return &EntryStore{repo: database.NewRepository[knowledge.Entry, EntryModel](db, entryMapper{}, "knowledge entry")}
}

// Save upserts the entry with its full version history.
func (s *EntryStore) Save(ctx context.Context, entry knowledge.Entry) error {
	return s.repo.Save(ctx, entry)
}

// Get returns the entry by id.
func (s *EntryStore) Get(ctx context.Context, id string) (knowledge.Entry, error) {
	entry, err := s.repo.FindOne(ctx, store.WithID(id))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return knowledge.Entry{}, fmt.Errorf("%w: %s", knowledge.ErrEntryNotFound, id)
		}
		return knowledge.Entry{}, err
	}
	return entry, nil
}

// Find returns entries matching the given options.
func (s *EntryStore) Find(ctx context.Context, options ...store.Option) ([]knowledge.Entry, error) {
	return s.repo.Find(ctx, options...)
}

type runMapper struct{}

func (runMapper) ToDomain(m RunModel) knowledge.IngestionRun {
	run, err := knowledge.NewIngestionRun(
		m.RunID,
		fromJSON[[]knowledge.IngestionRequest](m.Requests),
		fromJSON[[]knowledge.IngestionResult](m.Results),
		knowledge.RunStatus(m.Status),
		m.StartedAt,
		m.FinishedAt,
		fromJSON[[]knowledge.AuditEvent](m.AuditEvents),
	)
	if err != nil {
		return knowledge.IngestionRun{}
	}
	return run
}

func (runMapper) ToModel(r knowledge.IngestionRun) RunModel {
	return RunModel{
		RunID:       r.RunID(),
		Requests:    toJSON(r.Requests()),
		Results:     toJSON(r.Results()),
		Status:      string(r.Status()),
		StartedAt:   r.StartedAt(),
		FinishedAt:  r.FinishedAt(),
		AuditEvents: toJSON(r.AuditEvents()),
	}
}

// RunStore is the GORM-backed knowledge.RunStore.
type RunStore struct {
	repo database.Repository[knowledge.IngestionRun, RunModel]
}

// NewRunStore creates a RunStore.
func NewRunStore(db database.Database) *RunStore {
	return &RunStore{repo: database.NewRepository[knowledge.IngestionRun, RunModel](db, runMapper{}, "ingestion run")}
}

// Save stores a completed run. Completed runs are immutable: an existing
// run id is left untouched.
func (s *RunStore) Save(ctx context.Context, run knowledge.IngestionRun) error {
	exists, err := s.repo.Exists(ctx, store.WithCondition("run_id", run.RunID()))
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return s.repo.Create(ctx, run)
}

// Get returns the run by id.
func (s *RunStore) Get(ctx context.Context, runID string) (knowledge.IngestionRun, error) {
	run, err := s.repo.FindOne(ctx, store.WithCondition("run_id", runID))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return knowledge.IngestionRun{}, fmt.Errorf("%w: %s", knowledge.ErrRunNotFound, runID)
		}
		return knowledge.IngestionRun{}, err
	}
	return run, nil
}

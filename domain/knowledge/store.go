package knowledge

import (
	"context"
	"errors"

	"github.com/praxisops/praxis/domain/store"
)

// Store errors.
var (
	ErrEntryNotFound = errors.New("knowledge entry not found")
	ErrRunNotFound   = errors.New("ingestion run not found")
	ErrVersionRace   = errors.New("concurrent version append lost")
)

// EntryStore persists knowledge entries and their version history.
type EntryStore interface {
	// Save upserts the entry with its full version history.
	Save(ctx context.Context, entry Entry) error
	// Get returns the entry by its canonical id, or ErrEntryNotFound.
	Get(ctx context.Context, id string) (Entry, error)
	// Find returns entries matching the given options.
	Find(ctx context.Context, options ...store.Option) ([]Entry, error)
}

// RunStore persists ingestion runs. Runs are written once and read many.
type RunStore interface {
	// Save stores a completed run.
	Save(ctx context.Context, run IngestionRun) error
	// Get returns the run by id, or ErrRunNotFound.
	Get(ctx context.Context, runID string) (IngestionRun, error)
}

// IndexDocument is the searchable projection of an entry's latest version.
type IndexDocument struct {
	EntryID    string
	Text       string
	Tags       []string
	Taxonomy   []string
	SourceType string
}

// IndexQuery filters indexed documents. All supplied clauses must match.
type IndexQuery struct {
	// Text is a case-insensitive substring match against the indexed blob.
	Text string
	// Tags requires a non-empty intersection with the document tag set.
	Tags []string
	// Taxonomy requires a non-empty intersection with the taxonomy set.
	Taxonomy []string
	// SourceTypes matches the document source type by equality.
	SourceTypes []string
}

// SearchIndex maintains the searchable view of entry latest versions.
type SearchIndex interface {
	// Index replaces the document for its entry id.
	Index(ctx context.Context, doc IndexDocument) error
	// Search returns matching entry ids in stable order.
	Search(ctx context.Context, query IndexQuery) ([]string, error)
}

// BlobStore persists raw submitted content.
type BlobStore interface {
	// Put writes content under key and returns the stored URI.
	Put(ctx context.Context, key string, content []byte) (string, error)
	// Get reads the content stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
}

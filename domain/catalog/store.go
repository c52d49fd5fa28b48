package catalog

import (
	"context"
	"errors"
)

// ErrBookNotFound indicates the requested book does not exist.
var ErrBookNotFound = errors.New("book not found")

// ListQuery narrows and pages a catalog listing. All supplied clauses
// are conjunctive.
type ListQuery struct {
	// Q is a case-insensitive substring matched against title, authors,
	// description, or genre (any-match).
	Q string
	// Author is a case-insensitive substring matched against authors.
	Author string
	// Genre is a case-insensitive full-string match.
	Genre string
	// HasISBN filters on presence (true) or absence (false) of an ISBN.
	HasISBN *bool
	// Page is 1-based.
	Page int
	// Limit caps the page size.
	Limit int
}

// BookStore persists and lists catalog books.
type BookStore interface {
	// Upsert inserts or replaces a book keyed by its fingerprint and
	// returns the stored id.
	Upsert(ctx context.Context, book Book) (string, error)
	// Get returns a book by id, or ErrBookNotFound.
	Get(ctx context.Context, id string) (Book, error)
	// List returns the filtered page sorted by (title asc, id asc) and
	// the total count over the filtered set.
	List(ctx context.Context, query ListQuery) ([]Book, int64, error)
	// EnsureIndexes creates the store indexes; it is idempotent.
	EnsureIndexes(ctx context.Context) error
}

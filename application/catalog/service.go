// Package catalog provides the catalog listing use-case.
package catalog

import (
	"context"
	"fmt"

	"github.com/praxisops/praxis/domain/catalog"
	"github.com/praxisops/praxis/internal/config"
	"github.com/praxisops/praxis/internal/log"
)

// Service serves catalog queries.
type Service struct {
	books  catalog.BookStore
	logger *log.Logger
}

// NewService creates a catalog Service.
func NewService(books catalog.BookStore, logger *log.Logger) *Service {
	return &Service{books: books, logger: logger}
}

// List returns the filtered, sorted page and the filtered total. Page
// defaults to 1 and limit to the default page size, capped at the
// maximum.
func (s *Service) List(ctx context.Context, query catalog.ListQuery) ([]catalog.Book, int64, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = config.DefaultCatalogPageSize
	}
	if query.Limit > config.MaxCatalogPageSize {
		return nil, 0, fmt.Errorf("limit must not exceed %d", config.MaxCatalogPageSize)
	}
	return s.books.List(ctx, query)
}

// Get returns a book by id.
func (s *Service) Get(ctx context.Context, id string) (catalog.Book, error) {
	return s.books.Get(ctx, id)
}

// Upsert inserts or replaces a book keyed by its fingerprint.
func (s *Service) Upsert(ctx context.Context, book catalog.Book) (string, error) {
	id, err := s.books.Upsert(ctx, book)
	if err != nil {
		return "", err
	}
	s.logger.DebugContext(ctx, "book upserted", "book_id", id)
	return id, nil
}

// EnsureIndexes creates store indexes; safe to call repeatedly.
func (s *Service) EnsureIndexes(ctx context.Context) error {
	return s.books.EnsureIndexes(ctx)
}

package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/praxisops/praxis/domain/catalog"
)

// BookStore is an in-memory catalog.BookStore.
type BookStore struct {
	mu    sync.RWMutex
	books map[string]catalog.Book
	byFP  map[string]string
}

// NewBookStore creates an empty BookStore.
func NewBookStore() *BookStore {
	return &BookStore{
		books: make(map[string]catalog.Book),
		byFP:  make(map[string]string),
	}
}

// Upsert inserts or replaces a book keyed by its fingerprint.
func (s *BookStore) Upsert(_ context.Context, book catalog.Book) (string, error) {
	if err := book.Validate(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	fp := book.Fingerprint()
	now := time.Now().UTC()
	if existingID, ok := s.byFP[fp]; ok {
		book.ID = existingID
		book.CreatedAt = s.books[existingID].CreatedAt
		book.UpdatedAt = now
		s.books[existingID] = book
		return existingID, nil
	}

	if book.ID == "" {
		book.ID = uuid.NewString()
	}
	book.CreatedAt = now
	book.UpdatedAt = now
	s.books[book.ID] = book
	s.byFP[fp] = book.ID
	return book.ID, nil
}

// Get returns a book by id.
func (s *BookStore) Get(_ context.Context, id string) (catalog.Book, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	book, ok := s.books[id]
	if !ok {
		return catalog.Book{}, fmt.Errorf("%w: %s", catalog.ErrBookNotFound, id)
	}
	return book, nil
}

// List returns the filtered page sorted by (title asc, id asc) plus the
// total over the filtered set.
func (s *BookStore) List(_ context.Context, query catalog.ListQuery) ([]catalog.Book, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var filtered []catalog.Book
	for _, book := range s.books {
		if matchBook(book, query) {
			filtered = append(filtered, book)
		}
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Title != filtered[j].Title {
			return filtered[i].Title < filtered[j].Title
		}
		return filtered[i].ID < filtered[j].ID
	})

	total := int64(len(filtered))
	skip := (query.Page - 1) * query.Limit
	if skip < 0 {
		skip = 0
	}
	if skip >= len(filtered) {
		return nil, total, nil
	}
	filtered = filtered[skip:]
	if query.Limit > 0 && query.Limit < len(filtered) {
		filtered = filtered[:query.Limit]
	}
	return filtered, total, nil
}

func matchBook(book catalog.Book, query catalog.ListQuery) bool {
	if query.Q != "" {
		q := strings.ToLower(query.Q)
		hay := []string{strings.ToLower(book.Title), strings.ToLower(book.Description), strings.ToLower(book.Genre)}
		for _, a := range book.Authors {
			hay = append(hay, strings.ToLower(a))
		}
		found := false
		for _, h := range hay {
			if strings.Contains(h, q) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if query.Author != "" {
		a := strings.ToLower(query.Author)
		found := false
		for _, author := range book.Authors {
			if strings.Contains(strings.ToLower(author), a) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if query.Genre != "" && !strings.EqualFold(book.Genre, query.Genre) {
		return false
	}

	if query.HasISBN != nil {
		has := strings.TrimSpace(book.ISBN) != ""
		if has != *query.HasISBN {
			return false
		}
	}

	return true
}

// EnsureIndexes is a no-op for the in-memory store.
func (s *BookStore) EnsureIndexes(context.Context) error {
	return nil
}

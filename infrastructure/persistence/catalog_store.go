package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/praxisops/praxis/domain/catalog"
	"github.com/praxisops/praxis/internal/database"
)

// BookStore is the GORM-backed catalog.BookStore.
type BookStore struct {
	db database.Database
}

// NewBookStore creates a BookStore.
func NewBookStore(db database.Database) *BookStore {
	return &BookStore{db: db}
}

func bookToModel(b catalog.Book) BookModel {
	return BookModel{
		ID:            b.ID,
		Title:         b.Title,
		TitleNorm:     b.TitleNorm(),
		Fingerprint:   b.Fingerprint(),
		Authors:       toJSON(b.Authors),
		ISBN:          b.ISBN,
		Genre:         b.Genre,
		Description:   b.Description,
		ImageLinks:    toJSON(b.ImageLinks),
		PublishedDate: b.PublishedDate,
		Metadata:      toJSON(b.Metadata),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func bookToDomain(m BookModel) catalog.Book {
	return catalog.Book{
		ID:            m.ID,
		Title:         m.Title,
		Authors:       fromJSON[[]string](m.Authors),
		ISBN:          m.ISBN,
		Genre:         m.Genre,
		Description:   m.Description,
		ImageLinks:    fromJSON[map[string]string](m.ImageLinks),
		PublishedDate: m.PublishedDate,
		Metadata:      fromJSON[map[string]string](m.Metadata),
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// Upsert inserts or replaces a book keyed by its fingerprint. Replacing
// keeps the original id and creation time. The lookup and save run in
// one transaction so concurrent upserts of the same book cannot race.
func (s *BookStore) Upsert(ctx context.Context, book catalog.Book) (string, error) {
	if err := book.Validate(); err != nil {
		return "", err
	}

	now := time.Now().UTC()
	err := database.WithTransaction(ctx, s.db, func(tx *gorm.DB) error {
		var existing BookModel
		err := tx.First(&existing, "fingerprint = ?", book.Fingerprint()).Error
		switch {
		case err == nil:
			book.ID = existing.ID
			book.CreatedAt = existing.CreatedAt
			book.UpdatedAt = now
		case errors.Is(err, gorm.ErrRecordNotFound):
			if book.ID == "" {
				book.ID = uuid.NewString()
			}
			book.CreatedAt = now
			book.UpdatedAt = now
		default:
			return fmt.Errorf("lookup book by fingerprint: %w", err)
		}

		model := bookToModel(book)
		if err := tx.Save(&model).Error; err != nil {
			return fmt.Errorf("upsert book: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return book.ID, nil
}

// Get returns a book by id.
func (s *BookStore) Get(ctx context.Context, id string) (catalog.Book, error) {
	var model BookModel
	if err := s.db.Session(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return catalog.Book{}, fmt.Errorf("%w: %s", catalog.ErrBookNotFound, id)
		}
		return catalog.Book{}, fmt.Errorf("get book %s: %w", id, err)
	}
	return bookToDomain(model), nil
}

// List returns the filtered page sorted by (title asc, id asc) and the
// total count over the filtered set.
func (s *BookStore) List(ctx context.Context, query catalog.ListQuery) ([]catalog.Book, int64, error) {
	tx := s.db.Session(ctx).Model(&BookModel{})

	if query.Q != "" {
		needle := "%" + escapeLike(catalog.Norm(query.Q)) + "%"
		tx = tx.Where(
			`title_norm LIKE ? ESCAPE '\' OR LOWER(authors) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(genre) LIKE ? ESCAPE '\'`,
			needle, needle, needle, needle,
		)
	}
	if query.Author != "" {
		tx = tx.Where(`LOWER(authors) LIKE ? ESCAPE '\'`, "%"+escapeLike(catalog.Norm(query.Author))+"%")
	}
	if query.Genre != "" {
		tx = tx.Where("LOWER(genre) = ?", catalog.Norm(query.Genre))
	}
	if query.HasISBN != nil {
		if *query.HasISBN {
			tx = tx.Where("isbn <> ''")
		} else {
			tx = tx.Where("isbn = ''")
		}
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	var models []BookModel
	tx = tx.Order("title ASC").Order("id ASC")
	if query.Limit > 0 {
		tx = tx.Limit(query.Limit).Offset((page - 1) * query.Limit)
	}
	if err := tx.Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}

	books := make([]catalog.Book, 0, len(models))
	for _, m := range models {
		books = append(books, bookToDomain(m))
	}
	return books, total, nil
}

// escapeLike backslash-escapes LIKE metacharacters so filter text
// matches literally.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// EnsureIndexes creates the catalog indexes. The migrator already covers
// them, so this is a cheap no-op after the first call.
func (s *BookStore) EnsureIndexes(ctx context.Context) error {
	if err := s.db.Session(ctx).AutoMigrate(&BookModel{}); err != nil {
		return fmt.Errorf("ensure catalog indexes: %w", err)
	}
	return nil
}

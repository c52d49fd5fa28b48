// Package catalog provides the catalog domain: books with deterministic
// identity fingerprints and paginated filtered listing.
package catalog

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Book is one catalog record.
type Book struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Authors       []string          `json:"authors"`
	ISBN          string            `json:"isbn,omitempty"`
	Genre         string            `json:"genre,omitempty"`
	Description   string            `json:"description,omitempty"`
	ImageLinks    map[string]string `json:"image_links,omitempty"`
	PublishedDate string            `json:"published_date,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	CreatedAt     time.Time         `json:"created_at,omitempty"`
	UpdatedAt     time.Time         `json:"updated_at,omitempty"`
}

// Norm canonicalizes a string for fingerprinting: lower-cased with
// whitespace runs collapsed to single spaces.
func Norm(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// TitleNorm returns the normalized title used for indexed lookups.
func (b Book) TitleNorm() string {
	return Norm(b.Title)
}

// Fingerprint derives the book's upsert identity from its normalized
// title and authors.
func (b Book) Fingerprint() string {
	authors := make([]string, len(b.Authors))
	for i, a := range b.Authors {
		authors[i] = Norm(a)
	}
	canonical := fmt.Sprintf("%s|%s", Norm(b.Title), strings.Join(authors, ","))
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// Validate checks the mandatory book fields.
func (b Book) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("book title must not be empty")
	}
	if len(b.Authors) == 0 {
		return fmt.Errorf("book must have at least one author")
	}
	return nil
}

package dto

import "github.com/praxisops/praxis/domain/catalog"

// UpsertBookRequest is the body of POST /books.
type UpsertBookRequest struct {
	Title         string            `json:"title" validate:"required"`
	Authors       []string          `json:"authors" validate:"required,min=1"`
	ISBN          string            `json:"isbn,omitempty"`
	Genre         string            `json:"genre,omitempty"`
	Description   string            `json:"description,omitempty"`
	ImageLinks    map[string]string `json:"image_links,omitempty"`
	PublishedDate string            `json:"published_date,omitempty"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// ToDomain converts the request to a domain book.
func (r UpsertBookRequest) ToDomain() catalog.Book {
	return catalog.Book{
		Title:         r.Title,
		Authors:       r.Authors,
		ISBN:          r.ISBN,
		Genre:         r.Genre,
		Description:   r.Description,
		ImageLinks:    r.ImageLinks,
		PublishedDate: r.PublishedDate,
		Metadata:      r.Metadata,
	}
}

// UpsertBookResponse is the body returned by POST /books.
type UpsertBookResponse struct {
	ID string `json:"id"`
}

// BookListResponse is the body of GET /books.
type BookListResponse struct {
	Items []catalog.Book `json:"items"`
	Total int64          `json:"total"`
}

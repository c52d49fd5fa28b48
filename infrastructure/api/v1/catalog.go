package v1

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/praxisops/praxis"
	"github.com/praxisops/praxis/domain/catalog"
	"github.com/praxisops/praxis/infrastructure/api/middleware"
	"github.com/praxisops/praxis/infrastructure/api/v1/dto"
	"github.com/praxisops/praxis/internal/log"
)

// CatalogRouter handles the catalog API endpoints.
type CatalogRouter struct {
	client *praxis.Client
	logger *log.Logger
}

// NewCatalogRouter creates a new CatalogRouter.
func NewCatalogRouter(client *praxis.Client) *CatalogRouter {
	return &CatalogRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for catalog endpoints.
func (r *CatalogRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Get("/books", r.List)
	router.Get("/books/{id}", r.Get)
	router.Post("/books", r.Upsert)

	return router
}

// List handles GET /books.
func (r *CatalogRouter) List(w http.ResponseWriter, req *http.Request) {
	query := catalog.ListQuery{
		Q:      req.URL.Query().Get("q"),
		Author: req.URL.Query().Get("author"),
		Genre:  req.URL.Query().Get("genre"),
	}

	if raw := req.URL.Query().Get("has_isbn"); raw != "" {
		hasISBN, err := strconv.ParseBool(raw)
		if err != nil {
			middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "invalid has_isbn", err), r.logger.Slog())
			return
		}
		query.HasISBN = &hasISBN
	}
	var err error
	if query.Page, err = intParam(req, "page"); err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	if query.Limit, err = intParam(req, "limit"); err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}

	items, total, err := r.client.Catalog.List(req.Context(), query)
	if err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, err.Error(), err), r.logger.Slog())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.BookListResponse{Items: items, Total: total})
}

// Get handles GET /books/{id}.
func (r *CatalogRouter) Get(w http.ResponseWriter, req *http.Request) {
	book, err := r.client.Catalog.Get(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, book)
}

// Upsert handles POST /books.
func (r *CatalogRouter) Upsert(w http.ResponseWriter, req *http.Request) {
	body, err := decode[dto.UpsertBookRequest](req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}

	id, err := r.client.Catalog.Upsert(req.Context(), body.ToDomain())
	if err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, err.Error(), err), r.logger.Slog())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.UpsertBookResponse{ID: id})
}

// intParam parses a non-negative integer query parameter, 0 when absent.
func intParam(req *http.Request, name string) (int, error) {
	raw := req.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0, middleware.NewAPIError(http.StatusBadRequest, "invalid "+name, err)
	}
	return value, nil
}

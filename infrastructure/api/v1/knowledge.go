package v1

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/praxisops/praxis"
	appknowledge "github.com/praxisops/praxis/application/knowledge"
	"github.com/praxisops/praxis/domain/knowledge"
	"github.com/praxisops/praxis/infrastructure/api/middleware"
	"github.com/praxisops/praxis/infrastructure/api/v1/dto"
	"github.com/praxisops/praxis/internal/log"
)

// KnowledgeRouter handles the knowledge-store API endpoints.
type KnowledgeRouter struct {
	client *praxis.Client
	logger *log.Logger
}

// NewKnowledgeRouter creates a new KnowledgeRouter.
func NewKnowledgeRouter(client *praxis.Client) *KnowledgeRouter {
	return &KnowledgeRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for knowledge endpoints.
func (r *KnowledgeRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/ingestions", r.Ingest)
	router.Get("/search", r.Search)
	router.Post("/reprocess/{run_id}", r.Reprocess)
	router.Get("/runs/{run_id}", r.GetRun)

	return router
}

// Ingest handles POST /ingestions.
func (r *KnowledgeRouter) Ingest(w http.ResponseWriter, req *http.Request) {
	body, err := decode[dto.IngestRequest](req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}

	domainRequests := make([]knowledge.IngestionRequest, 0, len(body.Requests))
	for _, payload := range body.Requests {
		domainRequests = append(domainRequests, payload.ToDomain())
	}

	results, err := r.client.Knowledge.Ingest(req.Context(), body.RunID, domainRequests)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}

	runID := body.RunID
	if len(results) > 0 {
		runID = results[0].RunID
	}
	middleware.WriteJSON(w, http.StatusOK, dto.IngestResponse{RunID: runID, Results: results})
}

// Search handles GET /search.
func (r *KnowledgeRouter) Search(w http.ResponseWriter, req *http.Request) {
	query := appknowledge.SearchQuery{
		Text:        req.URL.Query().Get("text"),
		Tags:        splitParam(req.URL.Query().Get("tags")),
		Taxonomy:    splitParam(req.URL.Query().Get("taxonomy")),
		SourceTypes: splitParam(req.URL.Query().Get("source_types")),
	}

	entries, err := r.client.Knowledge.Search(req.Context(), query)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}

	response := dto.SearchResponse{Entries: make([]dto.EntryResponse, 0, len(entries))}
	for _, entry := range entries {
		response.Entries = append(response.Entries, dto.NewEntryResponse(entry))
	}
	middleware.WriteJSON(w, http.StatusOK, response)
}

// Reprocess handles POST /reprocess/{run_id}.
func (r *KnowledgeRouter) Reprocess(w http.ResponseWriter, req *http.Request) {
	runID := chi.URLParam(req, "run_id")

	results, err := r.client.Knowledge.Reprocess(req.Context(), runID)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.IngestResponse{RunID: runID, Results: results})
}

// GetRun handles GET /runs/{run_id}.
func (r *KnowledgeRouter) GetRun(w http.ResponseWriter, req *http.Request) {
	run, err := r.client.Knowledge.GetRun(req.Context(), chi.URLParam(req, "run_id"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.NewRunResponse(run))
}

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/praxisops/praxis"
	apimiddleware "github.com/praxisops/praxis/infrastructure/api/middleware"
	v1 "github.com/praxisops/praxis/infrastructure/api/v1"
)

// ServiceKind selects which service's routes an APIServer exposes.
type ServiceKind string

// ServiceKind values.
const (
	KnowledgeStore ServiceKind = "knowledge-store"
	OpsController  ServiceKind = "ops-controller"
	CatalogQuery   ServiceKind = "catalog-query"
)

// APIServer provides the HTTP API for one praxis service.
type APIServer struct {
	client  *praxis.Client
	kind    ServiceKind
	apiKeys []string
	server  *Server
	router  chi.Router
	logger  *slog.Logger
}

// NewAPIServer creates a new APIServer wired to the given Client.
// When any apiKeys are set, every /api/v1 request requires a valid
// X-API-KEY. Health and metrics stay open.
func NewAPIServer(client *praxis.Client, kind ServiceKind, apiKeys []string) *APIServer {
	return &APIServer{
		client:  client,
		kind:    kind,
		apiKeys: apiKeys,
		logger:  client.Logger().Slog(),
	}
}

// mountRoutes wires up the service routes on the given router.
func (a *APIServer) mountRoutes(router chi.Router) {
	router.Use(apimiddleware.Logging(a.logger))

	router.Get("/health", a.Health)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(60 * time.Second))
		r.Use(apimiddleware.AuthWithKeys(a.apiKeys))
		r.Use(apimiddleware.Identity())

		switch a.kind {
		case OpsController:
			opsRouter := v1.NewOpsRouter(a.client)
			router.Get("/metrics", opsRouter.Metrics)
			r.Mount("/", opsRouter.Routes())
		case CatalogQuery:
			r.Mount("/", v1.NewCatalogRouter(a.client).Routes())
		default:
			r.Mount("/", v1.NewKnowledgeRouter(a.client).Routes())
		}
	})
}

// Health handles GET /health.
func (a *APIServer) Health(w http.ResponseWriter, _ *http.Request) {
	apimiddleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": string(a.kind),
	})
}

// ListenAndServe starts the HTTP server on the given address.
func (a *APIServer) ListenAndServe(addr string) error {
	server := NewServer(addr, a.logger)
	a.server = &server
	a.mountRoutes(server.Router())
	return server.Start()
}

// Shutdown gracefully shuts down the server.
func (a *APIServer) Shutdown(ctx context.Context) error {
	if a.server == nil {
		return nil
	}
	return a.server.Shutdown(ctx)
}

// Handler returns the routes as an http.Handler for use with custom
// servers and tests.
func (a *APIServer) Handler() http.Handler {
	if a.router == nil {
		a.router = chi.NewRouter()
		a.mountRoutes(a.router)
	}
	return a.router
}

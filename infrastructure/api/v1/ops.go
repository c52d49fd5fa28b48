package v1

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/praxisops/praxis"
	appops "github.com/praxisops/praxis/application/ops"
	"github.com/praxisops/praxis/domain/ops"
	"github.com/praxisops/praxis/domain/severity"
	"github.com/praxisops/praxis/infrastructure/api/middleware"
	"github.com/praxisops/praxis/infrastructure/api/v1/dto"
	"github.com/praxisops/praxis/internal/log"
)

// OpsRouter handles the ops-controller API endpoints.
type OpsRouter struct {
	client *praxis.Client
	logger *log.Logger
}

// NewOpsRouter creates a new OpsRouter.
func NewOpsRouter(client *praxis.Client) *OpsRouter {
	return &OpsRouter{
		client: client,
		logger: client.Logger(),
	}
}

// Routes returns the chi router for ops endpoints. Role enforcement is
// layered here: registry, logs, incidents, and execution need ops or
// admin; action registration and approval need admin.
func (r *OpsRouter) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireRole("ops", "admin"))

		router.Post("/services", r.RegisterService)
		router.Get("/services", r.ListServices)
		router.Get("/services/{id}", r.GetService)

		router.Post("/logs", r.IngestLogs)
		router.Get("/logs", r.SearchLogs)

		router.Get("/health/{service_id}", r.CheckHealth)

		router.Post("/incidents", r.OpenIncident)
		router.Get("/incidents", r.ListIncidents)
		router.Get("/incidents/{id}", r.GetIncident)
		router.Post("/incidents/{id}/status", r.SetIncidentStatus)
		router.Post("/alerts", r.Alert)

		router.Get("/runbooks/actions", r.ListActions)
		router.Post("/runbooks/execute", r.ExecuteRunbook)
		router.Get("/runbooks/jobs", r.ListJobs)
		router.Get("/runbooks/jobs/{id}", r.GetJob)
	})

	router.Group(func(router chi.Router) {
		router.Use(middleware.RequireRole("admin"))

		router.Post("/runbooks/actions", r.RegisterAction)
		router.Post("/runbooks/approve", r.ApproveRunbook)
	})

	return router
}

// RegisterService handles POST /services.
func (r *OpsRouter) RegisterService(w http.ResponseWriter, req *http.Request) {
	body, err := decode[dto.RegisterServiceRequest](req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	service, err := body.ToDomain()
	if err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, err.Error(), err), r.logger.Slog())
		return
	}

	ctx := req.Context()
	if err := r.client.Ops.RegisterService(ctx, service, middleware.Actor(ctx), log.CorrelationID(ctx)); err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, dto.NewServiceResponse(service))
}

// ListServices handles GET /services.
func (r *OpsRouter) ListServices(w http.ResponseWriter, req *http.Request) {
	services, err := r.client.Ops.ListServices(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	response := make([]dto.ServiceResponse, 0, len(services))
	for _, s := range services {
		response = append(response, dto.NewServiceResponse(s))
	}
	middleware.WriteJSON(w, http.StatusOK, response)
}

// GetService handles GET /services/{id}.
func (r *OpsRouter) GetService(w http.ResponseWriter, req *http.Request) {
	service, err := r.client.Ops.GetService(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.NewServiceResponse(service))
}

// IngestLogs handles POST /logs.
func (r *OpsRouter) IngestLogs(w http.ResponseWriter, req *http.Request) {
	body, err := decode[dto.LogRequest](req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}

	ctx := req.Context()
	actor := middleware.Actor(ctx)
	for _, record := range body.Records {
		if err := r.client.Ops.IngestLog(ctx, record, actor); err != nil {
			middleware.WriteError(w, req, err, r.logger.Slog())
			return
		}
	}
	middleware.WriteJSON(w, http.StatusAccepted, map[string]int{"ingested": len(body.Records)})
}

// SearchLogs handles GET /logs.
func (r *OpsRouter) SearchLogs(w http.ResponseWriter, req *http.Request) {
	limit := 0
	if raw := req.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, "invalid limit", err), r.logger.Slog())
			return
		}
		limit = parsed
	}

	records, err := r.client.Ops.SearchLogs(req.Context(), ops.LogFilter{
		ServiceID:     req.URL.Query().Get("service_id"),
		Level:         req.URL.Query().Get("level"),
		TraceID:       req.URL.Query().Get("trace_id"),
		CorrelationID: req.URL.Query().Get("correlation_id"),
		Limit:         limit,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, records)
}

// CheckHealth handles GET /health/{service_id}.
func (r *OpsRouter) CheckHealth(w http.ResponseWriter, req *http.Request) {
	report, err := r.client.Ops.CheckHealth(req.Context(), chi.URLParam(req, "service_id"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, report)
}

// OpenIncident handles POST /incidents.
func (r *OpsRouter) OpenIncident(w http.ResponseWriter, req *http.Request) {
	body, err := decode[dto.OpenIncidentRequest](req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	sev := severity.Medium
	if body.Severity != "" {
		parsed, err := severity.Parse(body.Severity)
		if err != nil {
			middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, err.Error(), err), r.logger.Slog())
			return
		}
		sev = parsed
	}

	ctx := req.Context()
	incident, err := r.client.Ops.OpenIncident(ctx, body.ServiceID, sev, body.Summary,
		middleware.Actor(ctx), body.CorrelationID, body.TraceID)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, dto.NewIncidentResponse(incident))
}

// Alert handles POST /alerts. Alerts always open a new incident.
func (r *OpsRouter) Alert(w http.ResponseWriter, req *http.Request) {
	body, err := decode[dto.AlertRequest](req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}

	ctx := req.Context()
	incident, err := r.client.Ops.OpenFromSignal(ctx, body.ToSignal(), middleware.Actor(ctx))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, dto.NewIncidentResponse(incident))
}

// ListIncidents handles GET /incidents.
func (r *OpsRouter) ListIncidents(w http.ResponseWriter, req *http.Request) {
	incidents, err := r.client.Ops.ListIncidents(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	response := make([]dto.IncidentResponse, 0, len(incidents))
	for _, incident := range incidents {
		response = append(response, dto.NewIncidentResponse(incident))
	}
	middleware.WriteJSON(w, http.StatusOK, response)
}

// GetIncident handles GET /incidents/{id}.
func (r *OpsRouter) GetIncident(w http.ResponseWriter, req *http.Request) {
	incident, err := r.client.Ops.GetIncident(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.NewIncidentResponse(incident))
}

// SetIncidentStatus handles POST /incidents/{id}/status.
func (r *OpsRouter) SetIncidentStatus(w http.ResponseWriter, req *http.Request) {
	body, err := decode[dto.SetStatusRequest](req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	status, err := ops.ParseIncidentStatus(body.Status)
	if err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, err.Error(), err), r.logger.Slog())
		return
	}

	ctx := req.Context()
	incident, err := r.client.Ops.SetIncidentStatus(ctx, chi.URLParam(req, "id"), status,
		middleware.Actor(ctx), body.CorrelationID)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.NewIncidentResponse(incident))
}

// RegisterAction handles POST /runbooks/actions.
func (r *OpsRouter) RegisterAction(w http.ResponseWriter, req *http.Request) {
	body, err := decode[dto.RegisterActionRequest](req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	action, err := body.ToDomain()
	if err != nil {
		middleware.WriteError(w, req, middleware.NewAPIError(http.StatusBadRequest, err.Error(), err), r.logger.Slog())
		return
	}

	ctx := req.Context()
	if err := r.client.Ops.RegisterAction(ctx, action, middleware.Actor(ctx)); err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, dto.NewActionResponse(action))
}

// ListActions handles GET /runbooks/actions.
func (r *OpsRouter) ListActions(w http.ResponseWriter, req *http.Request) {
	actions, err := r.client.Ops.ListActions(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	response := make([]dto.ActionResponse, 0, len(actions))
	for _, action := range actions {
		response = append(response, dto.NewActionResponse(action))
	}
	middleware.WriteJSON(w, http.StatusOK, response)
}

// ExecuteRunbook handles POST /runbooks/execute.
func (r *OpsRouter) ExecuteRunbook(w http.ResponseWriter, req *http.Request) {
	body, err := decode[dto.ExecuteRunbookRequest](req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}

	ctx := req.Context()
	job, err := r.client.Ops.ExecuteRunbook(ctx, appops.ExecuteRequest{
		ServiceID:     body.ServiceID,
		IncidentID:    body.IncidentID,
		ActionID:      body.ActionID,
		Params:        body.Params,
		Actor:         middleware.Actor(ctx),
		CorrelationID: body.CorrelationID,
	})
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.NewJobResponse(job))
}

// ApproveRunbook handles POST /runbooks/approve.
func (r *OpsRouter) ApproveRunbook(w http.ResponseWriter, req *http.Request) {
	body, err := decode[dto.ApproveRunbookRequest](req)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}

	ctx := req.Context()
	job, err := r.client.Ops.ApproveRunbook(ctx, body.JobID, middleware.Actor(ctx), body.Note)
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.NewJobResponse(job))
}

// ListJobs handles GET /runbooks/jobs.
func (r *OpsRouter) ListJobs(w http.ResponseWriter, req *http.Request) {
	jobs, err := r.client.Ops.ListJobs(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	response := make([]dto.JobResponse, 0, len(jobs))
	for _, job := range jobs {
		response = append(response, dto.NewJobResponse(job))
	}
	middleware.WriteJSON(w, http.StatusOK, response)
}

// GetJob handles GET /runbooks/jobs/{id}.
func (r *OpsRouter) GetJob(w http.ResponseWriter, req *http.Request) {
	job, err := r.client.Ops.GetJob(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.NewJobResponse(job))
}

// Metrics handles GET /metrics. Mounted outside the role-gated groups.
func (r *OpsRouter) Metrics(w http.ResponseWriter, req *http.Request) {
	snapshot, err := r.client.Ops.Snapshot(req.Context())
	if err != nil {
		middleware.WriteError(w, req, err, r.logger.Slog())
		return
	}
	middleware.WriteJSON(w, http.StatusOK, dto.MetricsResponse{
		Services:  snapshot.Services,
		Incidents: snapshot.Incidents,
		Jobs:      snapshot.Jobs,
		Audits:    snapshot.Audits,
	})
}

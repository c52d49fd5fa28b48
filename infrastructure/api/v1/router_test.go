package v1_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/praxisops/praxis"
	"github.com/praxisops/praxis/infrastructure/api/middleware"
	v1 "github.com/praxisops/praxis/infrastructure/api/v1"
	"github.com/praxisops/praxis/infrastructure/api/v1/dto"
	"github.com/praxisops/praxis/internal/config"
)

func newTestClient(t *testing.T) *praxis.Client {
	t.Helper()
	client, err := praxis.New(praxis.WithConfig(config.NewAppConfigWithOptions(
		config.WithPersistence(config.PersistenceMemory),
		config.WithLogLevel("ERROR"),
	)))
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func postJSON(t *testing.T, handler http.Handler, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestKnowledgeRouter_IngestAndSearch(t *testing.T) {
	client := newTestClient(t)
	routes := v1.NewKnowledgeRouter(client).Routes()

	body := `{"run_id":"run-1","requests":[{"external_id":"doc-1","source_id":"wiki","source_type":"other","content":"Postmortem for checkout outage","tags":["team:core"]}]}`
	w := postJSON(t, routes, "/ingestions", body, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status code = %v, want %v: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var ingested dto.IngestResponse
	if err := json.NewDecoder(w.Body).Decode(&ingested); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if ingested.RunID != "run-1" {
		t.Errorf("run_id = %v, want run-1", ingested.RunID)
	}
	if len(ingested.Results) != 1 || ingested.Results[0].Error != "" {
		t.Fatalf("results = %+v, want one success", ingested.Results)
	}

	req := httptest.NewRequest(http.MethodGet, "/search?text=checkout&tags=team:core", nil)
	w = httptest.NewRecorder()
	routes.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %v, want %v", w.Code, http.StatusOK)
	}

	var search dto.SearchResponse
	if err := json.NewDecoder(w.Body).Decode(&search); err != nil {
		t.Fatalf("decode search: %v", err)
	}
	if len(search.Entries) != 1 {
		t.Fatalf("len(entries) = %v, want 1", len(search.Entries))
	}
	if search.Entries[0].ID != "wiki:doc-1" {
		t.Errorf("entry id = %v, want wiki:doc-1", search.Entries[0].ID)
	}
}

func TestKnowledgeRouter_IngestRejectsEmptyBatch(t *testing.T) {
	client := newTestClient(t)
	routes := v1.NewKnowledgeRouter(client).Routes()

	w := postJSON(t, routes, "/ingestions", `{"requests":[]}`, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status code = %v, want %v", w.Code, http.StatusBadRequest)
	}
}

func TestKnowledgeRouter_ReprocessUnknownRun(t *testing.T) {
	client := newTestClient(t)
	routes := v1.NewKnowledgeRouter(client).Routes()

	w := postJSON(t, routes, "/reprocess/nope", "", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("status code = %v, want %v", w.Code, http.StatusNotFound)
	}
}

func TestKnowledgeRouter_GetRunIncludesAudit(t *testing.T) {
	client := newTestClient(t)
	routes := v1.NewKnowledgeRouter(client).Routes()

	body := `{"run_id":"run-audit","requests":[{"external_id":"doc-1","source_id":"wiki","content":"text"}]}`
	if w := postJSON(t, routes, "/ingestions", body, nil); w.Code != http.StatusOK {
		t.Fatalf("ingest status = %v", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/runs/run-audit", nil)
	w := httptest.NewRecorder()
	routes.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status code = %v, want %v", w.Code, http.StatusOK)
	}

	var run dto.RunResponse
	if err := json.NewDecoder(w.Body).Decode(&run); err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if run.Status != "completed" {
		t.Errorf("status = %v, want completed", run.Status)
	}
	if len(run.AuditEvents) == 0 {
		t.Error("audit events empty, want pipeline trail")
	}
}

func opsHandler(client *praxis.Client) http.Handler {
	return middleware.Identity()(v1.NewOpsRouter(client).Routes())
}

func TestOpsRouter_RegisterServiceRequiresRole(t *testing.T) {
	client := newTestClient(t)
	handler := opsHandler(client)

	body := `{"id":"svc-1","name":"checkout","env":"prod"}`
	if w := postJSON(t, handler, "/services", body, nil); w.Code != http.StatusForbidden {
		t.Errorf("no role: status = %v, want %v", w.Code, http.StatusForbidden)
	}

	w := postJSON(t, handler, "/services", body, map[string]string{"X-Roles": "ops"})
	if w.Code != http.StatusCreated {
		t.Errorf("ops role: status = %v, want %v: %s", w.Code, http.StatusCreated, w.Body.String())
	}
}

func TestOpsRouter_ApproveRequiresAdmin(t *testing.T) {
	client := newTestClient(t)
	handler := opsHandler(client)

	w := postJSON(t, handler, "/runbooks/approve", `{"job_id":"j1"}`, map[string]string{"X-Roles": "ops"})
	if w.Code != http.StatusForbidden {
		t.Errorf("ops role on approve: status = %v, want %v", w.Code, http.StatusForbidden)
	}
}

func TestOpsRouter_IncidentLifecycle(t *testing.T) {
	client := newTestClient(t)
	handler := opsHandler(client)
	roles := map[string]string{"X-Roles": "ops", "X-Actor": "casey"}

	if w := postJSON(t, handler, "/services", `{"id":"svc-1","name":"checkout","env":"prod"}`, roles); w.Code != http.StatusCreated {
		t.Fatalf("register service: %v", w.Code)
	}

	w := postJSON(t, handler, "/incidents", `{"service_id":"svc-1","severity":"HIGH","summary":"elevated errors"}`, roles)
	if w.Code != http.StatusCreated {
		t.Fatalf("open incident: %v: %s", w.Code, w.Body.String())
	}
	var incident dto.IncidentResponse
	if err := json.NewDecoder(w.Body).Decode(&incident); err != nil {
		t.Fatalf("decode incident: %v", err)
	}
	if incident.Status != "open" {
		t.Errorf("status = %v, want open", incident.Status)
	}

	w = postJSON(t, handler, "/incidents/"+incident.ID+"/status", `{"status":"mitigating"}`, roles)
	if w.Code != http.StatusOK {
		t.Fatalf("set status: %v", w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/incidents/"+incident.ID, nil)
	req.Header.Set("X-Roles", "ops")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("get incident: %v", rec.Code)
	}
	var fetched dto.IncidentResponse
	if err := json.NewDecoder(rec.Body).Decode(&fetched); err != nil {
		t.Fatalf("decode incident: %v", err)
	}
	if fetched.Status != "mitigating" {
		t.Errorf("status = %v, want mitigating", fetched.Status)
	}
	if len(fetched.Timeline) != 2 {
		t.Errorf("timeline length = %v, want 2", len(fetched.Timeline))
	}
}

func TestOpsRouter_OpenIncidentRejectsBadSeverity(t *testing.T) {
	client := newTestClient(t)
	handler := opsHandler(client)
	roles := map[string]string{"X-Roles": "ops"}

	if w := postJSON(t, handler, "/services", `{"id":"svc-1","name":"checkout","env":"prod"}`, roles); w.Code != http.StatusCreated {
		t.Fatalf("register service: %v", w.Code)
	}

	w := postJSON(t, handler, "/incidents", `{"service_id":"svc-1","severity":"URGENT","summary":"down"}`, roles)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad severity: status = %v, want %v", w.Code, http.StatusBadRequest)
	}

	// Omitted severity still defaults to MEDIUM.
	w = postJSON(t, handler, "/incidents", `{"service_id":"svc-1","summary":"down"}`, roles)
	if w.Code != http.StatusCreated {
		t.Fatalf("default severity: status = %v", w.Code)
	}
	var incident dto.IncidentResponse
	if err := json.NewDecoder(w.Body).Decode(&incident); err != nil {
		t.Fatalf("decode incident: %v", err)
	}
	if incident.Severity != "MEDIUM" {
		t.Errorf("severity = %v, want MEDIUM", incident.Severity)
	}
}

func TestOpsRouter_ExecuteRejectsUnknownParam(t *testing.T) {
	client := newTestClient(t)
	handler := opsHandler(client)
	ops := map[string]string{"X-Roles": "ops"}
	admin := map[string]string{"X-Roles": "admin"}

	if w := postJSON(t, handler, "/services", `{"id":"svc-1","name":"checkout","env":"prod"}`, ops); w.Code != http.StatusCreated {
		t.Fatalf("register service: %v", w.Code)
	}
	if w := postJSON(t, handler, "/runbooks/actions", `{"id":"restart","allowed_params":["reason"]}`, admin); w.Code != http.StatusCreated {
		t.Fatalf("register action: %v", w.Code)
	}
	w := postJSON(t, handler, "/incidents", `{"service_id":"svc-1","summary":"down"}`, ops)
	if w.Code != http.StatusCreated {
		t.Fatalf("open incident: %v", w.Code)
	}
	var incident dto.IncidentResponse
	if err := json.NewDecoder(w.Body).Decode(&incident); err != nil {
		t.Fatalf("decode incident: %v", err)
	}

	body := `{"service_id":"svc-1","incident_id":"` + incident.ID + `","action_id":"restart","params":{"force":"true"}}`
	if w := postJSON(t, handler, "/runbooks/execute", body, ops); w.Code != http.StatusBadRequest {
		t.Errorf("execute with bad param: status = %v, want %v", w.Code, http.StatusBadRequest)
	}
}

func TestOpsRouter_ExecuteHappyPath(t *testing.T) {
	client := newTestClient(t)
	handler := opsHandler(client)
	ops := map[string]string{"X-Roles": "ops"}
	admin := map[string]string{"X-Roles": "admin"}

	if w := postJSON(t, handler, "/services", `{"id":"svc-1","name":"checkout","env":"prod"}`, ops); w.Code != http.StatusCreated {
		t.Fatalf("register service: %v", w.Code)
	}
	if w := postJSON(t, handler, "/runbooks/actions", `{"id":"restart","allowed_params":["reason"]}`, admin); w.Code != http.StatusCreated {
		t.Fatalf("register action: %v", w.Code)
	}
	w := postJSON(t, handler, "/incidents", `{"service_id":"svc-1","summary":"down"}`, ops)
	var incident dto.IncidentResponse
	if err := json.NewDecoder(w.Body).Decode(&incident); err != nil {
		t.Fatalf("decode incident: %v", err)
	}

	body := `{"service_id":"svc-1","incident_id":"` + incident.ID + `","action_id":"restart","params":{"reason":"oom"}}`
	w = postJSON(t, handler, "/runbooks/execute", body, ops)
	if w.Code != http.StatusOK {
		t.Fatalf("execute: status = %v: %s", w.Code, w.Body.String())
	}
	var job dto.JobResponse
	if err := json.NewDecoder(w.Body).Decode(&job); err != nil {
		t.Fatalf("decode job: %v", err)
	}
	if job.Status != "completed" {
		t.Errorf("job status = %v, want completed", job.Status)
	}
	if job.FinishedAt == nil {
		t.Error("finished_at is nil, want set")
	}
}

func TestCatalogRouter_ListAndFilter(t *testing.T) {
	client := newTestClient(t)
	routes := v1.NewCatalogRouter(client).Routes()

	seed := []string{
		`{"title":"Site Reliability","authors":["Beyer"],"genre":"Tech","isbn":"978-1"}`,
		`{"title":"Clean Code","authors":["Martin"],"genre":"Tech","isbn":"978-2"}`,
		`{"title":"Dune","authors":["Herbert"],"genre":"SciFi","isbn":"978-3"}`,
	}
	for _, body := range seed {
		if w := postJSON(t, routes, "/books", body, nil); w.Code != http.StatusOK {
			t.Fatalf("upsert: %v: %s", w.Code, w.Body.String())
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/books?genre=tech&has_isbn=true&page=1&limit=10", nil)
	w := httptest.NewRecorder()
	routes.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %v", w.Code)
	}

	var list dto.BookListResponse
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if list.Total != 2 {
		t.Errorf("total = %v, want 2", list.Total)
	}
	if len(list.Items) != 2 || list.Items[0].Title != "Clean Code" {
		t.Errorf("items = %+v, want Clean Code first", list.Items)
	}
}

func TestCatalogRouter_InvalidHasISBN(t *testing.T) {
	client := newTestClient(t)
	routes := v1.NewCatalogRouter(client).Routes()

	req := httptest.NewRequest(http.MethodGet, "/books?has_isbn=maybe", nil)
	w := httptest.NewRecorder()
	routes.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %v, want %v", w.Code, http.StatusBadRequest)
	}
}

func TestCatalogRouter_GetUnknownBook(t *testing.T) {
	client := newTestClient(t)
	routes := v1.NewCatalogRouter(client).Routes()

	req := httptest.NewRequest(http.MethodGet, "/books/missing", nil)
	w := httptest.NewRecorder()
	routes.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %v, want %v", w.Code, http.StatusNotFound)
	}
}

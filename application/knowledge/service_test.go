package knowledge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisops/praxis/domain/knowledge"
	"github.com/praxisops/praxis/infrastructure/index"
	"github.com/praxisops/praxis/infrastructure/memory"
	"github.com/praxisops/praxis/internal/log"
)

func newTestService(t *testing.T) (*Service, *memory.EntryStore, *memory.RunStore) {
	t.Helper()
	entries := memory.NewEntryStore()
	runs := memory.NewRunStore()
	logger := log.New(log.FormatText, "ERROR")
	return NewService(entries, runs, index.New(), logger), entries, runs
}

func request(externalID, content string) knowledge.IngestionRequest {
	return knowledge.IngestionRequest{
		ExternalID: externalID,
		SourceID:   "s1",
		SourceType: "quality-gate",
		Content:    content,
	}
}

func TestIngestDeduplicatesSameContent(t *testing.T) {
	svc, entries, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Ingest(ctx, "run-1", []knowledge.IngestionRequest{request("1", "A")})
	require.NoError(t, err)
	second, err := svc.Ingest(ctx, "run-2", []knowledge.IngestionRequest{request("1", "A")})
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.False(t, first[0].Deduplicated)
	assert.True(t, second[0].Deduplicated)
	assert.Equal(t, first[0].EntryID, second[0].EntryID)
	assert.Equal(t, first[0].VersionID, second[0].VersionID)

	entry, err := entries.Get(ctx, "s1:1")
	require.NoError(t, err)
	assert.Len(t, entry.Versions(), 1)
}

func TestIngestVersionsChangedContent(t *testing.T) {
	svc, entries, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "run-1", []knowledge.IngestionRequest{request("1", "A")})
	require.NoError(t, err)
	results, err := svc.Ingest(ctx, "run-2", []knowledge.IngestionRequest{request("1", "A patched")})
	require.NoError(t, err)

	assert.False(t, results[0].Deduplicated)

	entry, err := entries.Get(ctx, "s1:1")
	require.NoError(t, err)
	require.Len(t, entry.Versions(), 2)
	assert.NotEqual(t, entry.Versions()[0].Fingerprint(), entry.Versions()[1].Fingerprint())

	// Index reflects the latest version only.
	found, err := svc.Search(ctx, SearchQuery{Text: "patched"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "s1:1", found[0].ID())
}

func TestIngestIdempotentOnRunID(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Ingest(ctx, "run-1", []knowledge.IngestionRequest{request("1", "A")})
	require.NoError(t, err)

	// Same run id with different requests: the cache wins, no side effects.
	replay, err := svc.Ingest(ctx, "run-1", []knowledge.IngestionRequest{request("2", "B")})
	require.NoError(t, err)
	assert.Equal(t, first, replay)

	_, err = svc.Search(ctx, SearchQuery{Text: "B"})
	require.NoError(t, err)
}

func TestIngestAbsorbsPerRequestFailures(t *testing.T) {
	svc, _, runs := newTestService(t)
	ctx := context.Background()

	bad := request("2", "B")
	bad.SourceID = "" // invalid source aborts only this request

	results, err := svc.Ingest(ctx, "run-1", []knowledge.IngestionRequest{request("1", "A"), bad})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Empty(t, results[0].Error)
	assert.NotEmpty(t, results[1].Error)

	run, err := runs.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, knowledge.RunCompleted, run.Status())

	var failed bool
	for _, e := range run.AuditEvents() {
		if e.Status == knowledge.StatusFailed {
			failed = true
		}
	}
	assert.True(t, failed)
}

func TestIngestRunFailedWhenNothingSucceeds(t *testing.T) {
	svc, _, runs := newTestService(t)
	ctx := context.Background()

	bad := request("1", "A")
	bad.SourceID = ""

	_, err := svc.Ingest(ctx, "run-1", []knowledge.IngestionRequest{bad})
	require.NoError(t, err)

	run, err := runs.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, knowledge.RunFailed, run.Status())
}

func TestIngestAuditTrailOrder(t *testing.T) {
	svc, _, runs := newTestService(t)
	ctx := context.Background()

	_, err := svc.Ingest(ctx, "run-1", []knowledge.IngestionRequest{request("1", "A")})
	require.NoError(t, err)

	run, err := runs.Get(ctx, "run-1")
	require.NoError(t, err)

	steps := make([]knowledge.Step, 0, len(run.AuditEvents()))
	for _, e := range run.AuditEvents() {
		steps = append(steps, e.Step)
	}
	assert.Equal(t, []knowledge.Step{
		knowledge.StepNormalize,
		knowledge.StepEnrich,
		knowledge.StepSummarize,
		knowledge.StepPersist,
		knowledge.StepIndex,
	}, steps)
	assert.Equal(t, knowledge.StatusCreated, run.AuditEvents()[3].Status)
}

func TestSearchFilters(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	req1 := request("1", "postgres connection pool exhausted")
	req1.Tags = []knowledge.Tag{{Key: "team", Value: "core"}}
	req1.Taxonomy = []string{"incident", "db"}
	req2 := request("2", "rollout completed cleanly")
	req2.SourceType = "ops"

	_, err := svc.Ingest(ctx, "run-1", []knowledge.IngestionRequest{req1, req2})
	require.NoError(t, err)

	byText, err := svc.Search(ctx, SearchQuery{Text: "POSTGRES"})
	require.NoError(t, err)
	require.Len(t, byText, 1)
	assert.Equal(t, "s1:1", byText[0].ID())

	byTag, err := svc.Search(ctx, SearchQuery{Tags: []string{"team:core"}})
	require.NoError(t, err)
	assert.Len(t, byTag, 1)

	byTaxonomy, err := svc.Search(ctx, SearchQuery{Taxonomy: []string{"db"}})
	require.NoError(t, err)
	assert.Len(t, byTaxonomy, 1)

	bySource, err := svc.Search(ctx, SearchQuery{SourceTypes: []string{"ops"}})
	require.NoError(t, err)
	require.Len(t, bySource, 1)
	assert.Equal(t, "s1:2", bySource[0].ID())

	none, err := svc.Search(ctx, SearchQuery{Text: "postgres", SourceTypes: []string{"ops"}})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReprocessIsPureReplay(t *testing.T) {
	svc, entries, _ := newTestService(t)
	ctx := context.Background()

	original, err := svc.Ingest(ctx, "run-1", []knowledge.IngestionRequest{request("1", "A")})
	require.NoError(t, err)

	replayed, err := svc.Reprocess(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, original, replayed)

	entry, err := entries.Get(ctx, "s1:1")
	require.NoError(t, err)
	assert.Len(t, entry.Versions(), 1)
}

func TestReprocessUnknownRun(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Reprocess(context.Background(), "missing")
	assert.ErrorIs(t, err, knowledge.ErrRunNotFound)
}

func TestNormalize(t *testing.T) {
	got := Normalize("  line one  \n\t line two \n\n end  ")
	assert.Equal(t, "line one\nline two\n\nend", got)
}

func TestSummarizeTruncates(t *testing.T) {
	short := Summarize("just a short line")
	assert.Equal(t, "just a short line", short)

	long := ""
	for i := 0; i < 40; i++ {
		long += "word "
	}
	summary := Summarize(long)
	assert.Len(t, []rune(summary), SummaryLength+1)
	assert.Equal(t, "…", string([]rune(summary)[SummaryLength:]))
}

func TestDedupeTaxonomy(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, DedupeTaxonomy([]string{"a", "b", "a", "c", "b"}))
	assert.Nil(t, DedupeTaxonomy(nil))
}

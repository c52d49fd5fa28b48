package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/praxisops/praxis/domain/catalog"
	"github.com/praxisops/praxis/infrastructure/memory"
	"github.com/praxisops/praxis/internal/log"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	return NewService(memory.NewBookStore(), log.New(log.FormatText, "ERROR"))
}

func seedBooks(t *testing.T, svc *Service) {
	t.Helper()
	ctx := context.Background()
	books := []catalog.Book{
		{Title: "Site Reliability", Authors: []string{"Beyer"}, Genre: "Tech", ISBN: "978-1"},
		{Title: "Clean Code", Authors: []string{"Martin"}, Genre: "Tech", ISBN: "978-2"},
		{Title: "Drafts", Authors: []string{"Anon"}, Genre: "Tech"},
		{Title: "Dune", Authors: []string{"Herbert"}, Genre: "SciFi", ISBN: "978-3"},
	}
	for _, b := range books {
		_, err := svc.Upsert(ctx, b)
		require.NoError(t, err)
	}
}

func TestListGenreAndISBNFilter(t *testing.T) {
	svc := newTestService(t)
	seedBooks(t, svc)
	hasISBN := true

	items, total, err := svc.List(context.Background(), catalog.ListQuery{
		Genre:   "tech",
		HasISBN: &hasISBN,
		Page:    1,
		Limit:   2,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), total)
	require.Len(t, items, 2)
	// Sorted by title asc.
	assert.Equal(t, "Clean Code", items[0].Title)
	assert.Equal(t, "Site Reliability", items[1].Title)
}

func TestListPagesAreDisjointContiguous(t *testing.T) {
	svc := newTestService(t)
	seedBooks(t, svc)
	ctx := context.Background()

	page1, total, err := svc.List(ctx, catalog.ListQuery{Page: 1, Limit: 2})
	require.NoError(t, err)
	page2, _, err := svc.List(ctx, catalog.ListQuery{Page: 2, Limit: 2})
	require.NoError(t, err)
	all, _, err := svc.List(ctx, catalog.ListQuery{Page: 1, Limit: 4})
	require.NoError(t, err)

	assert.Equal(t, int64(4), total)
	assert.Equal(t, all, append(page1, page2...))
}

func TestListQMatchesAnyField(t *testing.T) {
	svc := newTestService(t)
	seedBooks(t, svc)

	items, total, err := svc.List(context.Background(), catalog.ListQuery{Q: "herb"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, items, 1)
	assert.Equal(t, "Dune", items[0].Title)
}

func TestListAuthorSubstring(t *testing.T) {
	svc := newTestService(t)
	seedBooks(t, svc)

	_, total, err := svc.List(context.Background(), catalog.ListQuery{Author: "MART"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}

func TestListRejectsOversizedLimit(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.List(context.Background(), catalog.ListQuery{Limit: 101})
	assert.Error(t, err)
}

func TestUpsertByFingerprintReplaces(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	id1, err := svc.Upsert(ctx, catalog.Book{Title: "Dune", Authors: []string{"Herbert"}})
	require.NoError(t, err)
	id2, err := svc.Upsert(ctx, catalog.Book{Title: "  DUNE ", Authors: []string{"herbert"}, Genre: "SciFi"})
	require.NoError(t, err)

	assert.Equal(t, id1, id2)

	book, err := svc.Get(ctx, id1)
	require.NoError(t, err)
	assert.Equal(t, "SciFi", book.Genre)
}

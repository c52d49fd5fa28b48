// Package index provides the in-memory text and facet search index for
// knowledge entries.
package index

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/praxisops/praxis/domain/knowledge"
)

type document struct {
	text       string
	tags       map[string]bool
	tagKeys    map[string]bool
	taxonomy   map[string]bool
	sourceType string
}

// Index is an in-memory knowledge.SearchIndex. Indexing replaces the
// document for an entry, so the index always reflects latest versions.
type Index struct {
	mu   sync.RWMutex
	docs map[string]document
}

// New creates an empty Index.
func New() *Index {
	return &Index{docs: make(map[string]document)}
}

// Index stores the searchable projection of an entry.
func (i *Index) Index(_ context.Context, doc knowledge.IndexDocument) error {
	tags := make(map[string]bool, len(doc.Tags))
	tagKeys := make(map[string]bool, len(doc.Tags))
	for _, t := range doc.Tags {
		tags[t] = true
		tagKeys[knowledge.ParseTag(t).Key] = true
	}
	taxonomy := make(map[string]bool, len(doc.Taxonomy))
	for _, t := range doc.Taxonomy {
		taxonomy[t] = true
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.docs[doc.EntryID] = document{
		text:       strings.ToLower(doc.Text),
		tags:       tags,
		tagKeys:    tagKeys,
		taxonomy:   taxonomy,
		sourceType: doc.SourceType,
	}
	return nil
}

// Search returns entry ids matching every supplied clause, sorted by id
// for stable ordering.
func (i *Index) Search(_ context.Context, query knowledge.IndexQuery) ([]string, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	var ids []string
	for id, doc := range i.docs {
		if matches(doc, query) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func matches(doc document, query knowledge.IndexQuery) bool {
	if query.Text != "" && !strings.Contains(doc.text, strings.ToLower(query.Text)) {
		return false
	}

	if len(query.Tags) > 0 && !intersects(query.Tags, doc.tags, doc.tagKeys) {
		return false
	}

	if len(query.Taxonomy) > 0 && !intersects(query.Taxonomy, doc.taxonomy, nil) {
		return false
	}

	if len(query.SourceTypes) > 0 {
		found := false
		for _, st := range query.SourceTypes {
			if st == doc.sourceType {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}

// intersects reports whether any filter value is present in the primary
// set, or in the fallback set when one is given. Tag filters match the
// canonical "key:value" form or the bare key.
func intersects(filters []string, primary, fallback map[string]bool) bool {
	for _, f := range filters {
		if primary[f] {
			return true
		}
		if fallback != nil && fallback[f] {
			return true
		}
	}
	return false
}

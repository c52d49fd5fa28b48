package knowledge

import (
	"fmt"
	"time"
)

// Version is one immutable revision of a knowledge entry.
type Version struct {
	id                string
	fingerprint       string
	normalizedContent string
	summary           string
	tags              []Tag
	taxonomy          []string
	rawURI            string
	createdAt         time.Time
}

// NewVersion creates a Version, validating id and fingerprint.
func NewVersion(id, fingerprint, normalizedContent, summary string, tags []Tag, taxonomy []string, rawURI string, createdAt time.Time) (Version, error) {
	if id == "" {
		return Version{}, fmt.Errorf("version id must not be empty")
	}
	if fingerprint == "" {
		return Version{}, fmt.Errorf("version fingerprint must not be empty")
	}
	return Version{
		id:                id,
		fingerprint:       fingerprint,
		normalizedContent: normalizedContent,
		summary:           summary,
		tags:              tags,
		taxonomy:          taxonomy,
		rawURI:            rawURI,
		createdAt:         createdAt.UTC(),
	}, nil
}

// ID returns the version identifier.
func (v Version) ID() string { return v.id }

// Fingerprint returns the content fingerprint.
func (v Version) Fingerprint() string { return v.fingerprint }

// NormalizedContent returns the canonical content.
func (v Version) NormalizedContent() string { return v.normalizedContent }

// Summary returns the version summary.
func (v Version) Summary() string { return v.summary }

// Tags returns the version tags.
func (v Version) Tags() []Tag { return v.tags }

// Taxonomy returns the deduplicated taxonomy tokens.
func (v Version) Taxonomy() []string { return v.taxonomy }

// RawURI returns the blob URI of the raw content, if persisted.
func (v Version) RawURI() string { return v.rawURI }

// CreatedAt returns the creation instant.
func (v Version) CreatedAt() time.Time { return v.createdAt }

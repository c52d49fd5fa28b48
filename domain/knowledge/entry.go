package knowledge

import (
	"errors"
	"fmt"
)

// ErrDuplicateVersion indicates an append whose fingerprint matches the
// current latest version.
var ErrDuplicateVersion = errors.New("version fingerprint matches latest")

// EntryID derives the canonical entry identifier.
func EntryID(sourceID, externalID string) string {
	return sourceID + ":" + externalID
}

// Entry is a logical document with an append-only version history.
type Entry struct {
	id         string
	source     Source
	externalID string
	versions   []Version
}

// NewEntry creates an Entry with its first version.
func NewEntry(source Source, externalID string, first Version) (Entry, error) {
	if externalID == "" {
		return Entry{}, fmt.Errorf("external id must not be empty")
	}
	return Entry{
		id:         EntryID(source.ID(), externalID),
		source:     source,
		externalID: externalID,
		versions:   []Version{first},
	}, nil
}

// ReconstructEntry rebuilds an Entry from persisted state.
func ReconstructEntry(source Source, externalID string, versions []Version) (Entry, error) {
	if len(versions) == 0 {
		return Entry{}, fmt.Errorf("entry %s has no versions", EntryID(source.ID(), externalID))
	}
	return Entry{
		id:         EntryID(source.ID(), externalID),
		source:     source,
		externalID: externalID,
		versions:   versions,
	}, nil
}

// ID returns the canonical "<source.id>:<external_id>" identifier.
func (e Entry) ID() string { return e.id }

// Source returns the producing source.
func (e Entry) Source() Source { return e.source }

// ExternalID returns the caller-supplied document identifier.
func (e Entry) ExternalID() string { return e.externalID }

// Versions returns the ordered version history.
func (e Entry) Versions() []Version { return e.versions }

// LatestVersion returns the most recent version.
func (e Entry) LatestVersion() Version {
	return e.versions[len(e.versions)-1]
}

// AppendVersion appends a new version. It fails with ErrDuplicateVersion
// when the fingerprint equals the current latest fingerprint, keeping
// adjacent versions distinct.
func (e *Entry) AppendVersion(v Version) error {
	if len(e.versions) > 0 && e.LatestVersion().Fingerprint() == v.Fingerprint() {
		return fmt.Errorf("%w: %s", ErrDuplicateVersion, v.Fingerprint())
	}
	e.versions = append(e.versions, v)
	return nil
}

package knowledge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustSource(t *testing.T) Source {
	t.Helper()
	s, err := NewSource("s1", "quality gate", SourceQualityGate)
	require.NoError(t, err)
	return s
}

func mustVersion(t *testing.T, id, fingerprint string) Version {
	t.Helper()
	v, err := NewVersion(id, fingerprint, "content", "summary", nil, nil, "", time.Now())
	require.NoError(t, err)
	return v
}

func TestEntryIDFormat(t *testing.T) {
	assert.Equal(t, "s1:doc-1", EntryID("s1", "doc-1"))
}

func TestAppendVersionRejectsSameFingerprint(t *testing.T) {
	entry, err := NewEntry(mustSource(t), "doc-1", mustVersion(t, "v1", "abc"))
	require.NoError(t, err)

	err = entry.AppendVersion(mustVersion(t, "v2", "abc"))
	require.ErrorIs(t, err, ErrDuplicateVersion)
	assert.Len(t, entry.Versions(), 1)
}

func TestAppendVersionAcceptsNewFingerprint(t *testing.T) {
	entry, err := NewEntry(mustSource(t), "doc-1", mustVersion(t, "v1", "abc"))
	require.NoError(t, err)

	require.NoError(t, entry.AppendVersion(mustVersion(t, "v2", "def")))
	assert.Len(t, entry.Versions(), 2)
	assert.Equal(t, "def", entry.LatestVersion().Fingerprint())

	// Re-appending an earlier fingerprint is fine: only adjacent
	// versions must differ.
	require.NoError(t, entry.AppendVersion(mustVersion(t, "v3", "abc")))
	assert.Equal(t, "abc", entry.LatestVersion().Fingerprint())
}

func TestReconstructEntryRequiresVersions(t *testing.T) {
	_, err := ReconstructEntry(mustSource(t), "doc-1", nil)
	assert.Error(t, err)
}

func TestMergeTagsKeepsFirstOccurrence(t *testing.T) {
	merged := MergeTags(
		[]Tag{{Key: "team", Value: "core"}, {Key: "env", Value: "prod"}},
		[]Tag{{Key: "env", Value: "staging"}, {Key: "source", Value: "ops"}},
	)

	assert.Equal(t, []Tag{
		{Key: "team", Value: "core"},
		{Key: "env", Value: "prod"},
		{Key: "source", Value: "ops"},
	}, merged)
}

func TestParseSourceType(t *testing.T) {
	assert.Equal(t, SourceQualityGate, ParseSourceType("Quality-Gate"))
	assert.Equal(t, SourceOps, ParseSourceType("ops"))
	assert.Equal(t, SourceOther, ParseSourceType("mystery"))
}

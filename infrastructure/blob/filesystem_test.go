package blob

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutGetRoundTrip(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	uri, err := store.Put(ctx, "wiki/doc-1/v1.txt", []byte("raw content"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(uri, "file://"), "uri: %s", uri)

	content, err := store.Get(ctx, "wiki/doc-1/v1.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("raw content"), content)
}

func TestStore_RejectsEscapingKeys(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"../outside.txt", "a/../../outside.txt", "/etc/passwd", "."} {
		_, err := store.Put(ctx, key, []byte("x"))
		assert.Error(t, err, "key %q", key)
		_, err = store.Get(ctx, key)
		assert.Error(t, err, "key %q", key)
	}
}

func TestStore_GetMissingKey(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "missing.txt")
	assert.Error(t, err)
}

func TestNewStore_RequiresRoot(t *testing.T) {
	_, err := NewStore("")
	assert.Error(t, err)
}

package storage

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStoreRoundTrip(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	key, size, err := store.Save("blueprint.pdf", strings.NewReader("payload"))
	require.NoError(t, err)
	require.EqualValues(t, 7, size)
	require.True(t, strings.HasSuffix(key, ".pdf"))

	reader, err := store.Open(key)
	require.NoError(t, err)
	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.NoError(t, reader.Close())
	require.Equal(t, "payload", string(data))

	require.NoError(t, store.Delete(key))
	_, err = store.Open(key)
	require.ErrorIs(t, err, ErrNotFound)

	// Deleting twice is not an error.
	require.NoError(t, store.Delete(key))
}

func TestLocalStoreRejectsTraversal(t *testing.T) {
	store, err := NewLocalStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Open("../etc/passwd")
	require.Error(t, err)
	require.Error(t, store.Delete("a/b"))
}

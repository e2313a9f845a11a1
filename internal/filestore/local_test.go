package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelink/dispatch-api/internal/filestore"
)

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	store, err := filestore.NewLocalStore(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	path, err := store.Store(context.Background(), []byte("prescription"), "application/pdf", "ordonnance.pdf")
	require.NoError(t, err)
	assert.Equal(t, ".pdf", filepath.Ext(path))

	data, err := os.ReadFile(filepath.FromSlash(path))
	require.NoError(t, err)
	assert.Equal(t, "prescription", string(data))
}

func TestLocalStoreUniqueNames(t *testing.T) {
	store, err := filestore.NewLocalStore(t.TempDir())
	require.NoError(t, err)

	a, err := store.Store(context.Background(), []byte("a"), "text/plain", "same.txt")
	require.NoError(t, err)
	b, err := store.Store(context.Background(), []byte("b"), "text/plain", "same.txt")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

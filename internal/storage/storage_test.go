package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/competitor-radar/internal/config"
	"github.com/JakeFAU/competitor-radar/internal/storage/local"
	"github.com/JakeFAU/competitor-radar/internal/storage/memory"
)

func TestNewArchive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	store, closeFn, err := NewArchive(ctx, config.StorageConfig{Backend: config.BackendNone})
	require.NoError(t, err)
	require.Nil(t, store)
	require.NoError(t, closeFn())

	store, _, err = NewArchive(ctx, config.StorageConfig{Backend: config.BackendMemory})
	require.NoError(t, err)
	require.IsType(t, &memory.BlobStore{}, store)

	store, _, err = NewArchive(ctx, config.StorageConfig{
		Backend:  config.BackendLocal,
		LocalDir: filepath.Join(t.TempDir(), "archive"),
	})
	require.NoError(t, err)
	require.IsType(t, &local.BlobStore{}, store)

	_, closeFn, err = NewArchive(ctx, config.StorageConfig{Backend: "s3"})
	require.Error(t, err)
	require.NotNil(t, closeFn)
}

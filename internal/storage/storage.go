// Package storage selects the blob store that archives finished reports.
// Backends live in the gcs, local and memory subpackages.
package storage

import (
	"context"
	"fmt"

	gcsclient "cloud.google.com/go/storage"

	"github.com/JakeFAU/competitor-radar/internal/config"
	"github.com/JakeFAU/competitor-radar/internal/radar"
	"github.com/JakeFAU/competitor-radar/internal/storage/gcs"
	"github.com/JakeFAU/competitor-radar/internal/storage/local"
	"github.com/JakeFAU/competitor-radar/internal/storage/memory"
)

// NewArchive builds the configured archive store. It returns a nil store when
// archiving is disabled. The returned close function is never nil.
func NewArchive(ctx context.Context, cfg config.StorageConfig) (radar.BlobStore, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case "", config.BackendNone:
		return nil, noop, nil
	case config.BackendMemory:
		return memory.NewBlobStore(), noop, nil
	case config.BackendLocal:
		store, err := local.New(local.Config{BaseDir: cfg.LocalDir})
		if err != nil {
			return nil, noop, fmt.Errorf("local archive: %w", err)
		}
		return store, noop, nil
	case config.BackendGCS:
		client, err := gcsclient.NewClient(ctx)
		if err != nil {
			return nil, noop, fmt.Errorf("gcs client: %w", err)
		}
		store, err := gcs.New(client, gcs.Config{Bucket: cfg.GCSBucket})
		if err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("gcs archive: %w", err)
		}
		return store, store.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

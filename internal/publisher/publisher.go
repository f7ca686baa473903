// Package publisher selects the hand-off publisher that notifies downstream
// consumers of finished reports.
package publisher

import (
	"context"
	"fmt"

	gpubsub "cloud.google.com/go/pubsub"

	"github.com/JakeFAU/competitor-radar/internal/config"
	"github.com/JakeFAU/competitor-radar/internal/publisher/memory"
	"github.com/JakeFAU/competitor-radar/internal/publisher/pubsub"
	"github.com/JakeFAU/competitor-radar/internal/radar"
)

// New builds the configured publisher. It returns a nil publisher when
// hand-off notifications are disabled. The close function is never nil.
func New(ctx context.Context, cfg config.PubSubConfig) (radar.Publisher, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case "", config.BackendNone:
		return nil, noop, nil
	case config.BackendMemory:
		return memory.New(), noop, nil
	case config.BackendPubSub:
		client, err := gpubsub.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			return nil, noop, fmt.Errorf("pubsub client: %w", err)
		}
		pub := pubsub.New(client)
		return pub, pub.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown pubsub backend %q", cfg.Backend)
	}
}

// Package uuid generates report identifiers.
package uuid

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/JakeFAU/competitor-radar/internal/radar"
)

var _ radar.IDGenerator = (*Generator)(nil)

// Generator creates time-ordered UUIDv7 report IDs, so archived reports
// sort by creation time.
type Generator struct{}

// NewUUIDGenerator creates a new Generator.
func NewUUIDGenerator() *Generator {
	return &Generator{}
}

// NewID returns a UUIDv7 string.
func (Generator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate report id: %w", err)
	}
	return id.String(), nil
}

// Valid reports whether s looks like an ID produced by NewID.
func Valid(s string) bool {
	id, err := uuid.Parse(s)
	return err == nil && id.Version() == 7
}

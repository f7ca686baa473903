// Package system provides a real clock implementation.
package system

import (
	"time"

	"github.com/JakeFAU/competitor-radar/internal/radar"
)

var _ radar.Clock = (*Clock)(nil)

// Clock implements radar.Clock using time.Now.
type Clock struct{}

// New creates a new Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time in UTC.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}

package memory

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/JakeFAU/competitor-radar/internal/radar"
)

// ReportStore keeps the most recently produced reports, evicting the least
// recently used once it holds size entries. It is safe for concurrent use.
type ReportStore struct {
	cache *lru.Cache[string, radar.RadarReport]
}

// NewReportStore constructs a ReportStore holding at most size reports.
func NewReportStore(size int) (*ReportStore, error) {
	cache, err := lru.New[string, radar.RadarReport](size)
	if err != nil {
		return nil, fmt.Errorf("create report cache: %w", err)
	}
	return &ReportStore{cache: cache}, nil
}

// Put stores report under its ID.
func (s *ReportStore) Put(report radar.RadarReport) {
	s.cache.Add(report.ID, report)
}

// Get returns the report with id, if it is still cached.
func (s *ReportStore) Get(id string) (radar.RadarReport, bool) {
	return s.cache.Get(id)
}

// Len reports how many reports are cached.
func (s *ReportStore) Len() int {
	return s.cache.Len()
}

package memory

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/competitor-radar/internal/radar"
)

func TestReportStorePutGet(t *testing.T) {
	t.Parallel()

	store, err := NewReportStore(4)
	require.NoError(t, err)

	store.Put(radar.RadarReport{ID: "r1", YourURL: "https://mystore.com"})
	got, ok := store.Get("r1")
	require.True(t, ok)
	require.Equal(t, "https://mystore.com", got.YourURL)

	_, ok = store.Get("nope")
	require.False(t, ok)
}

func TestReportStoreEvictsLeastRecentlyUsed(t *testing.T) {
	t.Parallel()

	store, err := NewReportStore(2)
	require.NoError(t, err)

	store.Put(radar.RadarReport{ID: "r1"})
	store.Put(radar.RadarReport{ID: "r2"})
	_, ok := store.Get("r1") // r2 becomes least recently used
	require.True(t, ok)
	store.Put(radar.RadarReport{ID: "r3"})

	require.Equal(t, 2, store.Len())
	_, ok = store.Get("r2")
	require.False(t, ok)
	_, ok = store.Get("r1")
	require.True(t, ok)
	_, ok = store.Get("r3")
	require.True(t, ok)
}

func TestReportStoreRejectsZeroSize(t *testing.T) {
	t.Parallel()

	_, err := NewReportStore(0)
	require.Error(t, err)
}

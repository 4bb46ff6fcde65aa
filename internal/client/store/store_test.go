package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/tripsync/internal/client/models"
	"github.com/dmitrijs2005/tripsync/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupStore(t *testing.T) *LocalStore {
	t.Helper()

	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewLocalStore(NewSQLiteKV(db), logging.NewDiscardLogger())
}

func TestLocalStore_RoundTrips(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	assert.Nil(t, s.GetMainData(ctx))

	main := &models.MainData{
		Rates:            map[string]float64{"EUR": 0.92},
		PinnedCurrencies: []string{"USD", "EUR"},
	}
	s.SetMainData(ctx, main)
	assert.Equal(t, main, s.GetMainData(ctx))

	prefs := &models.Preferences{ActiveTab: "currency", Locale: "en", Timezone: "Europe/Riga"}
	s.SetPreferences(ctx, prefs)
	assert.Equal(t, prefs, s.GetPreferences(ctx))

	search := &models.SearchData{RecentCountries: []string{"LV"}, SearchHistory: []string{"riga"}}
	s.SetSearchData(ctx, search)
	assert.Equal(t, search, s.GetSearchData(ctx))
}

func TestLocalStore_ItineraryRoundTripKeepsMillis(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	start := models.NewISOTime(time.Date(2025, 6, 1, 10, 30, 45, 123_000_000, time.UTC))
	it := &models.Itinerary{Items: []models.ItineraryItem{models.NewItineraryItem("Riga", start)}}

	s.SetItinerary(ctx, it)
	got := s.GetItinerary(ctx)
	require.NotNil(t, got)
	require.Len(t, got.Items, 1)
	assert.True(t, got.Items[0].StartDate.Equal(start.Time))
}

func TestLocalStore_Update(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	// Update on an empty store starts from the zero value.
	s.UpdateSearchData(ctx, func(d *models.SearchData) {
		d.SearchHistory = append(d.SearchHistory, "tallinn")
	})
	s.UpdateSearchData(ctx, func(d *models.SearchData) {
		d.SearchHistory = append(d.SearchHistory, "helsinki")
	})

	got := s.GetSearchData(ctx)
	require.NotNil(t, got)
	assert.Equal(t, []string{"tallinn", "helsinki"}, got.SearchHistory)
}

func TestLocalStore_TouchUpdatesMetadata(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	require.Nil(t, s.GetMetadata(ctx))

	s.SetPreferences(ctx, &models.Preferences{ActiveTab: "currency"})
	meta := s.GetMetadata(ctx)
	require.NotNil(t, meta)
	assert.Equal(t, models.SchemaVersion, meta.Version)
	assert.NotZero(t, meta.LastModified)
	assert.NotEmpty(t, meta.Checksum)
	assert.Equal(t, s.DeviceID(ctx), meta.DeviceID)

	// A content change must change the fingerprint.
	before := meta.Checksum
	s.SetPreferences(ctx, &models.Preferences{ActiveTab: "timezone"})
	assert.NotEqual(t, before, s.GetMetadata(ctx).Checksum)
}

func TestLocalStore_TouchAtKeepsExplicitStamp(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	s.SetPreferences(ctx, &models.Preferences{ActiveTab: "currency"})

	s.TouchAt(ctx, 5000)
	meta := s.GetMetadata(ctx)
	require.NotNil(t, meta)
	assert.Equal(t, int64(5000), meta.LastModified)
	assert.NotEmpty(t, meta.Checksum)
	assert.Equal(t, s.DeviceID(ctx), meta.DeviceID)

	// A regular write re-stamps to the clock again.
	s.SetPreferences(ctx, &models.Preferences{ActiveTab: "timezone"})
	assert.Greater(t, s.GetMetadata(ctx).LastModified, int64(5000))
}

func TestLocalStore_DeviceIDStable(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	id := s.DeviceID(ctx)
	require.NotEmpty(t, id)
	assert.Equal(t, id, s.DeviceID(ctx))
}

func TestLocalStore_TimezoneCachePrunesExpired(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	now := time.Now()
	s.now = func() time.Time { return now }

	s.SetTimezoneCache(ctx, &models.TimezoneCache{Entries: map[string]models.CacheEntry{
		"Europe/Riga": {Value: []byte(`"+3"`), CachedAt: now.UnixMilli(), ExpiresAt: now.Add(time.Hour).UnixMilli()},
		"Stale/Zone":  {Value: []byte(`"+1"`), CachedAt: 1, ExpiresAt: now.Add(-time.Minute).UnixMilli()},
	}})

	got := s.GetTimezoneCache(ctx)
	require.NotNil(t, got)
	assert.Contains(t, got.Entries, "Europe/Riga")
	assert.NotContains(t, got.Entries, "Stale/Zone")
}

func TestLocalStore_CorruptValueReadsAsNil(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	require.NoError(t, s.kv.Set(ctx, KeyPreferences, []byte(`{broken`)))
	assert.Nil(t, s.GetPreferences(ctx))
}

func TestLocalStore_Clear(t *testing.T) {
	ctx := context.Background()
	s := setupStore(t)

	s.SetPreferences(ctx, &models.Preferences{ActiveTab: "currency"})
	require.NoError(t, s.Clear(ctx))

	assert.Nil(t, s.GetPreferences(ctx))
	assert.Nil(t, s.GetMetadata(ctx))
}

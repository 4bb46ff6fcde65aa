// Package store is the typed persistence layer over the client's durable
// local storage. It exposes getters/setters for the five synchronized data
// domains plus the sync metadata record, owns the device identity, and
// performs legacy-key migration.
//
// Storage failures never escape to callers: reads degrade to nil ("treat as
// empty") and writes degrade to no-ops, both logged. Sync is a best-effort
// layer over a fully functional offline-first local experience, so a broken
// disk must not take the UI down with it.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/tripsync/internal/client/models"
	"github.com/dmitrijs2005/tripsync/internal/client/reconcile"
	"github.com/dmitrijs2005/tripsync/internal/logging"
	"github.com/google/uuid"
)

// Canonical storage keys, one per domain plus metadata and device identity.
const (
	keyPrefix        = "tripsync:"
	KeyMainData      = keyPrefix + "main"
	KeyPreferences   = keyPrefix + "preferences"
	KeyItinerary     = keyPrefix + "itinerary"
	KeySearchData    = keyPrefix + "search"
	KeyTimezoneCache = keyPrefix + "timezone-cache"
	KeyMetadata      = keyPrefix + "metadata"
	KeyDeviceID      = keyPrefix + "device-id"
)

// LocalStore provides typed, non-throwing access to the local replica.
type LocalStore struct {
	kv  KV
	log logging.Logger
	now func() time.Time
}

// NewLocalStore returns a LocalStore over the given key-value backend.
func NewLocalStore(kv KV, log logging.Logger) *LocalStore {
	return &LocalStore{kv: kv, log: log, now: time.Now}
}

func getJSON[T any](s *LocalStore, ctx context.Context, key string) *T {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		s.log.Error(ctx, "local read failed, treating as empty", "key", key, "error", err)
		return nil
	}
	if raw == nil {
		return nil
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		s.log.Error(ctx, "corrupted local value, treating as empty", "key", key, "error", err)
		return nil
	}
	return &value
}

func setJSON[T any](s *LocalStore, ctx context.Context, key string, value *T) {
	if value == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		s.log.Error(ctx, "failed to encode local value", "key", key, "error", err)
		return
	}
	if err := s.kv.Set(ctx, key, raw); err != nil {
		s.log.Error(ctx, "local write failed", "key", key, "error", err)
		return
	}
	s.touch(ctx)
}

// updateJSON shallow-merges via mutate: the stored value (or a fresh default)
// is passed to mutate and written back.
func updateJSON[T any](s *LocalStore, ctx context.Context, key string, mutate func(*T)) {
	value := getJSON[T](s, ctx, key)
	if value == nil {
		value = new(T)
	}
	mutate(value)
	setJSON(s, ctx, key, value)
}

func (s *LocalStore) GetMainData(ctx context.Context) *models.MainData {
	return getJSON[models.MainData](s, ctx, KeyMainData)
}

func (s *LocalStore) SetMainData(ctx context.Context, data *models.MainData) {
	setJSON(s, ctx, KeyMainData, data)
}

func (s *LocalStore) UpdateMainData(ctx context.Context, mutate func(*models.MainData)) {
	updateJSON(s, ctx, KeyMainData, mutate)
}

func (s *LocalStore) GetPreferences(ctx context.Context) *models.Preferences {
	return getJSON[models.Preferences](s, ctx, KeyPreferences)
}

func (s *LocalStore) SetPreferences(ctx context.Context, data *models.Preferences) {
	setJSON(s, ctx, KeyPreferences, data)
}

func (s *LocalStore) UpdatePreferences(ctx context.Context, mutate func(*models.Preferences)) {
	updateJSON(s, ctx, KeyPreferences, mutate)
}

func (s *LocalStore) GetItinerary(ctx context.Context) *models.Itinerary {
	return getJSON[models.Itinerary](s, ctx, KeyItinerary)
}

func (s *LocalStore) SetItinerary(ctx context.Context, data *models.Itinerary) {
	setJSON(s, ctx, KeyItinerary, data)
}

func (s *LocalStore) UpdateItinerary(ctx context.Context, mutate func(*models.Itinerary)) {
	updateJSON(s, ctx, KeyItinerary, mutate)
}

func (s *LocalStore) GetSearchData(ctx context.Context) *models.SearchData {
	return getJSON[models.SearchData](s, ctx, KeySearchData)
}

func (s *LocalStore) SetSearchData(ctx context.Context, data *models.SearchData) {
	setJSON(s, ctx, KeySearchData, data)
}

func (s *LocalStore) UpdateSearchData(ctx context.Context, mutate func(*models.SearchData)) {
	updateJSON(s, ctx, KeySearchData, mutate)
}

// GetTimezoneCache returns the cache with expired entries pruned.
func (s *LocalStore) GetTimezoneCache(ctx context.Context) *models.TimezoneCache {
	cache := getJSON[models.TimezoneCache](s, ctx, KeyTimezoneCache)
	if cache == nil {
		return nil
	}
	now := s.now().UnixMilli()
	for key, entry := range cache.Entries {
		if entry.ExpiresAt > 0 && entry.ExpiresAt <= now {
			delete(cache.Entries, key)
		}
	}
	return cache
}

func (s *LocalStore) SetTimezoneCache(ctx context.Context, data *models.TimezoneCache) {
	setJSON(s, ctx, KeyTimezoneCache, data)
}

func (s *LocalStore) UpdateTimezoneCache(ctx context.Context, mutate func(*models.TimezoneCache)) {
	updateJSON(s, ctx, KeyTimezoneCache, mutate)
}

func (s *LocalStore) GetMetadata(ctx context.Context) *models.Metadata {
	return getJSON[models.Metadata](s, ctx, KeyMetadata)
}

func (s *LocalStore) SetMetadata(ctx context.Context, meta *models.Metadata) {
	raw, err := json.Marshal(meta)
	if err != nil {
		s.log.Error(ctx, "failed to encode metadata", "error", err)
		return
	}
	if err := s.kv.Set(ctx, KeyMetadata, raw); err != nil {
		s.log.Error(ctx, "metadata write failed", "error", err)
	}
}

// touch refreshes the metadata record after a domain write: bumps
// lastModified and recomputes the checksum over the whole local replica.
func (s *LocalStore) touch(ctx context.Context) {
	s.TouchAt(ctx, s.now().UnixMilli())
}

// TouchAt refreshes the metadata record with an explicit lastModified stamp.
// The sync layer calls it after storing a merge result so ingested remote
// data keeps its origin time; re-stamping merged data to the wall clock
// would make this replica look newer than records it merely copied.
func (s *LocalStore) TouchAt(ctx context.Context, lastModified int64) {
	meta := s.GetMetadata(ctx)
	if meta == nil {
		meta = &models.Metadata{Version: models.SchemaVersion}
	}
	meta.LastModified = lastModified
	meta.DeviceID = s.DeviceID(ctx)
	meta.Version = models.SchemaVersion
	meta.Checksum = s.snapshotChecksum(ctx)
	s.SetMetadata(ctx, meta)
}

// snapshotChecksum fingerprints the five domains together. A stable value
// means nothing changed locally since the last sync.
func (s *LocalStore) snapshotChecksum(ctx context.Context) string {
	snapshot := struct {
		Main          *models.MainData      `json:"main"`
		Preferences   *models.Preferences   `json:"preferences"`
		Itinerary     *models.Itinerary     `json:"itinerary"`
		Search        *models.SearchData    `json:"search"`
		TimezoneCache *models.TimezoneCache `json:"timezoneCache"`
	}{
		Main:          getJSON[models.MainData](s, ctx, KeyMainData),
		Preferences:   getJSON[models.Preferences](s, ctx, KeyPreferences),
		Itinerary:     getJSON[models.Itinerary](s, ctx, KeyItinerary),
		Search:        getJSON[models.SearchData](s, ctx, KeySearchData),
		TimezoneCache: getJSON[models.TimezoneCache](s, ctx, KeyTimezoneCache),
	}
	return reconcile.Checksum(snapshot)
}

// DeviceID returns this installation's stable random identifier, generating
// and persisting one on first use.
func (s *LocalStore) DeviceID(ctx context.Context) string {
	raw, err := s.kv.Get(ctx, KeyDeviceID)
	if err == nil && len(raw) > 0 {
		return string(raw)
	}
	if err != nil {
		s.log.Error(ctx, "failed to read device id", "error", err)
	}
	id := uuid.NewString()
	if err := s.kv.Set(ctx, KeyDeviceID, []byte(id)); err != nil {
		s.log.Error(ctx, "failed to persist device id", "error", err)
	}
	return id
}

// Clear removes every stored key, including metadata and the device id.
// Used by the explicit delete-all operation only.
func (s *LocalStore) Clear(ctx context.Context) error {
	return s.kv.Clear(ctx)
}

package store

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/dmitrijs2005/tripsync/internal/client/models"
)

// Previous-generation storage keys. The first app generation ("travelmate")
// kept a flat key per feature; this generation folds them into the five
// domains.
const (
	legacyPrefix             = "travelmate:"
	legacyKeyAppData         = legacyPrefix + "appData"
	legacyKeyPreferences     = legacyPrefix + "preferences"
	legacyKeyItinerary       = legacyPrefix + "itinerary"
	legacyKeyRecentCountries = legacyPrefix + "recentCountries"
	legacyKeySearchHistory   = legacyPrefix + "searchHistory"
	legacyKeyTimezoneCache   = legacyPrefix + "tzCache"
)

// legacyPrefixes are scanned by CleanupLegacyKeys. Anything under them that
// is not a canonical key gets deleted.
var legacyPrefixes = []string{legacyPrefix}

// MigrateLegacyData migrates previous-generation keys into the current data
// domains, deletes the legacy keys, and stamps the metadata with the current
// schema version. Running it on an already-migrated store is a no-op.
//
// Migration is additive: legacy content only fills in domains (or fields)
// that have no current value, so re-installs never clobber fresh data.
func (s *LocalStore) MigrateLegacyData(ctx context.Context) {
	migrated := false

	if raw := s.legacyRead(ctx, legacyKeyAppData); raw != nil {
		if s.GetMainData(ctx) == nil {
			var data models.MainData
			if err := json.Unmarshal(raw, &data); err == nil {
				s.SetMainData(ctx, &data)
			} else {
				s.log.Warn(ctx, "skipping unreadable legacy app data", "error", err)
			}
		}
		migrated = true
	}

	if raw := s.legacyRead(ctx, legacyKeyPreferences); raw != nil {
		if s.GetPreferences(ctx) == nil {
			var data models.Preferences
			if err := json.Unmarshal(raw, &data); err == nil {
				s.SetPreferences(ctx, &data)
			} else {
				s.log.Warn(ctx, "skipping unreadable legacy preferences", "error", err)
			}
		}
		migrated = true
	}

	if raw := s.legacyRead(ctx, legacyKeyItinerary); raw != nil {
		if s.GetItinerary(ctx) == nil {
			var items []models.ItineraryItem
			if err := json.Unmarshal(raw, &items); err == nil {
				s.SetItinerary(ctx, &models.Itinerary{Items: items})
			} else {
				s.log.Warn(ctx, "skipping unreadable legacy itinerary", "error", err)
			}
		}
		migrated = true
	}

	// The old generation stored the two search lists under separate keys.
	var countries, history []string
	if raw := s.legacyRead(ctx, legacyKeyRecentCountries); raw != nil {
		_ = json.Unmarshal(raw, &countries)
		migrated = true
	}
	if raw := s.legacyRead(ctx, legacyKeySearchHistory); raw != nil {
		_ = json.Unmarshal(raw, &history)
		migrated = true
	}
	if (len(countries) > 0 || len(history) > 0) && s.GetSearchData(ctx) == nil {
		s.SetSearchData(ctx, &models.SearchData{RecentCountries: countries, SearchHistory: history})
	}

	if raw := s.legacyRead(ctx, legacyKeyTimezoneCache); raw != nil {
		if s.GetTimezoneCache(ctx) == nil {
			var entries map[string]models.CacheEntry
			if err := json.Unmarshal(raw, &entries); err == nil {
				s.SetTimezoneCache(ctx, &models.TimezoneCache{Entries: entries})
			}
		}
		migrated = true
	}

	if migrated {
		s.CleanupLegacyKeys(ctx)
		s.touch(ctx)
		s.log.Info(ctx, "legacy data migrated", "schemaVersion", models.SchemaVersion)
	}
}

// CleanupLegacyKeys deletes every key under a known legacy prefix that is
// not one of the current canonical keys.
func (s *LocalStore) CleanupLegacyKeys(ctx context.Context) {
	for _, prefix := range legacyPrefixes {
		keys, err := s.kv.Keys(ctx, prefix)
		if err != nil {
			s.log.Error(ctx, "failed to scan legacy keys", "prefix", prefix, "error", err)
			continue
		}
		for _, key := range keys {
			if strings.HasPrefix(key, keyPrefix) {
				continue
			}
			if err := s.kv.Delete(ctx, key); err != nil {
				s.log.Error(ctx, "failed to delete legacy key", "key", key, "error", err)
			}
		}
	}
}

func (s *LocalStore) legacyRead(ctx context.Context, key string) []byte {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		s.log.Error(ctx, "failed to read legacy key", "key", key, "error", err)
		return nil
	}
	return raw
}

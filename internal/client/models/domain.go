// Package models defines the five synchronized data domains of tripsync,
// the per-device record envelope exchanged with the sync backend, and the
// conflict/result types produced by reconciliation.
package models

import "encoding/json"

// Domain identifies one of the five logical categories of user data that are
// synchronized independently. The string values double as the dataType path
// segment of the sync API.
type Domain string

const (
	DomainMain          Domain = "main"
	DomainPreferences   Domain = "preferences"
	DomainItinerary     Domain = "itinerary"
	DomainSearch        Domain = "search"
	DomainTimezoneCache Domain = "timezone-cache"
)

// AllDomains lists every domain in the fixed order sync cycles walk them.
func AllDomains() []Domain {
	return []Domain{DomainMain, DomainPreferences, DomainItinerary, DomainSearch, DomainTimezoneCache}
}

// Valid reports whether d is one of the known domains.
func (d Domain) Valid() bool {
	switch d {
	case DomainMain, DomainPreferences, DomainItinerary, DomainSearch, DomainTimezoneCache:
		return true
	}
	return false
}

// MainData holds exchange rates, pinned currency codes and per-category
// pinned unit ids.
type MainData struct {
	Rates            map[string]float64  `json:"rates,omitempty"`
	PinnedCurrencies []string            `json:"pinnedCurrencies,omitempty"`
	PinnedUnits      map[string][]string `json:"pinnedUnits,omitempty"`
}

// Preferences is a flat bag of UI defaults.
type Preferences struct {
	ActiveTab    string `json:"activeTab,omitempty"`
	NumberSystem string `json:"numberSystem,omitempty"`
	Locale       string `json:"locale,omitempty"`
	Timezone     string `json:"timezone,omitempty"`
}

// SearchData holds the recent-country list and free-text search history.
type SearchData struct {
	RecentCountries []string `json:"recentCountries,omitempty"`
	SearchHistory   []string `json:"searchHistory,omitempty"`
}

// CacheEntry is one cached timezone lookup. ExpiresAt of zero means the
// entry does not expire.
type CacheEntry struct {
	Value     json.RawMessage `json:"value"`
	CachedAt  int64           `json:"cachedAt"`
	ExpiresAt int64           `json:"expiresAt,omitempty"`
}

// TimezoneCache is a keyed blob cache with optional per-key expiry.
type TimezoneCache struct {
	Entries map[string]CacheEntry `json:"entries,omitempty"`
}

// Itinerary is the ordered set of itinerary items. Item identity is the
// stable ID; the merge layer guarantees IDs stay unique.
type Itinerary struct {
	Items []ItineraryItem `json:"items"`
}

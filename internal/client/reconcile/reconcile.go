package reconcile

import (
	"fmt"
	"sort"

	"github.com/dmitrijs2005/tripsync/internal/client/models"
)

// remoteWins reports whether the remote side's metadata is newer. Ties go to
// the local side so that reconciling identical replicas never flips data.
func remoteWins(localMeta, remoteMeta *models.Metadata) bool {
	var l, r int64
	if localMeta != nil {
		l = localMeta.LastModified
	}
	if remoteMeta != nil {
		r = remoteMeta.LastModified
	}
	return r > l
}

// resultMeta builds the metadata attached to a merged value. LastModified is
// the max of both inputs so the result never looks older than its sources,
// and the checksum fingerprints the merged value for no-op detection.
func resultMeta(merged any, localMeta, remoteMeta *models.Metadata) models.Metadata {
	out := models.Metadata{Version: models.SchemaVersion, Checksum: Checksum(merged)}
	if localMeta != nil {
		out.LastModified = localMeta.LastModified
		out.DeviceID = localMeta.DeviceID
	}
	if remoteMeta != nil && remoteMeta.LastModified > out.LastModified {
		out.LastModified = remoteMeta.LastModified
	}
	return out
}

// oneSided resolves the uniform null rule shared by every domain: both nil,
// or exactly one nil. ok is false when both sides are populated and the
// caller must do a real comparison.
func oneSided[T any](local, remote *T, empty func() *T, localMeta, remoteMeta *models.Metadata) (models.ReconciliationResult[*T], bool) {
	var merged *T
	switch {
	case local == nil && remote == nil:
		merged = empty()
	case local == nil:
		merged = remote
	case remote == nil:
		merged = local
	default:
		return models.ReconciliationResult[*T]{}, false
	}
	return models.ReconciliationResult[*T]{
		MergedData: merged,
		Metadata:   resultMeta(merged, localMeta, remoteMeta),
	}, true
}

func finish[T any](merged *T, conflicts []models.Conflict, localMeta, remoteMeta *models.Metadata) models.ReconciliationResult[*T] {
	return models.ReconciliationResult[*T]{
		MergedData:   merged,
		HasConflicts: len(conflicts) > 0,
		Conflicts:    conflicts,
		Metadata:     resultMeta(merged, localMeta, remoteMeta),
	}
}

// ReconcilePreferences merges the scalar preference bag. Preferences carry
// no per-field history, so the whole value from the newer side replaces the
// other (latest-wins), and the overridden side is recorded as a conflict.
func ReconcilePreferences(local, remote *models.Preferences, localMeta, remoteMeta *models.Metadata, strategy models.Strategy) models.ReconciliationResult[*models.Preferences] {
	if r, ok := oneSided(local, remote, func() *models.Preferences { return &models.Preferences{} }, localMeta, remoteMeta); ok {
		return r
	}
	if Equal(local, remote) {
		return finish(local, nil, localMeta, remoteMeta)
	}

	merged := local
	if remoteWins(localMeta, remoteMeta) {
		merged = remote
	}
	conflicts := []models.Conflict{{
		DataType:      "preferences",
		LocalData:     local,
		CloudData:     remote,
		LocalMetadata: localMeta,
		CloudMetadata: remoteMeta,
		Strategy:      strategy,
	}}
	return finish(merged, conflicts, localMeta, remoteMeta)
}

// ReconcileMainData merges rates, pinned currencies and pinned units field
// by field (merge-smart): a side that never set a field does not clobber one
// that did, and two populated but differing fields go to the newer side with
// a conflict recorded.
//
// Known ambiguity inherited from the original policy: a deliberately emptied
// field is indistinguishable from a never-set one and loses to any populated
// value from another device.
func ReconcileMainData(local, remote *models.MainData, localMeta, remoteMeta *models.Metadata, strategy models.Strategy) models.ReconciliationResult[*models.MainData] {
	if r, ok := oneSided(local, remote, func() *models.MainData { return &models.MainData{} }, localMeta, remoteMeta); ok {
		return r
	}
	if Equal(local, remote) {
		return finish(local, nil, localMeta, remoteMeta)
	}

	if strategy == models.StrategyLatestWins {
		merged := local
		if remoteWins(localMeta, remoteMeta) {
			merged = remote
		}
		conflicts := []models.Conflict{{
			DataType: "main", LocalData: local, CloudData: remote,
			LocalMetadata: localMeta, CloudMetadata: remoteMeta, Strategy: strategy,
		}}
		return finish(merged, conflicts, localMeta, remoteMeta)
	}

	preferRemote := remoteWins(localMeta, remoteMeta)
	merged := &models.MainData{}
	var conflicts []models.Conflict

	record := func(field string, localVal, cloudVal any) {
		conflicts = append(conflicts, models.Conflict{
			DataType:      "main." + field,
			LocalData:     localVal,
			CloudData:     cloudVal,
			LocalMetadata: localMeta,
			CloudMetadata: remoteMeta,
			Strategy:      strategy,
		})
	}

	merged.Rates = pickMap(local.Rates, remote.Rates, preferRemote, func() { record("rates", local.Rates, remote.Rates) })
	merged.PinnedCurrencies = pickSlice(local.PinnedCurrencies, remote.PinnedCurrencies, preferRemote, func() { record("pinnedCurrencies", local.PinnedCurrencies, remote.PinnedCurrencies) })
	merged.PinnedUnits = pickMap(local.PinnedUnits, remote.PinnedUnits, preferRemote, func() { record("pinnedUnits", local.PinnedUnits, remote.PinnedUnits) })

	return finish(merged, conflicts, localMeta, remoteMeta)
}

// pickMap applies the merge-smart field rule to a map-typed field.
func pickMap[M ~map[K]V, K comparable, V any](local, remote M, preferRemote bool, onConflict func()) M {
	switch {
	case len(local) == 0:
		return remote
	case len(remote) == 0:
		return local
	}
	if Equal(local, remote) {
		return local
	}
	onConflict()
	if preferRemote {
		return remote
	}
	return local
}

// pickSlice applies the merge-smart field rule to a slice-typed field.
func pickSlice[S ~[]E, E any](local, remote S, preferRemote bool, onConflict func()) S {
	switch {
	case len(local) == 0:
		return remote
	case len(remote) == 0:
		return local
	}
	if Equal(local, remote) {
		return local
	}
	onConflict()
	if preferRemote {
		return remote
	}
	return local
}

// ReconcileItinerary merges itinerary item lists by ID. Items present on one
// side only are kept as-is; items present on both sides resolve to the more
// recently updated full item, never a field-level splice, so a merged item is
// always a state one device actually saw. Equal-timestamp differing items
// tie-break on content checksum to stay deterministic on every device.
func ReconcileItinerary(local, remote *models.Itinerary, localMeta, remoteMeta *models.Metadata, strategy models.Strategy) models.ReconciliationResult[*models.Itinerary] {
	if r, ok := oneSided(local, remote, func() *models.Itinerary { return &models.Itinerary{} }, localMeta, remoteMeta); ok {
		return r
	}
	if Equal(local, remote) {
		return finish(local, nil, localMeta, remoteMeta)
	}

	if strategy == models.StrategyLatestWins {
		merged := local
		if remoteWins(localMeta, remoteMeta) {
			merged = remote
		}
		conflicts := []models.Conflict{{
			DataType: "itinerary", LocalData: local, CloudData: remote,
			LocalMetadata: localMeta, CloudMetadata: remoteMeta, Strategy: strategy,
		}}
		return finish(merged, conflicts, localMeta, remoteMeta)
	}

	byID := make(map[string]models.ItineraryItem, len(local.Items)+len(remote.Items))
	order := make([]string, 0, len(local.Items)+len(remote.Items))
	var conflicts []models.Conflict

	for _, item := range local.Items {
		if _, seen := byID[item.ID]; !seen {
			order = append(order, item.ID)
		}
		byID[item.ID] = item
	}
	for _, item := range remote.Items {
		existing, seen := byID[item.ID]
		if !seen {
			order = append(order, item.ID)
			byID[item.ID] = item
			continue
		}
		winner, conflicted := pickItem(existing, item)
		if conflicted {
			conflicts = append(conflicts, models.Conflict{
				DataType:      fmt.Sprintf("itinerary.%s", item.ID),
				LocalData:     existing,
				CloudData:     item,
				LocalMetadata: localMeta,
				CloudMetadata: remoteMeta,
				Strategy:      strategy,
			})
		}
		byID[item.ID] = winner
	}

	merged := &models.Itinerary{Items: make([]models.ItineraryItem, 0, len(order))}
	for _, id := range order {
		merged.Items = append(merged.Items, byID[id])
	}
	sortItems(merged.Items)

	return finish(merged, conflicts, localMeta, remoteMeta)
}

// pickItem resolves two versions of the same itinerary item. conflicted is
// false when the versions are identical.
func pickItem(local, remote models.ItineraryItem) (models.ItineraryItem, bool) {
	if Equal(local, remote) {
		return local, false
	}
	if remote.UpdatedAt.After(local.UpdatedAt.Time) {
		return remote, true
	}
	if local.UpdatedAt.After(remote.UpdatedAt.Time) {
		return local, true
	}
	// Same updatedAt but different content: deterministic tie-break.
	if Checksum(remote) > Checksum(local) {
		return remote, true
	}
	return local, true
}

// sortItems orders merged items chronologically, with ID as the final
// tie-break so merged output is identical on every device.
func sortItems(items []models.ItineraryItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.StartDate.Equal(b.StartDate.Time) {
			return a.StartDate.Before(b.StartDate.Time)
		}
		if a.StartTime != b.StartTime {
			return a.StartTime < b.StartTime
		}
		return a.ID < b.ID
	})
}

// ReconcileSearchData unions recent countries and search history,
// de-duplicating by value. The newer side's ordering leads, so the most
// recent activity stays on top. Unions keep both sides' data and therefore
// record no conflicts.
func ReconcileSearchData(local, remote *models.SearchData, localMeta, remoteMeta *models.Metadata, strategy models.Strategy) models.ReconciliationResult[*models.SearchData] {
	if r, ok := oneSided(local, remote, func() *models.SearchData { return &models.SearchData{} }, localMeta, remoteMeta); ok {
		return r
	}
	if Equal(local, remote) {
		return finish(local, nil, localMeta, remoteMeta)
	}

	if strategy == models.StrategyLatestWins {
		merged := local
		if remoteWins(localMeta, remoteMeta) {
			merged = remote
		}
		conflicts := []models.Conflict{{
			DataType: "search", LocalData: local, CloudData: remote,
			LocalMetadata: localMeta, CloudMetadata: remoteMeta, Strategy: strategy,
		}}
		return finish(merged, conflicts, localMeta, remoteMeta)
	}

	first, second := local, remote
	if remoteWins(localMeta, remoteMeta) {
		first, second = remote, local
	}
	merged := &models.SearchData{
		RecentCountries: unionStrings(first.RecentCountries, second.RecentCountries),
		SearchHistory:   unionStrings(first.SearchHistory, second.SearchHistory),
	}
	return finish(merged, nil, localMeta, remoteMeta)
}

// unionStrings appends entries of b not already present in a, keeping a's
// order. Duplicates inside either input are dropped too.
func unionStrings(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, lst := range [][]string{a, b} {
		for _, s := range lst {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// ReconcileTimezoneCache unions cache entries by key. When both sides hold
// the same key, the later write (CachedAt) wins; entries differing under the
// same key are recorded as conflicts since one side's value is discarded.
func ReconcileTimezoneCache(local, remote *models.TimezoneCache, localMeta, remoteMeta *models.Metadata, strategy models.Strategy) models.ReconciliationResult[*models.TimezoneCache] {
	if r, ok := oneSided(local, remote, func() *models.TimezoneCache { return &models.TimezoneCache{} }, localMeta, remoteMeta); ok {
		return r
	}
	if Equal(local, remote) {
		return finish(local, nil, localMeta, remoteMeta)
	}

	if strategy == models.StrategyLatestWins {
		merged := local
		if remoteWins(localMeta, remoteMeta) {
			merged = remote
		}
		conflicts := []models.Conflict{{
			DataType: "timezone-cache", LocalData: local, CloudData: remote,
			LocalMetadata: localMeta, CloudMetadata: remoteMeta, Strategy: strategy,
		}}
		return finish(merged, conflicts, localMeta, remoteMeta)
	}

	merged := &models.TimezoneCache{Entries: make(map[string]models.CacheEntry, len(local.Entries)+len(remote.Entries))}
	var conflicts []models.Conflict

	for key, entry := range local.Entries {
		merged.Entries[key] = entry
	}
	for key, entry := range remote.Entries {
		existing, ok := merged.Entries[key]
		if !ok {
			merged.Entries[key] = entry
			continue
		}
		if Equal(existing, entry) {
			continue
		}
		winner := existing
		if entry.CachedAt > existing.CachedAt {
			winner = entry
		} else if entry.CachedAt == existing.CachedAt && Checksum(entry) > Checksum(existing) {
			winner = entry
		}
		conflicts = append(conflicts, models.Conflict{
			DataType:      fmt.Sprintf("timezone-cache.%s", key),
			LocalData:     existing,
			CloudData:     entry,
			LocalMetadata: localMeta,
			CloudMetadata: remoteMeta,
			Strategy:      strategy,
		})
		merged.Entries[key] = winner
	}

	return finish(merged, conflicts, localMeta, remoteMeta)
}

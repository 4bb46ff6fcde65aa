package reconcile

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/dmitrijs2005/tripsync/internal/client/models"
)

// DecodeRecords turns a gateway envelope into typed device records. A legacy
// blob (pre-multi-device data) becomes a record with an empty device id and
// a zero lastUpdated, so it never outranks a real device record in
// latest-wins folds.
func DecodeRecords[T any](env *models.Envelope) ([]models.DeviceRecord[*T], error) {
	if env.Empty() {
		return nil, nil
	}

	records := make([]models.DeviceRecord[*T], 0, len(env.Devices)+1)

	if len(env.Legacy) > 0 {
		var data T
		if err := json.Unmarshal(env.Legacy, &data); err != nil {
			return nil, fmt.Errorf("failed to decode legacy payload: %w", err)
		}
		records = append(records, models.DeviceRecord[*T]{Data: &data})
	}

	for _, raw := range env.Devices {
		if len(raw.Data) == 0 {
			continue
		}
		var data T
		if err := json.Unmarshal(raw.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to decode record from device %s: %w", raw.DeviceID, err)
		}
		records = append(records, models.DeviceRecord[*T]{
			DeviceID:    raw.DeviceID,
			Data:        &data,
			LastUpdated: raw.LastUpdated,
			Version:     raw.Version,
		})
	}

	return records, nil
}

// sortRecords orders device records oldest first, tying on device id, so a
// fold visits them in one canonical order regardless of how the backend
// listed them.
func sortRecords[T any](records []models.DeviceRecord[T]) []models.DeviceRecord[T] {
	sorted := make([]models.DeviceRecord[T], len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].LastUpdated != sorted[j].LastUpdated {
			return sorted[i].LastUpdated < sorted[j].LastUpdated
		}
		return sorted[i].DeviceID < sorted[j].DeviceID
	})
	return sorted
}

func recordMeta[T any](rec models.DeviceRecord[T]) *models.Metadata {
	return &models.Metadata{LastModified: rec.LastUpdated, DeviceID: rec.DeviceID, Version: rec.Version}
}

// foldPairwise collapses device records into one logical value by running
// the domain's two-sided merge over the canonically sorted records.
func foldPairwise[T any](records []models.DeviceRecord[*T],
	merge func(acc, next *T, accMeta, nextMeta *models.Metadata) models.ReconciliationResult[*T],
) (*T, *models.Metadata) {
	if len(records) == 0 {
		return nil, nil
	}
	sorted := sortRecords(records)

	acc := sorted[0].Data
	accMeta := recordMeta(sorted[0])
	for _, rec := range sorted[1:] {
		res := merge(acc, rec.Data, accMeta, recordMeta(rec))
		acc = res.MergedData
		m := res.Metadata
		accMeta = &m
	}
	return acc, accMeta
}

// FoldMainData collapses per-device MainData records with merge-smart.
func FoldMainData(records []models.DeviceRecord[*models.MainData]) (*models.MainData, *models.Metadata) {
	return foldPairwise(records, func(acc, next *models.MainData, accMeta, nextMeta *models.Metadata) models.ReconciliationResult[*models.MainData] {
		return ReconcileMainData(acc, next, accMeta, nextMeta, models.StrategyMergeSmart)
	})
}

// FoldPreferences picks the single most recently updated device record
// (latest-wins).
func FoldPreferences(records []models.DeviceRecord[*models.Preferences]) (*models.Preferences, *models.Metadata) {
	if len(records) == 0 {
		return nil, nil
	}
	sorted := sortRecords(records)
	latest := sorted[len(sorted)-1]
	return latest.Data, recordMeta(latest)
}

// FoldItinerary collapses per-device itineraries with merge-by-id.
func FoldItinerary(records []models.DeviceRecord[*models.Itinerary]) (*models.Itinerary, *models.Metadata) {
	return foldPairwise(records, func(acc, next *models.Itinerary, accMeta, nextMeta *models.Metadata) models.ReconciliationResult[*models.Itinerary] {
		return ReconcileItinerary(acc, next, accMeta, nextMeta, models.StrategyMergeByID)
	})
}

// FoldSearchData collapses per-device search data with merge-union.
func FoldSearchData(records []models.DeviceRecord[*models.SearchData]) (*models.SearchData, *models.Metadata) {
	return foldPairwise(records, func(acc, next *models.SearchData, accMeta, nextMeta *models.Metadata) models.ReconciliationResult[*models.SearchData] {
		return ReconcileSearchData(acc, next, accMeta, nextMeta, models.StrategyMergeUnion)
	})
}

// FoldTimezoneCache collapses per-device cache records with merge-union.
func FoldTimezoneCache(records []models.DeviceRecord[*models.TimezoneCache]) (*models.TimezoneCache, *models.Metadata) {
	return foldPairwise(records, func(acc, next *models.TimezoneCache, accMeta, nextMeta *models.Metadata) models.ReconciliationResult[*models.TimezoneCache] {
		return ReconcileTimezoneCache(acc, next, accMeta, nextMeta, models.StrategyMergeUnion)
	})
}

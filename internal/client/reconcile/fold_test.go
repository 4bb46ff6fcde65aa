package reconcile

import (
	"encoding/json"
	"testing"

	"github.com/dmitrijs2005/tripsync/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec[T any](deviceID string, lastUpdated int64, data *T) models.DeviceRecord[*T] {
	return models.DeviceRecord[*T]{DeviceID: deviceID, Data: data, LastUpdated: lastUpdated, Version: models.SchemaVersion}
}

func TestDecodeRecords(t *testing.T) {
	env := &models.Envelope{
		Devices: []models.RawDeviceRecord{
			{DeviceID: "d1", Data: json.RawMessage(`{"activeTab":"currency"}`), LastUpdated: 100, Version: "2.0"},
		},
		Legacy: json.RawMessage(`{"activeTab":"timezone"}`),
	}

	records, err := DecodeRecords[models.Preferences](env)
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Legacy blob becomes an anonymous record that never outranks real ones.
	assert.Equal(t, "", records[0].DeviceID)
	assert.Equal(t, int64(0), records[0].LastUpdated)
	assert.Equal(t, "timezone", records[0].Data.ActiveTab)
	assert.Equal(t, "d1", records[1].DeviceID)
}

func TestDecodeRecords_EmptyEnvelope(t *testing.T) {
	records, err := DecodeRecords[models.Preferences](&models.Envelope{})
	require.NoError(t, err)
	assert.Nil(t, records)
}

func TestDecodeRecords_BadPayload(t *testing.T) {
	env := &models.Envelope{
		Devices: []models.RawDeviceRecord{
			{DeviceID: "d1", Data: json.RawMessage(`{broken`)},
		},
	}
	_, err := DecodeRecords[models.Preferences](env)
	require.Error(t, err)
}

func TestFoldPreferences_LatestRecordWins(t *testing.T) {
	records := []models.DeviceRecord[*models.Preferences]{
		rec("d1", 100, &models.Preferences{ActiveTab: "currency"}),
		rec("d2", 300, &models.Preferences{ActiveTab: "timezone"}),
		rec("", 0, &models.Preferences{ActiveTab: "legacy"}),
	}

	data, meta := FoldPreferences(records)
	require.NotNil(t, data)
	assert.Equal(t, "timezone", data.ActiveTab)
	assert.Equal(t, "d2", meta.DeviceID)
	assert.Equal(t, int64(300), meta.LastModified)
}

func TestFoldSearchData_OrderIndependent(t *testing.T) {
	a := rec("d1", 100, &models.SearchData{SearchHistory: []string{"x", "y"}})
	b := rec("d2", 200, &models.SearchData{SearchHistory: []string{"y", "z"}})
	c := rec("d3", 300, &models.SearchData{SearchHistory: []string{"w"}})

	perms := [][]models.DeviceRecord[*models.SearchData]{
		{a, b, c}, {c, b, a}, {b, a, c}, {c, a, b},
	}

	first, _ := FoldSearchData(perms[0])
	for _, p := range perms[1:] {
		got, _ := FoldSearchData(p)
		assert.Equal(t, first, got)
	}
}

func TestFoldMainData_OrderIndependent(t *testing.T) {
	a := rec("d1", 100, &models.MainData{Rates: map[string]float64{"EUR": 0.9}})
	b := rec("d2", 200, &models.MainData{PinnedCurrencies: []string{"USD"}})

	one, _ := FoldMainData([]models.DeviceRecord[*models.MainData]{a, b})
	two, _ := FoldMainData([]models.DeviceRecord[*models.MainData]{b, a})

	assert.Equal(t, one, two)
	assert.Equal(t, map[string]float64{"EUR": 0.9}, one.Rates)
	assert.Equal(t, []string{"USD"}, one.PinnedCurrencies)
}

func TestFold_Empty(t *testing.T) {
	data, meta := FoldSearchData(nil)
	assert.Nil(t, data)
	assert.Nil(t, meta)
}

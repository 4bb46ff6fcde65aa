package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tripsync/internal/server/models"
	"github.com/dmitrijs2005/tripsync/internal/server/repositories/records"
)

// schemaVersion is stamped into every record the server writes.
const schemaVersion = "2.0"

// validDataTypes is the closed set of domains the sync API accepts.
var validDataTypes = map[string]bool{
	"main":           true,
	"preferences":    true,
	"itinerary":      true,
	"search":         true,
	"timezone-cache": true,
}

// DeviceRecord is one device's payload for a data type as served to clients.
type DeviceRecord struct {
	DeviceID    string          `json:"deviceId"`
	Data        json.RawMessage `json:"data"`
	LastUpdated int64           `json:"lastUpdated"`
	Version     string          `json:"version"`
}

// Envelope is everything the server holds for one (user, data type) pair:
// the per-device records plus, for accounts written before multi-device
// support, a single legacy blob.
type Envelope struct {
	Devices []DeviceRecord  `json:"devices,omitempty"`
	Legacy  json.RawMessage `json:"legacy,omitempty"`
}

// SyncService stores and serves opaque domain payloads. Ordering is
// server-authoritative: lastUpdated is stamped at write time so device
// clock skew cannot reorder writes.
type SyncService struct {
	records records.Repository
	now     func() time.Time
}

func NewSyncService(repo records.Repository) *SyncService {
	return &SyncService{records: repo, now: time.Now}
}

// ValidDataType reports whether dataType is one of the sync domains.
func ValidDataType(dataType string) bool {
	return validDataTypes[dataType]
}

// Save upserts one device's payload for a data type.
func (s *SyncService) Save(ctx context.Context, userID, deviceID, dataType string, payload json.RawMessage) error {
	if !ValidDataType(dataType) {
		return fmt.Errorf("unknown data type: %s", dataType)
	}
	if !json.Valid(payload) {
		return fmt.Errorf("payload is not valid JSON")
	}

	return s.records.Upsert(ctx, &models.SyncRecord{
		UserID:      userID,
		DeviceID:    deviceID,
		DataType:    dataType,
		Payload:     payload,
		LastUpdated: s.now().UnixMilli(),
		Version:     schemaVersion,
	})
}

// Get returns the envelope for one data type. Rows with an empty device ID
// are served as the legacy blob.
func (s *SyncService) Get(ctx context.Context, userID, dataType string) (*Envelope, error) {
	if !ValidDataType(dataType) {
		return nil, fmt.Errorf("unknown data type: %s", dataType)
	}

	recs, err := s.records.GetByType(ctx, userID, dataType)
	if err != nil {
		return nil, err
	}

	return buildEnvelope(recs), nil
}

// GetAll returns every data type's envelope in one map. Data types with no
// rows are present with an empty envelope so clients can distinguish "empty
// account" from "request failed".
func (s *SyncService) GetAll(ctx context.Context, userID string) (map[string]*Envelope, error) {
	recs, err := s.records.GetAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	byType := make(map[string][]models.SyncRecord)
	for _, rec := range recs {
		byType[rec.DataType] = append(byType[rec.DataType], rec)
	}

	result := make(map[string]*Envelope, len(validDataTypes))
	for dataType := range validDataTypes {
		result[dataType] = buildEnvelope(byType[dataType])
	}
	return result, nil
}

// Delete removes one device's record for a data type.
func (s *SyncService) Delete(ctx context.Context, userID, deviceID, dataType string) error {
	if !ValidDataType(dataType) {
		return fmt.Errorf("unknown data type: %s", dataType)
	}
	return s.records.Delete(ctx, userID, deviceID, dataType)
}

// DeleteAll removes every record the user has, across all devices and
// data types.
func (s *SyncService) DeleteAll(ctx context.Context, userID string) error {
	return s.records.DeleteAll(ctx, userID)
}

func buildEnvelope(recs []models.SyncRecord) *Envelope {
	env := &Envelope{}
	for _, rec := range recs {
		if rec.DeviceID == "" {
			env.Legacy = rec.Payload
			continue
		}
		env.Devices = append(env.Devices, DeviceRecord{
			DeviceID:    rec.DeviceID,
			Data:        rec.Payload,
			LastUpdated: rec.LastUpdated,
			Version:     rec.Version,
		})
	}
	return env
}

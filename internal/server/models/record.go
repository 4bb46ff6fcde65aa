package models

import "encoding/json"

// SyncRecord is one device's payload for one data type. The server treats
// Payload as an opaque JSON document; merging happens on the clients.
//
// DeviceID is empty for rows written before multi-device support. Such rows
// are served to clients as the legacy blob rather than a device record.
type SyncRecord struct {
	ID          string
	UserID      string
	DeviceID    string
	DataType    string
	Payload     json.RawMessage
	LastUpdated int64 // epoch millis, stamped by the server on write
	Version     string
}

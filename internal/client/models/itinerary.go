package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// isoFormat is the wire format for itinerary timestamps: ISO-8601 with
// millisecond precision, always UTC. The round trip through storage must be
// lossless to the millisecond.
const isoFormat = "2006-01-02T15:04:05.000Z07:00"

// ISOTime is a time.Time that marshals to an ISO-8601 string with
// millisecond precision.
type ISOTime struct {
	time.Time
}

// NewISOTime truncates t to millisecond precision in UTC, matching what a
// serialize/deserialize cycle produces.
func NewISOTime(t time.Time) ISOTime {
	return ISOTime{t.UTC().Truncate(time.Millisecond)}
}

func (t ISOTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(isoFormat) + `"`), nil
}

func (t *ISOTime) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("invalid time literal: %s", s)
	}
	parsed, err := time.Parse(time.RFC3339, s[1:len(s)-1])
	if err != nil {
		return fmt.Errorf("failed to parse time %s: %w", s, err)
	}
	t.Time = parsed.UTC()
	return nil
}

// ItineraryItem is one entry of a user's trip plan. ID is stable across
// devices and is the merge identity.
type ItineraryItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	StartDate   ISOTime  `json:"startDate"`
	EndDate     *ISOTime `json:"endDate,omitempty"`
	StartTime   string   `json:"startTime"`
	EndTime     string   `json:"endTime,omitempty"`
	Location    string   `json:"location,omitempty"`
	Color       string   `json:"color"`
	Category    string   `json:"category,omitempty"`
	IsAllDay    bool     `json:"isAllDay,omitempty"`
	Notes       string   `json:"notes,omitempty"`
	CreatedAt   ISOTime  `json:"createdAt"`
	UpdatedAt   ISOTime  `json:"updatedAt"`
}

// NewItineraryItem creates an entry with a fresh ID and creation timestamps.
func NewItineraryItem(title string, startDate ISOTime) ItineraryItem {
	now := NewISOTime(time.Now())
	return ItineraryItem{
		ID:        uuid.NewString(),
		Title:     title,
		StartDate: startDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

package models

import "time"

// NATS subjects
const (
	SubjectEventsSnapshot     = "events.snapshot"
	SubjectSeatsBooked        = "events.seats_booked"
	SubjectNotificationNearby = "notification.nearby"
)

// SnapshotMessage is the full-snapshot feed payload. The feed always
// delivers the complete collection, never a diff.
type SnapshotMessage struct {
	Events      []Event   `json:"events"`
	PublishedAt time.Time `json:"published_at"`
}

// SeatsBookedMessage asks the authoritative store to adjust booked seats.
type SeatsBookedMessage struct {
	EventID   string    `json:"event_id"`
	Delta     int       `json:"delta"`
	Timestamp time.Time `json:"timestamp"`
}

// NearbyNotification is a proximity notification intent.
type NearbyNotification struct {
	Event          Event     `json:"event"`
	DistanceMeters float64   `json:"distance_meters"`
	DistanceText   string    `json:"distance_text"`
	Timestamp      time.Time `json:"timestamp"`
}

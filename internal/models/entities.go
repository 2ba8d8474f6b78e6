package models

import (
	"time"
)

// Category is the closed set of event categories.
type Category string

const (
	CategoryTheater    Category = "theater"
	CategoryCinema     Category = "cinema"
	CategoryConcert    Category = "concert"
	CategorySports     Category = "sports"
	CategoryExhibition Category = "exhibition"
	CategoryFestival   Category = "festival"
)

// AllCategories lists every valid category.
var AllCategories = []Category{
	CategoryTheater,
	CategoryCinema,
	CategoryConcert,
	CategorySports,
	CategoryExhibition,
	CategoryFestival,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range AllCategories {
		if c == known {
			return true
		}
	}
	return false
}

// LatLng is a WGS-84 coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Event represents an event in the system. Events are immutable values:
// the feed replaces the whole collection, it never patches fields.
type Event struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	StartTime   int64    `json:"start_time"` // epoch milliseconds
	Price       float64  `json:"price"`
	Venue       string   `json:"venue"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Capacity    int      `json:"capacity"`
	BookedSeats int      `json:"booked_seats"`
	ImageURL    string   `json:"image_url"`
}

// AvailableSeats returns the number of seats still open.
func (e Event) AvailableSeats() int {
	return e.Capacity - e.BookedSeats
}

// StartsAt returns the scheduled start as a time.Time in UTC.
func (e Event) StartsAt() time.Time {
	return time.UnixMilli(e.StartTime).UTC()
}

// Location returns the event's coordinates.
func (e Event) Location() LatLng {
	return LatLng{Lat: e.Latitude, Lng: e.Longitude}
}

// EventDistance pairs an event with its distance from the session location.
type EventDistance struct {
	Event
	DistanceMeters float64 `json:"distance_meters"`
}

// Reservation represents a confirmed seat reservation. Immutable once
// created; one reservation corresponds to exactly one seat decrement.
type Reservation struct {
	ID        string    `json:"id" db:"id"`
	EventID   string    `json:"event_id" db:"event_id"`
	UserID    string    `json:"user_id" db:"user_id"`
	UserName  string    `json:"user_name" db:"user_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

package models

// UpdateCriteriaRequest replaces the session filter criteria.
type UpdateCriteriaRequest struct {
	Categories []Category `json:"categories"`
	Query      string     `json:"query"`
}

// LocationUpdateRequest carries a resolved location, or clears it when
// both coordinates are absent (resolution failure is not an error).
type LocationUpdateRequest struct {
	Lat *float64 `json:"lat"`
	Lng *float64 `json:"lng"`
}

// SnapshotRequest is a full replacement of the event collection.
type SnapshotRequest struct {
	Events []Event `json:"events" binding:"required"`
}

// NearYouResponse is the "Near You" view together with its status. An
// empty list always comes with an explanation, never bare.
type NearYouResponse struct {
	Status string          `json:"status"`
	Events []EventDistance `json:"events"`
}

// CalendarMonthResponse lists the days of a month that have at least one
// event passing the session filter.
type CalendarMonthResponse struct {
	Month string `json:"month"`
	Days  []int  `json:"days"`
}

// CalendarDayResponse lists the events on a given day.
type CalendarDayResponse struct {
	Date   string  `json:"date"`
	Events []Event `json:"events"`
}

// CreateReservationRequest books one seat for a user.
type CreateReservationRequest struct {
	EventID  string `json:"event_id" binding:"required"`
	UserID   string `json:"user_id" binding:"required"`
	UserName string `json:"user_name"`
}

// SetNotificationsEnabledRequest toggles proximity notifications.
type SetNotificationsEnabledRequest struct {
	Enabled *bool `json:"enabled"`
}

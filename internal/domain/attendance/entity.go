package attendance

import (
	"time"
)

type Kind string

const (
	KindCheckIn  Kind = "CHECK_IN"
	KindCheckOut Kind = "CHECK_OUT"
)

var KindValues = []string{
	string(KindCheckIn),
	string(KindCheckOut),
}

// Event is an accepted check-in or check-out. Events are only written after the geofence
// accepted them and are never updated.
type Event struct {
	ID         string
	EmployeeID string
	LocationID string
	Kind       Kind
	Latitude   float64
	Longitude  float64
	DistanceKm float64
	OccurredAt time.Time
	CreatedAt  time.Time
}

// GeofenceResult is the outcome of comparing a reported position with a location's radius.
type GeofenceResult struct {
	Accepted   bool    `json:"accepted"`
	DistanceKm float64 `json:"distance_km"`
	RadiusKm   float64 `json:"radius_km"`
	Message    string  `json:"message"`
}

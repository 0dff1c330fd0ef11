package events

import (
	"context"
	"time"
)

const (
	TypeShiftCreated       = "shift.created"
	TypeShiftUpdated       = "shift.updated"
	TypeShiftCancelled     = "shift.cancelled"
	TypeAttendanceRecorded = "attendance.recorded"
)

// Event is the envelope written to the broker. Type doubles as the routing key.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// Publisher delivers domain events after the state change they describe has been committed.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

func (NopPublisher) Close() error { return nil }

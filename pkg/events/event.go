package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "SESSION_STARTED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic Event implementation used across the system.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Event type codes.
const (
	TypeSessionStarted = "SESSION_STARTED"
	TypeSessionEnded   = "SESSION_ENDED"
	TypeLeadCaptured   = "LEAD_CAPTURED"
)

// NewSessionStarted announces a new relay session on the bus.
func NewSessionStarted(sessionID string) Event {
	return BaseEvent{
		Type: TypeSessionStarted,
		Data: map[string]interface{}{
			"session_id": sessionID,
		},
		OccurredAt: time.Now(),
	}
}

// NewSessionEnded announces a relay session teardown. Reason is "disconnect"
// for normal client hangups, otherwise a short error description.
func NewSessionEnded(sessionID, reason string) Event {
	return BaseEvent{
		Type: TypeSessionEnded,
		Data: map[string]interface{}{
			"session_id": sessionID,
			"reason":     reason,
		},
		OccurredAt: time.Now(),
	}
}

// NewLeadCaptured announces a captured sales lead.
func NewLeadCaptured(leadID, sessionID, email string) Event {
	return BaseEvent{
		Type: TypeLeadCaptured,
		Data: map[string]interface{}{
			"lead_id":    leadID,
			"session_id": sessionID,
			"email":      email,
		},
		OccurredAt: time.Now(),
	}
}

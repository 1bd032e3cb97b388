package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "RESEARCH_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used across services.
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

// Event type codes published by this service.
const (
	TypeResearchCompleted = "research.completed"
)

// NewResearchCompleted signals that a research run was persisted and is
// ready for consumers (cache warmers, downstream notifiers).
func NewResearchCompleted(researchId, userId, query string) BaseEvent {
	return BaseEvent{
		Type: TypeResearchCompleted,
		Data: map[string]interface{}{
			"research_id": researchId,
			"user_id":     userId,
			"query":       query,
		},
		OccurredAt: time.Now(),
	}
}

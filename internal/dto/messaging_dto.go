package dto

import "github.com/google/uuid"

// PublishResearchCompletedMessage is the in-process bus payload emitted
// after a research run is persisted.
type PublishResearchCompletedMessage struct {
	ResearchId uuid.UUID `json:"research_id"`
	UserId     uuid.UUID `json:"user_id"`
	Query      string    `json:"query"`
}

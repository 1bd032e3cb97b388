package dto

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessageDTO is one prior conversation turn supplied by the client.
type ChatMessageDTO struct {
	Role    string `json:"role" validate:"required,oneof=system human ai tool"`
	Content string `json:"content" validate:"required"`
}

type ChatRequest struct {
	Query   string           `json:"query" validate:"required,max=4000"`
	History []ChatMessageDTO `json:"history,omitempty" validate:"max=50,dive"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
}

type ResearchRequest struct {
	Query string `json:"query" validate:"required,max=2000"`
}

type ResearchChunkDTO struct {
	Text        string  `json:"text"`
	SourceTitle string  `json:"source_title"`
	SourceType  string  `json:"source_type"`
	Score       float64 `json:"score"`
	SourceRef   string  `json:"source_ref,omitempty"`
}

type ResearchPaperDTO struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	PublishedDate string `json:"published_date"`
	Summary       string `json:"summary"`
}

type ResearchResultResponse struct {
	Id               uuid.UUID          `json:"id"`
	Query            string             `json:"query"`
	ResearchQueries  []string           `json:"research_queries"`
	EmbeddingQueries []string           `json:"embedding_queries"`
	TranscriptChunks []ResearchChunkDTO `json:"transcript_chunks"`
	TextbookChunks   []ResearchChunkDTO `json:"textbook_chunks"`
	Papers           []ResearchPaperDTO `json:"papers"`
	PerChunkAnswers  []string           `json:"per_chunk_answers"`
	FinalAnswer      *string            `json:"final_answer,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
}

// ResearchHistoryItem is the list view: no evidence payload, just the
// question and whether a synthesis exists.
type ResearchHistoryItem struct {
	Id             uuid.UUID `json:"id"`
	Query          string    `json:"query"`
	HasFinalAnswer bool      `json:"has_final_answer"`
	CreatedAt      time.Time `json:"created_at"`
}

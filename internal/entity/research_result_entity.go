// FILE: internal/entity/research_result_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"

	"ai-fitness-be/pkg/papersearch"
	"ai-fitness-be/pkg/rag/evidence"
)

// ResearchResult is one persisted research run: the question, the sub-query
// plan, the evidence it was answered from, and the model's structured
// answers. FinalAnswer is nil when the model emitted no synthesis block.
type ResearchResult struct {
	Id               uuid.UUID
	UserId           uuid.UUID
	Query            string
	ResearchQueries  []string
	EmbeddingQueries []string
	TranscriptChunks []evidence.Chunk
	TextbookChunks   []evidence.Chunk
	Papers           []papersearch.Paper
	PerChunkAnswers  []string
	FinalAnswer      *string
	CreatedAt        time.Time
}

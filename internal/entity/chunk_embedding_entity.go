// FILE: internal/entity/chunk_embedding_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

// ChunkEmbedding is one embedded passage of the knowledge corpus. SourceType
// selects the collection ("transcript" or "textbook").
type ChunkEmbedding struct {
	Id             uuid.UUID
	Document       string
	EmbeddingValue []float32
	SourceType     string
	SourceTitle    string
	SourceRef      string
	ChunkIndex     int
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

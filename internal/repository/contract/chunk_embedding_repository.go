package contract

import (
	"context"

	"ai-fitness-be/internal/entity"
)

// ScoredChunkEmbedding wraps ChunkEmbedding with its similarity score
type ScoredChunkEmbedding struct {
	Embedding  *entity.ChunkEmbedding
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type ChunkEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.ChunkEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.ChunkEmbedding) error
	// SearchSimilarWithScore returns the top-k nearest chunks within one
	// source collection, most similar first.
	SearchSimilarWithScore(ctx context.Context, embedding []float32, sourceType string, limit int) ([]*ScoredChunkEmbedding, error)
}

package mapper

import (
	"github.com/pgvector/pgvector-go"

	"ai-fitness-be/internal/entity"
	"ai-fitness-be/internal/model"
)

type ChunkEmbeddingMapper struct{}

func NewChunkEmbeddingMapper() *ChunkEmbeddingMapper {
	return &ChunkEmbeddingMapper{}
}

func (m *ChunkEmbeddingMapper) ToEntity(c *model.ChunkEmbedding) *entity.ChunkEmbedding {
	if c == nil {
		return nil
	}
	return &entity.ChunkEmbedding{
		Id:             c.Id,
		Document:       c.Document,
		EmbeddingValue: c.EmbeddingValue.Slice(),
		SourceType:     c.SourceType,
		SourceTitle:    c.SourceTitle,
		SourceRef:      c.SourceRef,
		ChunkIndex:     c.ChunkIndex,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func (m *ChunkEmbeddingMapper) ToModel(c *entity.ChunkEmbedding) *model.ChunkEmbedding {
	if c == nil {
		return nil
	}
	return &model.ChunkEmbedding{
		Id:             c.Id,
		Document:       c.Document,
		EmbeddingValue: pgvector.NewVector(c.EmbeddingValue),
		SourceType:     c.SourceType,
		SourceTitle:    c.SourceTitle,
		SourceRef:      c.SourceRef,
		ChunkIndex:     c.ChunkIndex,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

package unitofwork

import (
	"context"

	"ai-fitness-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ResearchResultRepository() contract.ResearchResultRepository
	ChunkEmbeddingRepository() contract.ChunkEmbeddingRepository
}

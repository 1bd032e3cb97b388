package contract

import (
	"context"

	"ai-fitness-be/internal/entity"
	"ai-fitness-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ResearchResultRepository interface {
	Create(ctx context.Context, result *entity.ResearchResult) error
	FindById(ctx context.Context, id uuid.UUID) (*entity.ResearchResult, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ResearchResult, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

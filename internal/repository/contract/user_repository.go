package contract

import (
	"context"

	"ai-fitness-be/internal/entity"
	"ai-fitness-be/internal/repository/specification"

	"github.com/google/uuid"
)

// UserRepository is read-only here: account lifecycle is owned by another
// service, this one only needs profile data.
type UserRepository interface {
	FindById(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
}

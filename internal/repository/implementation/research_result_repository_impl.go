package implementation

import (
	"context"
	"errors"

	"ai-fitness-be/internal/entity"
	"ai-fitness-be/internal/mapper"
	"ai-fitness-be/internal/model"
	"ai-fitness-be/internal/repository/contract"
	"ai-fitness-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResearchResultRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ResearchResultMapper
}

func NewResearchResultRepository(db *gorm.DB) contract.ResearchResultRepository {
	return &ResearchResultRepositoryImpl{
		db:     db,
		mapper: mapper.NewResearchResultMapper(),
	}
}

func (r *ResearchResultRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ResearchResultRepositoryImpl) Create(ctx context.Context, result *entity.ResearchResult) error {
	m, err := r.mapper.ToModel(result)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	saved, err := r.mapper.ToEntity(m)
	if err != nil {
		return err
	}
	*result = *saved
	return nil
}

func (r *ResearchResultRepositoryImpl) FindById(ctx context.Context, id uuid.UUID) (*entity.ResearchResult, error) {
	var m model.ResearchResult
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *ResearchResultRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ResearchResult, error) {
	var models []*model.ResearchResult
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.ResearchResult, len(models))
	for i, m := range models {
		e, err := r.mapper.ToEntity(m)
		if err != nil {
			return nil, err
		}
		entities[i] = e
	}
	return entities, nil
}

func (r *ResearchResultRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.ResearchResult{}).Count(&count).Error
	return count, err
}

package implementation

import (
	"context"

	"sigment-be/internal/entity"
	"sigment-be/internal/mapper"
	"sigment-be/internal/model"
	"sigment-be/internal/repository/contract"
	"sigment-be/internal/repository/specification"

	"gorm.io/gorm"
)

type LifecycleEventRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.LifecycleEventMapper
}

func NewLifecycleEventRepository(db *gorm.DB) contract.LifecycleEventRepository {
	return &LifecycleEventRepositoryImpl{
		db:     db,
		mapper: mapper.NewLifecycleEventMapper(),
	}
}

func (r *LifecycleEventRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *LifecycleEventRepositoryImpl) Create(ctx context.Context, event *entity.LifecycleEvent) error {
	m := r.mapper.ToModel(event)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*event = *r.mapper.ToEntity(m)
	return nil
}

func (r *LifecycleEventRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LifecycleEvent, error) {
	var models []*model.LifecycleEvent
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *LifecycleEventRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.LifecycleEvent{}).Count(&count).Error
	return count, err
}

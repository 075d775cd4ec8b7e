package implementation

import (
	"context"
	"errors"

	"sigment-be/internal/entity"
	"sigment-be/internal/mapper"
	"sigment-be/internal/model"
	"sigment-be/internal/repository/contract"
	"sigment-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PillarRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PillarMapper
}

func NewPillarRepository(db *gorm.DB) contract.PillarRepository {
	return &PillarRepositoryImpl{
		db:     db,
		mapper: mapper.NewPillarMapper(),
	}
}

func (r *PillarRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PillarRepositoryImpl) Create(ctx context.Context, pillar *entity.Pillar) error {
	m := r.mapper.ToModel(pillar)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*pillar = *r.mapper.ToEntity(m)
	return nil
}

func (r *PillarRepositoryImpl) Update(ctx context.Context, pillar *entity.Pillar) error {
	m := r.mapper.ToModel(pillar)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*pillar = *r.mapper.ToEntity(m)
	return nil
}

func (r *PillarRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Pillar{}, id).Error
}

func (r *PillarRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Pillar, error) {
	var m model.Pillar
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *PillarRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Pillar, error) {
	var models []*model.Pillar
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *PillarRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Pillar{}).Count(&count).Error
	return count, err
}

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

type ClusterSnapshotRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ClusterSnapshotMapper
}

func NewClusterSnapshotRepository(db *gorm.DB) contract.ClusterSnapshotRepository {
	return &ClusterSnapshotRepositoryImpl{
		db:     db,
		mapper: mapper.NewClusterSnapshotMapper(),
	}
}

func (r *ClusterSnapshotRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ClusterSnapshotRepositoryImpl) Create(ctx context.Context, snapshot *entity.ClusterSnapshot) error {
	m := r.mapper.ToModel(snapshot)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*snapshot = *r.mapper.ToEntity(m)
	return nil
}

func (r *ClusterSnapshotRepositoryImpl) FindLatestByCluster(ctx context.Context, clusterId uuid.UUID) (*entity.ClusterSnapshot, error) {
	var m model.ClusterSnapshot
	err := r.db.WithContext(ctx).
		Where("cluster_id = ?", clusterId).
		Order("created_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ClusterSnapshotRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ClusterSnapshot, error) {
	var models []*model.ClusterSnapshot
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ClusterSnapshotRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.ClusterSnapshot{}).Count(&count).Error
	return count, err
}

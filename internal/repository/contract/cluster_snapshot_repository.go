package contract

import (
	"context"

	"sigment-be/internal/entity"
	"sigment-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ClusterSnapshotRepository is append-only by contract: there is no update
// and no delete. History reconstruction depends on rows never changing.
type ClusterSnapshotRepository interface {
	Create(ctx context.Context, snapshot *entity.ClusterSnapshot) error
	FindLatestByCluster(ctx context.Context, clusterId uuid.UUID) (*entity.ClusterSnapshot, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ClusterSnapshot, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

package contract

import (
	"context"

	"sigment-be/internal/entity"
	"sigment-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ClusterRepository interface {
	Create(ctx context.Context, cluster *entity.Cluster) error
	Update(ctx context.Context, cluster *entity.Cluster) error
	// IncrementNoteCount bumps the all-time membership counter and the
	// updated timestamp in a single atomic write.
	IncrementNoteCount(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Cluster, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Cluster, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

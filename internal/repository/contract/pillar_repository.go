package contract

import (
	"context"

	"sigment-be/internal/entity"
	"sigment-be/internal/repository/specification"

	"github.com/google/uuid"
)

type PillarRepository interface {
	Create(ctx context.Context, pillar *entity.Pillar) error
	Update(ctx context.Context, pillar *entity.Pillar) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Pillar, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Pillar, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

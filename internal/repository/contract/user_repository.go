package contract

import (
	"context"

	"sigment-be/internal/entity"
	"sigment-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type OrganizationRepository interface {
	Create(ctx context.Context, org *entity.Organization) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Organization, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Organization, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

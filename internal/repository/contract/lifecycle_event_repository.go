package contract

import (
	"context"

	"sigment-be/internal/entity"
	"sigment-be/internal/repository/specification"
)

// LifecycleEventRepository is append-only: events record history and are
// never rewritten.
type LifecycleEventRepository interface {
	Create(ctx context.Context, event *entity.LifecycleEvent) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.LifecycleEvent, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

package unitofwork

import (
	"context"

	"sigment-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	OrganizationRepository() contract.OrganizationRepository
	UserRepository() contract.UserRepository
	NoteRepository() contract.NoteRepository
	PillarRepository() contract.PillarRepository
	ClusterRepository() contract.ClusterRepository
	ClusterSnapshotRepository() contract.ClusterSnapshotRepository
	LifecycleEventRepository() contract.LifecycleEventRepository
}

package unitofwork

import (
	"context"
	"fmt"

	"sigment-be/internal/repository/contract"
	"sigment-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // the active transaction, nil outside Begin/Commit
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) OrganizationRepository() contract.OrganizationRepository {
	return implementation.NewOrganizationRepository(u.getDB())
}

func (u *UnitOfWorkImpl) UserRepository() contract.UserRepository {
	return implementation.NewUserRepository(u.getDB())
}

func (u *UnitOfWorkImpl) NoteRepository() contract.NoteRepository {
	return implementation.NewNoteRepository(u.getDB())
}

func (u *UnitOfWorkImpl) PillarRepository() contract.PillarRepository {
	return implementation.NewPillarRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ClusterRepository() contract.ClusterRepository {
	return implementation.NewClusterRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ClusterSnapshotRepository() contract.ClusterSnapshotRepository {
	return implementation.NewClusterSnapshotRepository(u.getDB())
}

func (u *UnitOfWorkImpl) LifecycleEventRepository() contract.LifecycleEventRepository {
	return implementation.NewLifecycleEventRepository(u.getDB())
}

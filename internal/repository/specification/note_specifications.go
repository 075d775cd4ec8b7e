package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByAuthor struct {
	AuthorID uuid.UUID
}

func (s ByAuthor) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("author_id = ?", s.AuthorID)
}

type ByCluster struct {
	ClusterID uuid.UUID
}

func (s ByCluster) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("cluster_id = ?", s.ClusterID)
}

type ByPillar struct {
	PillarID uuid.UUID
}

func (s ByPillar) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("pillar_id = ?", s.PillarID)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ByStatuses keeps only notes whose status is in the given set. Snapshot
// generation uses it with the active statuses so moderated-out notes are
// excluded at query time, not post hoc.
type ByStatuses struct {
	Statuses []string
}

func (s ByStatuses) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status IN ?", s.Statuses)
}

type ByName struct {
	Name string
}

func (s ByName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name = ?", s.Name)
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Cluster struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationId uuid.UUID `gorm:"type:uuid;not null;index"`
	PillarId       uuid.UUID `gorm:"type:uuid;not null;index"`
	Title          string    `gorm:"type:varchar(255);not null"`
	// NoteCount is all-time membership, not the active set. Snapshots carry
	// the active count separately.
	NoteCount int            `gorm:"not null;default:0"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Cluster) TableName() string {
	return "clusters"
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Pillar struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationId uuid.UUID      `gorm:"type:uuid;not null;index:idx_pillars_org_name,unique"`
	Name           string         `gorm:"type:varchar(100);not null;index:idx_pillars_org_name,unique"`
	Description    string         `gorm:"type:text"`
	Color          string         `gorm:"type:varchar(20)"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (Pillar) TableName() string {
	return "pillars"
}

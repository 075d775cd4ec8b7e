package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Email          string         `gorm:"type:varchar(255);not null;uniqueIndex"`
	FullName       string         `gorm:"type:varchar(255);not null"`
	Role           string         `gorm:"type:varchar(100)"`
	Department     string         `gorm:"type:varchar(100);index"`
	Seniority      string         `gorm:"type:varchar(50)"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

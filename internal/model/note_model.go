package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Note struct {
	Id               uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationId   uuid.UUID        `gorm:"type:uuid;not null;index"`
	AuthorId         uuid.UUID        `gorm:"type:uuid;not null;index"`
	RawContent       string           `gorm:"type:text;not null"`
	Title            *string          `gorm:"type:varchar(255)"`
	ClarifiedContent *string          `gorm:"type:text"`
	PillarId         *uuid.UUID       `gorm:"type:uuid;index"`
	ClusterId        *uuid.UUID       `gorm:"type:uuid;index"`
	Embedding        *pgvector.Vector `gorm:"type:vector(768)"` // Gemini text-embedding-004 uses 768 dimensions
	Score            *float64         `gorm:"type:numeric(4,2)"`
	Reasoning        *string          `gorm:"type:text"`
	Status           string           `gorm:"type:varchar(20);not null;default:'draft';index"`
	ProcessingError  datatypes.JSON   `gorm:"type:jsonb"`
	CreatedAt        time.Time        `gorm:"autoCreateTime"`
	ProcessedAt      *time.Time
	UpdatedAt        time.Time      `gorm:"autoUpdateTime"`
	DeletedAt        gorm.DeletedAt `gorm:"index"`
}

func (Note) TableName() string {
	return "notes"
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LifecycleEvent is the append-only audit log for note transitions. One row
// per meaningful transition, independent of the note's mutable state.
type LifecycleEvent struct {
	Id             uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NoteId         uuid.UUID      `gorm:"type:uuid;not null;index"`
	OrganizationId uuid.UUID      `gorm:"type:uuid;not null;index"`
	EventType      string         `gorm:"type:varchar(50);not null;index"`
	Title          string         `gorm:"type:varchar(255)"`
	Description    string         `gorm:"type:text"`
	ActorId        *uuid.UUID     `gorm:"type:uuid"`
	Payload        datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt      time.Time      `gorm:"autoCreateTime;index"`
}

func (LifecycleEvent) TableName() string {
	return "lifecycle_events"
}

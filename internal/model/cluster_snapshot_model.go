package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ClusterSnapshot rows are append-only. There is deliberately no UpdatedAt
// and no soft delete: a snapshot is never mutated after insert.
type ClusterSnapshot struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ClusterId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Summary   string         `gorm:"type:text"`
	Metrics   datatypes.JSON `gorm:"type:jsonb"` // department -> active note count
	NoteIds   datatypes.JSON `gorm:"type:jsonb"` // exact active set at synthesis time
	NoteCount int            `gorm:"not null"`
	AvgScore  float64        `gorm:"type:numeric(4,2)"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index"`
}

func (ClusterSnapshot) TableName() string {
	return "cluster_snapshots"
}

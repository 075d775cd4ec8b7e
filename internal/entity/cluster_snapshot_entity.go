package entity

import (
	"time"

	"github.com/google/uuid"
)

// ClusterSnapshot is an immutable point-in-time record of a cluster's state.
// The ordered sequence of snapshots for one cluster reconstructs its
// evolution.
type ClusterSnapshot struct {
	Id        uuid.UUID
	ClusterId uuid.UUID
	Summary   string
	Metrics   map[string]int // department -> active note count
	NoteIds   []uuid.UUID    // exact active set at synthesis time
	NoteCount int
	AvgScore  float64
	CreatedAt time.Time
}

package dto

import (
	"time"

	"github.com/google/uuid"
)

// GalaxyClusterResponse is one cluster as the galaxy view renders it: the
// live title plus the aggregates from its most recent snapshot.
type GalaxyClusterResponse struct {
	Id        uuid.UUID      `json:"id"`
	PillarId  uuid.UUID      `json:"pillar_id"`
	Title     string         `json:"title"`
	Summary   string         `json:"summary"`
	NoteCount int            `json:"note_count"`
	AvgScore  float64        `json:"avg_score"`
	Metrics   map[string]int `json:"metrics"`
	UpdatedAt *time.Time     `json:"updated_at"`
}

type GalaxyResponse struct {
	Pillars  []ShowPillarResponse    `json:"pillars"`
	Clusters []GalaxyClusterResponse `json:"clusters"`
}

// ClusterHistoryItem is one snapshot in a cluster's append-only history.
type ClusterHistoryItem struct {
	Id        uuid.UUID      `json:"id"`
	Summary   string         `json:"summary"`
	NoteCount int            `json:"note_count"`
	AvgScore  float64        `json:"avg_score"`
	Metrics   map[string]int `json:"metrics"`
	NoteIds   []uuid.UUID    `json:"note_ids"`
	CreatedAt time.Time      `json:"created_at"`
}

type ClusterHistoryResponse struct {
	ClusterId uuid.UUID            `json:"cluster_id"`
	Title     string               `json:"title"`
	Snapshots []ClusterHistoryItem `json:"snapshots"`
}

type ClusterNotesResponse struct {
	ClusterId uuid.UUID          `json:"cluster_id"`
	Notes     []ShowNoteResponse `json:"notes"`
}

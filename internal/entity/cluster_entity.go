package entity

import (
	"time"

	"github.com/google/uuid"
)

// ClusterTitleTruncationMarker terminates placeholder titles derived from a
// note's clarified text. The snapshot generator treats a title ending in it
// as unresolved and regenerates it.
const ClusterTitleTruncationMarker = "…"

type Cluster struct {
	Id             uuid.UUID
	OrganizationId uuid.UUID
	PillarId       uuid.UUID
	Title          string
	NoteCount      int
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}

// HasPlaceholderTitle reports whether the display title is still the initial
// truncated placeholder.
func (c *Cluster) HasPlaceholderTitle() bool {
	if len(c.Title) < len(ClusterTitleTruncationMarker) {
		return false
	}
	return c.Title[len(c.Title)-len(ClusterTitleTruncationMarker):] == ClusterTitleTruncationMarker
}

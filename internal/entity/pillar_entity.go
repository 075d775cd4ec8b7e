package entity

import (
	"time"

	"github.com/google/uuid"
)

// FallbackPillarName is the reserved pillar every tenant gets lazily, the
// first time a judgment cannot be mapped onto the tenant's taxonomy.
const FallbackPillarName = "Uncategorized"

type Pillar struct {
	Id             uuid.UUID
	OrganizationId uuid.UUID
	Name           string
	Description    string
	Color          string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}

// IsFallback reports whether this is the reserved Uncategorized pillar.
func (p *Pillar) IsFallback() bool {
	return p.Name == FallbackPillarName
}

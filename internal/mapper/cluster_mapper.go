package mapper

import (
	"time"

	"sigment-be/internal/entity"
	"sigment-be/internal/model"

	"gorm.io/gorm"
)

type ClusterMapper struct{}

func NewClusterMapper() *ClusterMapper {
	return &ClusterMapper{}
}

func (m *ClusterMapper) ToEntity(c *model.Cluster) *entity.Cluster {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Cluster{
		Id:             c.Id,
		OrganizationId: c.OrganizationId,
		PillarId:       c.PillarId,
		Title:          c.Title,
		NoteCount:      c.NoteCount,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      c.DeletedAt.Valid,
	}
}

func (m *ClusterMapper) ToModel(c *entity.Cluster) *model.Cluster {
	if c == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if c.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *c.DeletedAt, Valid: true}
	} else if c.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Cluster{
		Id:             c.Id,
		OrganizationId: c.OrganizationId,
		PillarId:       c.PillarId,
		Title:          c.Title,
		NoteCount:      c.NoteCount,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}

func (m *ClusterMapper) ToEntities(clusters []*model.Cluster) []*entity.Cluster {
	entities := make([]*entity.Cluster, len(clusters))
	for i, c := range clusters {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

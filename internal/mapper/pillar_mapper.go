package mapper

import (
	"time"

	"sigment-be/internal/entity"
	"sigment-be/internal/model"

	"gorm.io/gorm"
)

type PillarMapper struct{}

func NewPillarMapper() *PillarMapper {
	return &PillarMapper{}
}

func (m *PillarMapper) ToEntity(p *model.Pillar) *entity.Pillar {
	if p == nil {
		return nil
	}

	var deletedAt *time.Time
	if p.DeletedAt.Valid {
		t := p.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	return &entity.Pillar{
		Id:             p.Id,
		OrganizationId: p.OrganizationId,
		Name:           p.Name,
		Description:    p.Description,
		Color:          p.Color,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      p.DeletedAt.Valid,
	}
}

func (m *PillarMapper) ToModel(p *entity.Pillar) *model.Pillar {
	if p == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if p.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *p.DeletedAt, Valid: true}
	} else if p.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	return &model.Pillar{
		Id:             p.Id,
		OrganizationId: p.OrganizationId,
		Name:           p.Name,
		Description:    p.Description,
		Color:          p.Color,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}

func (m *PillarMapper) ToEntities(pillars []*model.Pillar) []*entity.Pillar {
	entities := make([]*entity.Pillar, len(pillars))
	for i, p := range pillars {
		entities[i] = m.ToEntity(p)
	}
	return entities
}

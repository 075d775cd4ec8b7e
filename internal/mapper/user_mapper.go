package mapper

import (
	"time"

	"sigment-be/internal/entity"
	"sigment-be/internal/model"

	"gorm.io/gorm"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}

	var deletedAt *time.Time
	if u.DeletedAt.Valid {
		t := u.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !u.UpdatedAt.IsZero() {
		t := u.UpdatedAt
		updatedAt = &t
	}

	return &entity.User{
		Id:             u.Id,
		OrganizationId: u.OrganizationId,
		Email:          u.Email,
		FullName:       u.FullName,
		Role:           u.Role,
		Department:     u.Department,
		Seniority:      u.Seniority,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      u.DeletedAt.Valid,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if u.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *u.DeletedAt, Valid: true}
	}

	var updatedAt time.Time
	if u.UpdatedAt != nil {
		updatedAt = *u.UpdatedAt
	}

	return &model.User{
		Id:             u.Id,
		OrganizationId: u.OrganizationId,
		Email:          u.Email,
		FullName:       u.FullName,
		Role:           u.Role,
		Department:     u.Department,
		Seniority:      u.Seniority,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}

func (m *UserMapper) ToEntities(users []*model.User) []*entity.User {
	entities := make([]*entity.User, len(users))
	for i, u := range users {
		entities[i] = m.ToEntity(u)
	}
	return entities
}

type OrganizationMapper struct{}

func NewOrganizationMapper() *OrganizationMapper {
	return &OrganizationMapper{}
}

func (m *OrganizationMapper) ToEntity(o *model.Organization) *entity.Organization {
	if o == nil {
		return nil
	}

	var deletedAt *time.Time
	if o.DeletedAt.Valid {
		t := o.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !o.UpdatedAt.IsZero() {
		t := o.UpdatedAt
		updatedAt = &t
	}

	return &entity.Organization{
		Id:        o.Id,
		Name:      o.Name,
		CreatedAt: o.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: o.DeletedAt.Valid,
	}
}

func (m *OrganizationMapper) ToModel(o *entity.Organization) *model.Organization {
	if o == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if o.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *o.DeletedAt, Valid: true}
	}

	var updatedAt time.Time
	if o.UpdatedAt != nil {
		updatedAt = *o.UpdatedAt
	}

	return &model.Organization{
		Id:        o.Id,
		Name:      o.Name,
		CreatedAt: o.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

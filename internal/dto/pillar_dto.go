package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreatePillarRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=80"`
	Description string `json:"description" validate:"max=500"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
}

type CreatePillarResponse struct {
	Id uuid.UUID `json:"id"`
}

type UpdatePillarRequest struct {
	Id          uuid.UUID
	Name        string `json:"name" validate:"required,min=2,max=80"`
	Description string `json:"description" validate:"max=500"`
	Color       string `json:"color" validate:"omitempty,hexcolor"`
}

type ShowPillarResponse struct {
	Id          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Color       string     `json:"color"`
	IsFallback  bool       `json:"is_fallback"`
	NoteCount   int64      `json:"note_count"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

package mapper

import (
	"encoding/json"
	"time"

	"sigment-be/internal/entity"
	"sigment-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NoteMapper struct{}

func NewNoteMapper() *NoteMapper {
	return &NoteMapper{}
}

func (m *NoteMapper) ToEntity(n *model.Note) *entity.Note {
	if n == nil {
		return nil
	}

	var deletedAt *time.Time
	if n.DeletedAt.Valid {
		t := n.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !n.UpdatedAt.IsZero() {
		t := n.UpdatedAt
		updatedAt = &t
	}

	var embedding []float32
	if n.Embedding != nil {
		embedding = n.Embedding.Slice()
	}

	var procErr *entity.ProcessingError
	if len(n.ProcessingError) > 0 {
		var pe entity.ProcessingError
		if err := json.Unmarshal(n.ProcessingError, &pe); err == nil {
			procErr = &pe
		}
	}

	return &entity.Note{
		Id:               n.Id,
		OrganizationId:   n.OrganizationId,
		AuthorId:         n.AuthorId,
		RawContent:       n.RawContent,
		Title:            n.Title,
		ClarifiedContent: n.ClarifiedContent,
		PillarId:         n.PillarId,
		ClusterId:        n.ClusterId,
		Embedding:        embedding,
		Score:            n.Score,
		Reasoning:        n.Reasoning,
		Status:           n.Status,
		ProcessingError:  procErr,
		CreatedAt:        n.CreatedAt,
		ProcessedAt:      n.ProcessedAt,
		UpdatedAt:        updatedAt,
		DeletedAt:        deletedAt,
		IsDeleted:        n.DeletedAt.Valid,
	}
}

func (m *NoteMapper) ToModel(n *entity.Note) *model.Note {
	if n == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if n.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *n.DeletedAt, Valid: true}
	} else if n.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if n.UpdatedAt != nil {
		updatedAt = *n.UpdatedAt
	}

	var embedding *pgvector.Vector
	if len(n.Embedding) > 0 {
		v := pgvector.NewVector(n.Embedding)
		embedding = &v
	}

	var procErr datatypes.JSON
	if n.ProcessingError != nil {
		if raw, err := json.Marshal(n.ProcessingError); err == nil {
			procErr = datatypes.JSON(raw)
		}
	}

	return &model.Note{
		Id:               n.Id,
		OrganizationId:   n.OrganizationId,
		AuthorId:         n.AuthorId,
		RawContent:       n.RawContent,
		Title:            n.Title,
		ClarifiedContent: n.ClarifiedContent,
		PillarId:         n.PillarId,
		ClusterId:        n.ClusterId,
		Embedding:        embedding,
		Score:            n.Score,
		Reasoning:        n.Reasoning,
		Status:           n.Status,
		ProcessingError:  procErr,
		CreatedAt:        n.CreatedAt,
		ProcessedAt:      n.ProcessedAt,
		UpdatedAt:        updatedAt,
		DeletedAt:        deletedAt,
	}
}

func (m *NoteMapper) ToEntities(notes []*model.Note) []*entity.Note {
	entities := make([]*entity.Note, len(notes))
	for i, n := range notes {
		entities[i] = m.ToEntity(n)
	}
	return entities
}

func (m *NoteMapper) ToModels(notes []*entity.Note) []*model.Note {
	models := make([]*model.Note, len(notes))
	for i, n := range notes {
		models[i] = m.ToModel(n)
	}
	return models
}

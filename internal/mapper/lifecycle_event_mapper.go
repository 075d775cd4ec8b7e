package mapper

import (
	"encoding/json"

	"sigment-be/internal/entity"
	"sigment-be/internal/model"

	"gorm.io/datatypes"
)

type LifecycleEventMapper struct{}

func NewLifecycleEventMapper() *LifecycleEventMapper {
	return &LifecycleEventMapper{}
}

func (m *LifecycleEventMapper) ToEntity(e *model.LifecycleEvent) *entity.LifecycleEvent {
	if e == nil {
		return nil
	}

	payload := map[string]interface{}{}
	if len(e.Payload) > 0 {
		_ = json.Unmarshal(e.Payload, &payload)
	}

	return &entity.LifecycleEvent{
		Id:             e.Id,
		NoteId:         e.NoteId,
		OrganizationId: e.OrganizationId,
		EventType:      e.EventType,
		Title:          e.Title,
		Description:    e.Description,
		ActorId:        e.ActorId,
		Payload:        payload,
		CreatedAt:      e.CreatedAt,
	}
}

func (m *LifecycleEventMapper) ToModel(e *entity.LifecycleEvent) *model.LifecycleEvent {
	if e == nil {
		return nil
	}

	var payload datatypes.JSON
	if e.Payload != nil {
		if raw, err := json.Marshal(e.Payload); err == nil {
			payload = datatypes.JSON(raw)
		}
	}

	return &model.LifecycleEvent{
		Id:             e.Id,
		NoteId:         e.NoteId,
		OrganizationId: e.OrganizationId,
		EventType:      e.EventType,
		Title:          e.Title,
		Description:    e.Description,
		ActorId:        e.ActorId,
		Payload:        payload,
		CreatedAt:      e.CreatedAt,
	}
}

func (m *LifecycleEventMapper) ToEntities(events []*model.LifecycleEvent) []*entity.LifecycleEvent {
	entities := make([]*entity.LifecycleEvent, len(events))
	for i, e := range events {
		entities[i] = m.ToEntity(e)
	}
	return entities
}

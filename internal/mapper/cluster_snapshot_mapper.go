package mapper

import (
	"encoding/json"

	"sigment-be/internal/entity"
	"sigment-be/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ClusterSnapshotMapper struct{}

func NewClusterSnapshotMapper() *ClusterSnapshotMapper {
	return &ClusterSnapshotMapper{}
}

func (m *ClusterSnapshotMapper) ToEntity(s *model.ClusterSnapshot) *entity.ClusterSnapshot {
	if s == nil {
		return nil
	}

	metrics := map[string]int{}
	if len(s.Metrics) > 0 {
		_ = json.Unmarshal(s.Metrics, &metrics)
	}

	var noteIds []uuid.UUID
	if len(s.NoteIds) > 0 {
		_ = json.Unmarshal(s.NoteIds, &noteIds)
	}

	return &entity.ClusterSnapshot{
		Id:        s.Id,
		ClusterId: s.ClusterId,
		Summary:   s.Summary,
		Metrics:   metrics,
		NoteIds:   noteIds,
		NoteCount: s.NoteCount,
		AvgScore:  s.AvgScore,
		CreatedAt: s.CreatedAt,
	}
}

func (m *ClusterSnapshotMapper) ToModel(s *entity.ClusterSnapshot) *model.ClusterSnapshot {
	if s == nil {
		return nil
	}

	var metrics datatypes.JSON
	if raw, err := json.Marshal(s.Metrics); err == nil {
		metrics = datatypes.JSON(raw)
	}

	var noteIds datatypes.JSON
	if raw, err := json.Marshal(s.NoteIds); err == nil {
		noteIds = datatypes.JSON(raw)
	}

	return &model.ClusterSnapshot{
		Id:        s.Id,
		ClusterId: s.ClusterId,
		Summary:   s.Summary,
		Metrics:   metrics,
		NoteIds:   noteIds,
		NoteCount: s.NoteCount,
		AvgScore:  s.AvgScore,
		CreatedAt: s.CreatedAt,
	}
}

func (m *ClusterSnapshotMapper) ToEntities(snapshots []*model.ClusterSnapshot) []*entity.ClusterSnapshot {
	entities := make([]*entity.ClusterSnapshot, len(snapshots))
	for i, s := range snapshots {
		entities[i] = m.ToEntity(s)
	}
	return entities
}

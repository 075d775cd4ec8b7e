package implementation

import (
	"context"
	"errors"

	"sigment-be/internal/entity"
	"sigment-be/internal/mapper"
	"sigment-be/internal/model"
	"sigment-be/internal/repository/contract"
	"sigment-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type NoteRepositoryImpl struct {
	db         *gorm.DB
	mapper     *mapper.NoteMapper
	userMapper *mapper.UserMapper
}

func NewNoteRepository(db *gorm.DB) contract.NoteRepository {
	return &NoteRepositoryImpl{
		db:         db,
		mapper:     mapper.NewNoteMapper(),
		userMapper: mapper.NewUserMapper(),
	}
}

func (r *NoteRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *NoteRepositoryImpl) Create(ctx context.Context, note *entity.Note) error {
	m := r.mapper.ToModel(note)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*note = *r.mapper.ToEntity(m)
	return nil
}

func (r *NoteRepositoryImpl) Update(ctx context.Context, note *entity.Note) error {
	m := r.mapper.ToModel(note)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	author := note.Author
	*note = *r.mapper.ToEntity(m)
	note.Author = author
	return nil
}

func (r *NoteRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Note{}, id).Error
}

func (r *NoteRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	var m model.Note
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *NoteRepositoryImpl) FindOneWithAuthor(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	note, err := r.FindOne(ctx, specs...)
	if err != nil || note == nil {
		return note, err
	}

	var u model.User
	err = r.db.WithContext(ctx).Where("id = ?", note.AuthorId).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return note, nil // author deleted; note still usable
		}
		return nil, err
	}
	note.Author = r.userMapper.ToEntity(&u)
	return note, nil
}

func (r *NoteRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	var models []*model.Note
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *NoteRepositoryImpl) FindAllWithAuthors(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	notes, err := r.FindAll(ctx, specs...)
	if err != nil || len(notes) == 0 {
		return notes, err
	}

	authorIds := make([]uuid.UUID, 0, len(notes))
	seen := map[uuid.UUID]bool{}
	for _, n := range notes {
		if !seen[n.AuthorId] {
			seen[n.AuthorId] = true
			authorIds = append(authorIds, n.AuthorId)
		}
	}

	var users []*model.User
	if err := r.db.WithContext(ctx).Where("id IN ?", authorIds).Find(&users).Error; err != nil {
		return nil, err
	}

	byId := make(map[uuid.UUID]*entity.User, len(users))
	for _, u := range users {
		byId[u.Id] = r.userMapper.ToEntity(u)
	}
	for _, n := range notes {
		n.Author = byId[n.AuthorId]
	}
	return notes, nil
}

func (r *NoteRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.Note{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore returns candidate notes ranked by cosine similarity.
// Tenant and pillar scoping live in the WHERE clause, so isolation holds at
// the query boundary regardless of caller behavior. Only notes in an active
// status with a stored embedding are candidates.
func (r *NoteRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, organizationId, pillarId uuid.UUID, threshold float64) ([]*contract.ScoredNote, error) {
	if limit <= 0 {
		limit = 10
	}

	// Cosine distance in pgvector is 1 - cosine_similarity, so
	// 1 - (embedding <=> query_vector) = cosine_similarity.
	type result struct {
		model.Note
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("notes").
		Select("notes.*, 1 - (embedding <=> ?) as similarity", queryVector).
		Where("organization_id = ?", organizationId).
		Where("pillar_id = ?", pillarId).
		Where("status IN ?", entity.ActiveNoteStatuses()).
		Where("embedding IS NOT NULL").
		Where("cluster_id IS NOT NULL").
		Where("deleted_at IS NULL").
		Where("1 - (embedding <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredNote, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredNote{
			Note:       r.mapper.ToEntity(&res.Note),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}

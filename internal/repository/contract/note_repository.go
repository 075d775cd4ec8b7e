package contract

import (
	"context"

	"sigment-be/internal/entity"
	"sigment-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredNote is a similarity-search candidate with its cosine similarity
// (1.0 = identical).
type ScoredNote struct {
	Note       *entity.Note
	Similarity float64
}

type NoteRepository interface {
	Create(ctx context.Context, note *entity.Note) error
	Update(ctx context.Context, note *entity.Note) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error)
	// FindOneWithAuthor is FindOne with the author row preloaded; the
	// pipeline needs role/department/seniority as scoring context.
	FindOneWithAuthor(ctx context.Context, specs ...specification.Specification) (*entity.Note, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error)
	// FindAllWithAuthors preloads authors for the whole result set.
	FindAllWithAuthors(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore runs the pgvector cosine search scoped to one
	// tenant and one pillar. Scoping is applied inside the query; a
	// cross-tenant candidate can never be returned. Candidates below the
	// threshold are filtered in SQL; the threshold is inclusive (>=).
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, organizationId, pillarId uuid.UUID, threshold float64) ([]*ScoredNote, error)
}

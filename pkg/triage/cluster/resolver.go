package cluster

import (
	"context"
	"fmt"
	"unicode/utf8"

	"sigment-be/internal/entity"
	"sigment-be/internal/repository/contract"
	"sigment-be/internal/repository/specification"

	"github.com/google/uuid"
)

// placeholderTitleRunes caps the clarified-text excerpt used as a new
// cluster's initial title. The snapshot generator replaces it later.
const placeholderTitleRunes = 60

// Resolution is the outcome of placing one note: either membership in an
// existing cluster or a freshly created one.
type Resolution struct {
	Cluster    *entity.Cluster
	Created    bool
	Similarity float64 // top candidate similarity, 0 when no candidate matched
}

// Resolver decides cluster membership for an analyzed, embedded note. The
// decision is a pure threshold rule over a tenant- and pillar-scoped cosine
// search: the best candidate at or above the threshold wins, otherwise a new
// cluster is opened.
type Resolver struct {
	notes     contract.NoteRepository
	clusters  contract.ClusterRepository
	threshold float64
	maxCands  int
}

func New(notes contract.NoteRepository, clusters contract.ClusterRepository, threshold float64, maxCandidates int) *Resolver {
	return &Resolver{
		notes:     notes,
		clusters:  clusters,
		threshold: threshold,
		maxCands:  maxCandidates,
	}
}

// Resolve assigns note to a cluster inside (organizationId, pillarId) based
// on its embedding. Candidates come back ordered by similarity descending,
// so the first one is the winner; equal similarities keep the database's
// order, which makes the tie-break deterministic per query.
func (r *Resolver) Resolve(ctx context.Context, note *entity.Note, organizationId, pillarId uuid.UUID) (*Resolution, error) {
	if note.Embedding == nil {
		return nil, fmt.Errorf("note %s has no embedding", note.Id)
	}

	candidates, err := r.notes.SearchSimilarWithScore(ctx, note.Embedding, r.maxCands, organizationId, pillarId, r.threshold)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	for _, candidate := range candidates {
		if candidate.Note.ClusterId == nil {
			continue
		}
		existing, err := r.clusters.FindOne(ctx, specification.ByID{ID: *candidate.Note.ClusterId})
		if err != nil {
			return nil, fmt.Errorf("load cluster %s: %w", *candidate.Note.ClusterId, err)
		}
		if existing == nil || existing.IsDeleted {
			// The winning note's cluster vanished between search and load.
			// Fall through to the next candidate rather than resurrecting it.
			continue
		}
		if err := r.clusters.IncrementNoteCount(ctx, existing.Id); err != nil {
			return nil, fmt.Errorf("increment note count: %w", err)
		}
		existing.NoteCount++
		return &Resolution{Cluster: existing, Similarity: candidate.Similarity}, nil
	}

	created := &entity.Cluster{
		Id:             uuid.New(),
		OrganizationId: organizationId,
		PillarId:       pillarId,
		Title:          PlaceholderTitle(clarifiedOrRaw(note)),
		NoteCount:      1,
	}
	if err := r.clusters.Create(ctx, created); err != nil {
		return nil, fmt.Errorf("create cluster: %w", err)
	}
	return &Resolution{Cluster: created, Created: true}, nil
}

func clarifiedOrRaw(note *entity.Note) string {
	if note.ClarifiedContent != nil && *note.ClarifiedContent != "" {
		return *note.ClarifiedContent
	}
	return note.RawContent
}

// PlaceholderTitle derives an initial cluster title from the founding note's
// clarified text. Titles longer than the cap are cut at a rune boundary and
// terminated with the truncation marker so they can be recognized and
// replaced once the cluster has real content.
func PlaceholderTitle(text string) string {
	if utf8.RuneCountInString(text) <= placeholderTitleRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:placeholderTitleRunes]) + entity.ClusterTitleTruncationMarker
}

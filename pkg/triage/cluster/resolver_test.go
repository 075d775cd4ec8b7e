package cluster

import (
	"context"
	"strings"
	"testing"

	"sigment-be/internal/entity"
	"sigment-be/internal/repository/contract"
	"sigment-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNoteRepo struct {
	contract.NoteRepository

	candidates []*contract.ScoredNote
	lastQuery  struct {
		limit          int
		organizationId uuid.UUID
		pillarId       uuid.UUID
		threshold      float64
	}
}

func (f *fakeNoteRepo) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, organizationId, pillarId uuid.UUID, threshold float64) ([]*contract.ScoredNote, error) {
	f.lastQuery.limit = limit
	f.lastQuery.organizationId = organizationId
	f.lastQuery.pillarId = pillarId
	f.lastQuery.threshold = threshold

	// Mirror the SQL: inclusive threshold, ordered by similarity descending.
	var out []*contract.ScoredNote
	for _, c := range f.candidates {
		if c.Similarity >= threshold {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeClusterRepo struct {
	contract.ClusterRepository

	clusters   map[uuid.UUID]*entity.Cluster
	created    []*entity.Cluster
	increments []uuid.UUID
}

func newFakeClusterRepo(clusters ...*entity.Cluster) *fakeClusterRepo {
	m := make(map[uuid.UUID]*entity.Cluster)
	for _, c := range clusters {
		m[c.Id] = c
	}
	return &fakeClusterRepo{clusters: m}
}

func (f *fakeClusterRepo) Create(ctx context.Context, cluster *entity.Cluster) error {
	f.clusters[cluster.Id] = cluster
	f.created = append(f.created, cluster)
	return nil
}

func (f *fakeClusterRepo) IncrementNoteCount(ctx context.Context, id uuid.UUID) error {
	f.increments = append(f.increments, id)
	if c, ok := f.clusters[id]; ok {
		c.NoteCount++
	}
	return nil
}

func (f *fakeClusterRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Cluster, error) {
	for _, s := range specs {
		if byID, ok := s.(specification.ByID); ok {
			return f.clusters[byID.ID], nil
		}
	}
	return nil, nil
}

func scoredNote(clusterId uuid.UUID, similarity float64) *contract.ScoredNote {
	return &contract.ScoredNote{
		Note:       &entity.Note{Id: uuid.New(), ClusterId: &clusterId},
		Similarity: similarity,
	}
}

func embeddedNote(clarified string) *entity.Note {
	return &entity.Note{
		Id:               uuid.New(),
		RawContent:       "raw " + clarified,
		ClarifiedContent: &clarified,
		Embedding:        []float32{0.1, 0.2, 0.3},
	}
}

func TestResolve_AdoptsTopCandidateCluster(t *testing.T) {
	org, pillar := uuid.New(), uuid.New()
	winner := &entity.Cluster{Id: uuid.New(), OrganizationId: org, PillarId: pillar, Title: "Checkout complaints", NoteCount: 4}
	runnerUp := &entity.Cluster{Id: uuid.New(), OrganizationId: org, PillarId: pillar, Title: "Mobile performance", NoteCount: 2}

	notes := &fakeNoteRepo{candidates: []*contract.ScoredNote{
		scoredNote(winner.Id, 0.91),
		scoredNote(runnerUp.Id, 0.82),
	}}
	clusters := newFakeClusterRepo(winner, runnerUp)

	r := New(notes, clusters, 0.75, 10)
	res, err := r.Resolve(context.Background(), embeddedNote("checkout is slow"), org, pillar)

	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, winner.Id, res.Cluster.Id)
	assert.Equal(t, 0.91, res.Similarity)
	assert.Equal(t, 5, res.Cluster.NoteCount)
	assert.Equal(t, []uuid.UUID{winner.Id}, clusters.increments)
	assert.Empty(t, clusters.created)
}

func TestResolve_ThresholdIsInclusive(t *testing.T) {
	org, pillar := uuid.New(), uuid.New()
	boundary := &entity.Cluster{Id: uuid.New(), Title: "Exactly at threshold", NoteCount: 1}

	notes := &fakeNoteRepo{candidates: []*contract.ScoredNote{scoredNote(boundary.Id, 0.75)}}
	clusters := newFakeClusterRepo(boundary)

	r := New(notes, clusters, 0.75, 10)
	res, err := r.Resolve(context.Background(), embeddedNote("edge case"), org, pillar)

	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, boundary.Id, res.Cluster.Id)
}

func TestResolve_BelowThresholdCreatesCluster(t *testing.T) {
	org, pillar := uuid.New(), uuid.New()
	near := &entity.Cluster{Id: uuid.New(), Title: "Close but not close enough", NoteCount: 3}

	notes := &fakeNoteRepo{candidates: []*contract.ScoredNote{scoredNote(near.Id, 0.7499)}}
	clusters := newFakeClusterRepo(near)

	r := New(notes, clusters, 0.75, 10)
	res, err := r.Resolve(context.Background(), embeddedNote("a genuinely new theme"), org, pillar)

	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.Equal(t, org, res.Cluster.OrganizationId)
	assert.Equal(t, pillar, res.Cluster.PillarId)
	assert.Equal(t, 1, res.Cluster.NoteCount)
	assert.Equal(t, "a genuinely new theme", res.Cluster.Title)
	assert.Empty(t, clusters.increments)
}

func TestResolve_TieKeepsSearchOrder(t *testing.T) {
	org, pillar := uuid.New(), uuid.New()
	first := &entity.Cluster{Id: uuid.New(), Title: "First returned", NoteCount: 1}
	second := &entity.Cluster{Id: uuid.New(), Title: "Second returned", NoteCount: 1}

	notes := &fakeNoteRepo{candidates: []*contract.ScoredNote{
		scoredNote(first.Id, 0.8),
		scoredNote(second.Id, 0.8),
	}}
	clusters := newFakeClusterRepo(first, second)

	r := New(notes, clusters, 0.75, 10)
	res, err := r.Resolve(context.Background(), embeddedNote("tied"), org, pillar)

	require.NoError(t, err)
	assert.Equal(t, first.Id, res.Cluster.Id)
}

func TestResolve_SkipsVanishedCluster(t *testing.T) {
	org, pillar := uuid.New(), uuid.New()
	gone := uuid.New() // not in the repo at all
	alive := &entity.Cluster{Id: uuid.New(), Title: "Still here", NoteCount: 2}

	notes := &fakeNoteRepo{candidates: []*contract.ScoredNote{
		scoredNote(gone, 0.95),
		scoredNote(alive.Id, 0.8),
	}}
	clusters := newFakeClusterRepo(alive)

	r := New(notes, clusters, 0.75, 10)
	res, err := r.Resolve(context.Background(), embeddedNote("survivor"), org, pillar)

	require.NoError(t, err)
	assert.False(t, res.Created)
	assert.Equal(t, alive.Id, res.Cluster.Id)
	assert.Equal(t, 0.8, res.Similarity)
}

func TestResolve_PassesScopeAndLimits(t *testing.T) {
	org, pillar := uuid.New(), uuid.New()
	notes := &fakeNoteRepo{}
	clusters := newFakeClusterRepo()

	r := New(notes, clusters, 0.75, 10)
	_, err := r.Resolve(context.Background(), embeddedNote("scope check"), org, pillar)

	require.NoError(t, err)
	assert.Equal(t, 10, notes.lastQuery.limit)
	assert.Equal(t, org, notes.lastQuery.organizationId)
	assert.Equal(t, pillar, notes.lastQuery.pillarId)
	assert.Equal(t, 0.75, notes.lastQuery.threshold)
}

func TestResolve_RejectsNoteWithoutEmbedding(t *testing.T) {
	r := New(&fakeNoteRepo{}, newFakeClusterRepo(), 0.75, 10)
	note := embeddedNote("no vector")
	note.Embedding = nil

	_, err := r.Resolve(context.Background(), note, uuid.New(), uuid.New())
	assert.Error(t, err)
}

func TestPlaceholderTitle_TruncatesAtRuneBoundary(t *testing.T) {
	long := strings.Repeat("å", 100)
	title := PlaceholderTitle(long)

	assert.Equal(t, strings.Repeat("å", 60)+entity.ClusterTitleTruncationMarker, title)
	assert.True(t, (&entity.Cluster{Title: title}).HasPlaceholderTitle())

	short := "short enough"
	assert.Equal(t, short, PlaceholderTitle(short))
	assert.False(t, (&entity.Cluster{Title: short}).HasPlaceholderTitle())
}

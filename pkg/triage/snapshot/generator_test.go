package snapshot

import (
	"context"
	"testing"

	"sigment-be/internal/entity"
	"sigment-be/internal/repository/contract"
	"sigment-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type fakeNoteRepo struct {
	contract.NoteRepository
	active []*entity.Note
}

func (f *fakeNoteRepo) FindAllWithAuthors(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	return f.active, nil
}

type fakeClusterRepo struct {
	contract.ClusterRepository
	cluster *entity.Cluster
	updated []*entity.Cluster
}

func (f *fakeClusterRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Cluster, error) {
	return f.cluster, nil
}

func (f *fakeClusterRepo) Update(ctx context.Context, cluster *entity.Cluster) error {
	f.updated = append(f.updated, cluster)
	return nil
}

type fakeSnapshotRepo struct {
	contract.ClusterSnapshotRepository
	latest  *entity.ClusterSnapshot
	created []*entity.ClusterSnapshot
}

func (f *fakeSnapshotRepo) Create(ctx context.Context, snap *entity.ClusterSnapshot) error {
	f.created = append(f.created, snap)
	return nil
}

func (f *fakeSnapshotRepo) FindLatestByCluster(ctx context.Context, clusterId uuid.UUID) (*entity.ClusterSnapshot, error) {
	return f.latest, nil
}

type fakeSynth struct {
	summary     string
	title       string
	titleCalls  int
	summarCalls int
}

func (f *fakeSynth) SummarizeCluster(ctx context.Context, notes []*entity.Note) (string, error) {
	f.summarCalls++
	return f.summary, nil
}

func (f *fakeSynth) TitleCluster(ctx context.Context, notes []*entity.Note) (string, error) {
	f.titleCalls++
	return f.title, nil
}

func activeNote(dept string, score float64) *entity.Note {
	return &entity.Note{
		Id:     uuid.New(),
		Status: entity.NoteStatusProcessed,
		Score:  &score,
		Author: &entity.User{Id: uuid.New(), Department: dept},
	}
}

func TestGenerate_AppendsSnapshot(t *testing.T) {
	cluster := &entity.Cluster{Id: uuid.New(), Title: "Shipping delays"}
	notes := []*entity.Note{
		activeNote("Logistics", 8.0),
		activeNote("Logistics", 7.0),
		activeNote("Sales", 6.5),
	}

	snaps := &fakeSnapshotRepo{latest: &entity.ClusterSnapshot{NoteCount: 3}}
	synth := &fakeSynth{summary: "Recurring shipping delays out of the east warehouse."}
	g := New(&fakeNoteRepo{active: notes}, &fakeClusterRepo{cluster: cluster}, snaps, synth, nopLogger{})

	snap, err := g.Generate(context.Background(), cluster.Id)

	require.NoError(t, err)
	require.NotNil(t, snap)
	require.Len(t, snaps.created, 1)
	assert.Equal(t, cluster.Id, snap.ClusterId)
	assert.Equal(t, 3, snap.NoteCount)
	assert.Equal(t, synth.summary, snap.Summary)
	assert.Equal(t, map[string]int{"Logistics": 2, "Sales": 1}, snap.Metrics)
	assert.Len(t, snap.NoteIds, 3)
	assert.InDelta(t, 7.17, snap.AvgScore, 0.001, "mean of 8.0, 7.0, 6.5 rounded to 2dp")
	assert.Equal(t, 0, synth.titleCalls, "stable title and stable active set, no regen")
}

func TestGenerate_EmptyActiveSetIsNoop(t *testing.T) {
	cluster := &entity.Cluster{Id: uuid.New(), Title: "Everything refused"}
	snaps := &fakeSnapshotRepo{}
	g := New(&fakeNoteRepo{}, &fakeClusterRepo{cluster: cluster}, snaps, &fakeSynth{}, nopLogger{})

	snap, err := g.Generate(context.Background(), cluster.Id)

	require.NoError(t, err)
	assert.Nil(t, snap)
	assert.Empty(t, snaps.created)
}

func TestGenerate_MissingClusterIsNoop(t *testing.T) {
	snaps := &fakeSnapshotRepo{}
	g := New(&fakeNoteRepo{}, &fakeClusterRepo{}, snaps, &fakeSynth{}, nopLogger{})

	snap, err := g.Generate(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Nil(t, snap)
	assert.Empty(t, snaps.created)
}

func TestGenerate_RegeneratesPlaceholderTitle(t *testing.T) {
	cluster := &entity.Cluster{Id: uuid.New(), Title: "the checkout page takes forever to load on mob" + entity.ClusterTitleTruncationMarker}
	clusterRepo := &fakeClusterRepo{cluster: cluster}
	synth := &fakeSynth{summary: "s", title: "Checkout performance on mobile"}
	g := New(&fakeNoteRepo{active: []*entity.Note{activeNote("Eng", 7.0)}}, clusterRepo, &fakeSnapshotRepo{}, synth, nopLogger{})

	_, err := g.Generate(context.Background(), cluster.Id)

	require.NoError(t, err)
	assert.Equal(t, 1, synth.titleCalls)
	require.Len(t, clusterRepo.updated, 1)
	assert.Equal(t, "Checkout performance on mobile", clusterRepo.updated[0].Title)
}

func TestGenerate_RegeneratesTitleWhenActiveSetDrifted(t *testing.T) {
	cluster := &entity.Cluster{Id: uuid.New(), Title: "Old theme name"}
	clusterRepo := &fakeClusterRepo{cluster: cluster}
	// Last snapshot saw 5 active notes, moderation has since refused some.
	snaps := &fakeSnapshotRepo{latest: &entity.ClusterSnapshot{NoteCount: 5}}
	synth := &fakeSynth{summary: "s", title: "Narrower theme name"}
	g := New(&fakeNoteRepo{active: []*entity.Note{activeNote("Eng", 7.0), activeNote("Eng", 6.0)}}, clusterRepo, snaps, synth, nopLogger{})

	_, err := g.Generate(context.Background(), cluster.Id)

	require.NoError(t, err)
	assert.Equal(t, 1, synth.titleCalls)
	assert.Equal(t, "Narrower theme name", cluster.Title)
}

func TestGenerate_FirstSnapshotKeepsRealTitle(t *testing.T) {
	cluster := &entity.Cluster{Id: uuid.New(), Title: "Deliberate short title"}
	synth := &fakeSynth{summary: "s", title: "Should not be used"}
	// No previous snapshot and no placeholder marker: title stays.
	g := New(&fakeNoteRepo{active: []*entity.Note{activeNote("Eng", 7.0)}}, &fakeClusterRepo{cluster: cluster}, &fakeSnapshotRepo{}, synth, nopLogger{})

	_, err := g.Generate(context.Background(), cluster.Id)

	require.NoError(t, err)
	assert.Equal(t, 0, synth.titleCalls)
	assert.Equal(t, "Deliberate short title", cluster.Title)
}

func TestAverageScore_SkipsUnscoredNotes(t *testing.T) {
	scored := activeNote("Eng", 9.0)
	unscored := activeNote("Eng", 0)
	unscored.Score = nil

	assert.Equal(t, 9.0, averageScore([]*entity.Note{scored, unscored}))
	assert.Equal(t, 0.0, averageScore([]*entity.Note{unscored}))
}

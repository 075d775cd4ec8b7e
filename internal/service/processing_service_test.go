package service

import (
	"context"
	"fmt"
	"testing"

	"sigment-be/internal/config"
	"sigment-be/internal/dto"
	"sigment-be/internal/entity"
	"sigment-be/internal/repository/contract"
	"sigment-be/internal/repository/specification"
	"sigment-be/internal/repository/unitofwork"
	"sigment-be/pkg/embedding"
	"sigment-be/pkg/llm"
	pkgNats "sigment-be/pkg/nats"

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
	notes      map[uuid.UUID]*entity.Note
	candidates []*contract.ScoredNote
}

func (f *fakeNoteRepo) FindOneWithAuthor(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	return f.findBySpecs(specs), nil
}

func (f *fakeNoteRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	return f.findBySpecs(specs), nil
}

func (f *fakeNoteRepo) findBySpecs(specs []specification.Specification) *entity.Note {
	for _, s := range specs {
		if byID, ok := s.(specification.ByID); ok {
			return f.notes[byID.ID]
		}
	}
	return nil
}

func (f *fakeNoteRepo) Update(ctx context.Context, note *entity.Note) error {
	f.notes[note.Id] = note
	return nil
}

func (f *fakeNoteRepo) SearchSimilarWithScore(ctx context.Context, emb []float32, limit int, organizationId, pillarId uuid.UUID, threshold float64) ([]*contract.ScoredNote, error) {
	var out []*contract.ScoredNote
	for _, c := range f.candidates {
		if c.Similarity >= threshold {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakePillarRepo struct {
	contract.PillarRepository
	pillars []*entity.Pillar
}

func (f *fakePillarRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Pillar, error) {
	return f.pillars, nil
}

func (f *fakePillarRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Pillar, error) {
	var name string
	for _, s := range specs {
		if byName, ok := s.(specification.ByName); ok {
			name = byName.Name
		}
	}
	for _, p := range f.pillars {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, nil
}

func (f *fakePillarRepo) Create(ctx context.Context, pillar *entity.Pillar) error {
	f.pillars = append(f.pillars, pillar)
	return nil
}

type fakeClusterRepo struct {
	contract.ClusterRepository
	clusters map[uuid.UUID]*entity.Cluster
	created  []*entity.Cluster
}

func (f *fakeClusterRepo) Create(ctx context.Context, cluster *entity.Cluster) error {
	f.clusters[cluster.Id] = cluster
	f.created = append(f.created, cluster)
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

func (f *fakeClusterRepo) IncrementNoteCount(ctx context.Context, id uuid.UUID) error {
	if c, ok := f.clusters[id]; ok {
		c.NoteCount++
	}
	return nil
}

type fakeUow struct {
	notes    *fakeNoteRepo
	pillars  *fakePillarRepo
	clusters *fakeClusterRepo
}

func (f *fakeUow) Begin(ctx context.Context) error { return nil }
func (f *fakeUow) Commit() error                   { return nil }
func (f *fakeUow) Rollback() error                 { return nil }

func (f *fakeUow) OrganizationRepository() contract.OrganizationRepository       { return nil }
func (f *fakeUow) UserRepository() contract.UserRepository                       { return nil }
func (f *fakeUow) NoteRepository() contract.NoteRepository                       { return f.notes }
func (f *fakeUow) PillarRepository() contract.PillarRepository                   { return f.pillars }
func (f *fakeUow) ClusterRepository() contract.ClusterRepository                 { return f.clusters }
func (f *fakeUow) ClusterSnapshotRepository() contract.ClusterSnapshotRepository { return nil }
func (f *fakeUow) LifecycleEventRepository() contract.LifecycleEventRepository   { return nil }

type fakeFactory struct {
	uow *fakeUow
}

func (f *fakeFactory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return f.uow
}

type fakeLLM struct {
	response string
	err      error
	calls    int
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return f.response, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	f.calls++
	return f.response, f.err
}

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Generate(text string, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2, 0.3}},
	}, nil
}

type publishedJob struct {
	subject string
	payload interface{}
}

type fakeJobPublisher struct {
	jobs []publishedJob
}

func (f *fakeJobPublisher) PublishJob(ctx context.Context, subject string, payload interface{}) error {
	f.jobs = append(f.jobs, publishedJob{subject: subject, payload: payload})
	return nil
}

func (f *fakeJobPublisher) bySubject(subject string) []publishedJob {
	var out []publishedJob
	for _, j := range f.jobs {
		if j.subject == subject {
			out = append(out, j)
		}
	}
	return out
}

type fakeLifecycle struct {
	emitted []dto.LifecycleEventMessage
}

func (f *fakeLifecycle) Emit(ctx context.Context, msg dto.LifecycleEventMessage) {
	f.emitted = append(f.emitted, msg)
}

func (f *fakeLifecycle) eventTypes() []string {
	var out []string
	for _, e := range f.emitted {
		out = append(out, e.EventType)
	}
	return out
}

type pipelineFixture struct {
	svc       IProcessingService
	notes     *fakeNoteRepo
	pillars   *fakePillarRepo
	clusters  *fakeClusterRepo
	jobs      *fakeJobPublisher
	lifecycle *fakeLifecycle
	llm       *fakeLLM
	note      *entity.Note
	pillar    *entity.Pillar
}

func validJudgment(pillar *entity.Pillar, score float64) string {
	return fmt.Sprintf(`{"title": "Slow mobile checkout", "clarified_text": "The mobile checkout page loads slowly.", "pillar_id": "%s", "pillar_name": "%s", "score": %.1f, "reasoning": "Customer-facing latency."}`,
		pillar.Id, pillar.Name, score)
}

func newPipelineFixture(t *testing.T, maxAttempts int) *pipelineFixture {
	t.Helper()

	org := uuid.New()
	pillar := &entity.Pillar{Id: uuid.New(), OrganizationId: org, Name: "Customer Experience"}
	author := &entity.User{Id: uuid.New(), OrganizationId: org, Department: "Engineering", Seniority: "Senior"}
	note := &entity.Note{
		Id:             uuid.New(),
		OrganizationId: org,
		AuthorId:       author.Id,
		RawContent:     "checkout slow on phone",
		Status:         entity.NoteStatusDraft,
		Author:         author,
	}

	f := &pipelineFixture{
		notes:     &fakeNoteRepo{notes: map[uuid.UUID]*entity.Note{note.Id: note}},
		pillars:   &fakePillarRepo{pillars: []*entity.Pillar{pillar}},
		clusters:  &fakeClusterRepo{clusters: map[uuid.UUID]*entity.Cluster{}},
		jobs:      &fakeJobPublisher{},
		lifecycle: &fakeLifecycle{},
		llm:       &fakeLLM{response: validJudgment(pillar, 7.5)},
		note:      note,
		pillar:    pillar,
	}

	cfg := config.PipelineConfig{
		SimilarityThreshold: 0.75,
		MaxCandidates:       10,
		ScoreHighBar:        8.5,
		PillarViabilityBar:  5.0,
		MaxAttempts:         maxAttempts,
		SoftTimeoutSeconds:  30,
		HardTimeoutSeconds:  60,
		PillarCacheSeconds:  60,
	}

	f.svc = NewProcessingService(
		&fakeFactory{uow: &fakeUow{notes: f.notes, pillars: f.pillars, clusters: f.clusters}},
		f.llm,
		&fakeEmbedder{},
		f.jobs,
		nil, // job consumers are not started in these tests
		f.lifecycle,
		nil,
		cfg,
		"",
		nopLogger{},
	)
	return f
}

func TestProcessNote_HappyPathCreatesCluster(t *testing.T) {
	f := newPipelineFixture(t, 3)

	err := f.svc.ProcessNote(context.Background(), f.note.Id)
	require.NoError(t, err)

	note := f.notes.notes[f.note.Id]
	assert.Equal(t, entity.NoteStatusProcessed, note.Status)
	require.NotNil(t, note.Title)
	assert.Equal(t, "Slow mobile checkout", *note.Title)
	require.NotNil(t, note.PillarId)
	assert.Equal(t, f.pillar.Id, *note.PillarId)
	require.NotNil(t, note.Score)
	assert.Equal(t, 7.5, *note.Score)
	assert.NotNil(t, note.Embedding)
	assert.NotNil(t, note.ProcessedAt)
	assert.Nil(t, note.ProcessingError)

	// No similar notes exist, so a cluster was opened for it.
	require.Len(t, f.clusters.created, 1)
	require.NotNil(t, note.ClusterId)
	assert.Equal(t, f.clusters.created[0].Id, *note.ClusterId)

	snapshotJobs := f.jobs.bySubject(pkgNats.SubjectClusterSnapshot)
	require.Len(t, snapshotJobs, 1)
	assert.Equal(t, dto.ClusterSnapshotJob{ClusterId: f.clusters.created[0].Id}, snapshotJobs[0].payload)

	assert.Equal(t, []string{entity.EventAnalysisComplete, entity.EventNoteClustered}, f.lifecycle.eventTypes())
}

func TestProcessNote_JoinsExistingCluster(t *testing.T) {
	f := newPipelineFixture(t, 3)

	existing := &entity.Cluster{Id: uuid.New(), OrganizationId: f.note.OrganizationId, PillarId: f.pillar.Id, Title: "Checkout issues", NoteCount: 2}
	f.clusters.clusters[existing.Id] = existing
	f.notes.candidates = []*contract.ScoredNote{
		{Note: &entity.Note{Id: uuid.New(), ClusterId: &existing.Id}, Similarity: 0.88},
	}

	err := f.svc.ProcessNote(context.Background(), f.note.Id)
	require.NoError(t, err)

	note := f.notes.notes[f.note.Id]
	require.NotNil(t, note.ClusterId)
	assert.Equal(t, existing.Id, *note.ClusterId)
	assert.Equal(t, 3, existing.NoteCount)
	assert.Empty(t, f.clusters.created)
}

func TestProcessNote_MissingNoteAcksJob(t *testing.T) {
	f := newPipelineFixture(t, 3)

	err := f.svc.ProcessNote(context.Background(), uuid.New())

	require.NoError(t, err, "missing note must ack, not redeliver")
	assert.Empty(t, f.jobs.jobs)
	assert.Empty(t, f.lifecycle.emitted)
}

func TestProcessNote_NoPillarsDeadLettersImmediately(t *testing.T) {
	f := newPipelineFixture(t, 3)
	f.pillars.pillars = nil

	err := f.svc.ProcessNote(context.Background(), f.note.Id)
	require.NoError(t, err, "dead-lettered jobs still ack")

	note := f.notes.notes[f.note.Id]
	assert.Equal(t, entity.NoteStatusDraft, note.Status)
	require.NotNil(t, note.ProcessingError)
	assert.True(t, note.ProcessingError.Permanent, "config error must not burn retries")
	assert.Equal(t, 1, note.ProcessingError.Attempts)
	assert.Equal(t, StepAnalyze, note.ProcessingError.Step)

	deadJobs := f.jobs.bySubject(pkgNats.SubjectDeadLetter)
	require.Len(t, deadJobs, 1)
	assert.Contains(t, f.lifecycle.eventTypes(), entity.EventProcessingFailed)
}

func TestProcessNote_MalformedJudgmentExhaustsRetries(t *testing.T) {
	f := newPipelineFixture(t, 2)
	f.llm.response = "not a judgment at all"

	err := f.svc.ProcessNote(context.Background(), f.note.Id)
	require.NoError(t, err)

	note := f.notes.notes[f.note.Id]
	assert.Equal(t, entity.NoteStatusDraft, note.Status)
	require.NotNil(t, note.ProcessingError)
	assert.False(t, note.ProcessingError.Permanent)
	assert.Equal(t, 2, note.ProcessingError.Attempts)
	assert.Equal(t, 2, f.llm.calls, "each attempt re-runs the analysis")

	require.Len(t, f.jobs.bySubject(pkgNats.SubjectDeadLetter), 1)
	assert.Empty(t, f.jobs.bySubject(pkgNats.SubjectClusterSnapshot))
}

func TestProcessNote_LowScoreLandsInFallbackPillar(t *testing.T) {
	f := newPipelineFixture(t, 3)
	f.llm.response = validJudgment(f.pillar, 3.0)

	err := f.svc.ProcessNote(context.Background(), f.note.Id)
	require.NoError(t, err)

	note := f.notes.notes[f.note.Id]
	assert.Equal(t, entity.NoteStatusProcessed, note.Status)

	fallback, findErr := f.pillars.FindOne(context.Background(), specification.ByName{Name: entity.FallbackPillarName})
	require.NoError(t, findErr)
	require.NotNil(t, fallback, "fallback pillar is created lazily")
	require.NotNil(t, note.PillarId)
	assert.Equal(t, fallback.Id, *note.PillarId)
	require.NotNil(t, note.Score)
	assert.Equal(t, 3.0, *note.Score, "low score is kept, only the pillar is overridden")
}

package service

import (
	"context"
	"testing"

	"sigment-be/internal/dto"
	"sigment-be/internal/entity"
	pkgNats "sigment-be/pkg/nats"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type noteFixture struct {
	svc       INoteService
	notes     *fakeNoteRepo
	jobs      *fakeJobPublisher
	lifecycle *fakeLifecycle
	org       uuid.UUID
	user      uuid.UUID
}

func newNoteFixture(t *testing.T) *noteFixture {
	t.Helper()

	f := &noteFixture{
		notes:     &fakeNoteRepo{notes: map[uuid.UUID]*entity.Note{}},
		jobs:      &fakeJobPublisher{},
		lifecycle: &fakeLifecycle{},
		org:       uuid.New(),
		user:      uuid.New(),
	}
	uow := &fakeUow{notes: f.notes, pillars: &fakePillarRepo{}, clusters: &fakeClusterRepo{clusters: map[uuid.UUID]*entity.Cluster{}}}
	f.svc = NewNoteService(&fakeFactory{uow: uow}, f.jobs, f.lifecycle)
	return f
}

func (f *noteFixture) addNote(status string, clusterId *uuid.UUID) *entity.Note {
	note := &entity.Note{
		Id:             uuid.New(),
		OrganizationId: f.org,
		AuthorId:       f.user,
		RawContent:     "some note",
		Status:         status,
		ClusterId:      clusterId,
	}
	f.notes.notes[note.Id] = note
	return note
}

func (f *fakeNoteRepo) Create(ctx context.Context, note *entity.Note) error {
	f.notes[note.Id] = note
	return nil
}

func TestSubmit_EnqueuesProcessingJob(t *testing.T) {
	f := newNoteFixture(t)

	res, err := f.svc.Submit(context.Background(), f.org, f.user, &dto.SubmitNoteRequest{Content: "observed churn spike"})

	require.NoError(t, err)
	assert.Equal(t, entity.NoteStatusDraft, res.Status)

	stored := f.notes.notes[res.Id]
	require.NotNil(t, stored)
	assert.Equal(t, f.org, stored.OrganizationId)
	assert.Equal(t, "observed churn spike", stored.RawContent)

	jobs := f.jobs.bySubject(pkgNats.SubjectNoteProcess)
	require.Len(t, jobs, 1)
	assert.Equal(t, dto.NoteProcessJob{NoteId: res.Id}, jobs[0].payload)
	assert.Equal(t, []string{entity.EventSubmissionReceived}, f.lifecycle.eventTypes())
}

func TestModerate_ActiveSetChangeEnqueuesSnapshot(t *testing.T) {
	f := newNoteFixture(t)
	clusterId := uuid.New()
	note := f.addNote(entity.NoteStatusProcessed, &clusterId)

	res, err := f.svc.Moderate(context.Background(), f.org, f.user, &dto.ModerateNoteRequest{Id: note.Id, Status: entity.NoteStatusRefused})

	require.NoError(t, err)
	assert.Equal(t, entity.NoteStatusRefused, res.Status)

	jobs := f.jobs.bySubject(pkgNats.SubjectClusterSnapshot)
	require.Len(t, jobs, 1, "leaving the active set must refresh the cluster aggregate")
	assert.Equal(t, dto.ClusterSnapshotJob{ClusterId: clusterId}, jobs[0].payload)
	assert.Equal(t, []string{entity.EventModerationChanged}, f.lifecycle.eventTypes())
}

func TestModerate_ActiveToActiveSkipsSnapshot(t *testing.T) {
	f := newNoteFixture(t)
	clusterId := uuid.New()
	note := f.addNote(entity.NoteStatusProcessed, &clusterId)

	_, err := f.svc.Moderate(context.Background(), f.org, f.user, &dto.ModerateNoteRequest{Id: note.Id, Status: entity.NoteStatusApproved})

	require.NoError(t, err)
	assert.Empty(t, f.jobs.bySubject(pkgNats.SubjectClusterSnapshot), "processed -> approved does not change the active set")
}

func TestModerate_RejectsUnprocessedNote(t *testing.T) {
	f := newNoteFixture(t)
	note := f.addNote(entity.NoteStatusProcessing, nil)

	_, err := f.svc.Moderate(context.Background(), f.org, f.user, &dto.ModerateNoteRequest{Id: note.Id, Status: entity.NoteStatusApproved})

	assert.Error(t, err)
	assert.Empty(t, f.jobs.jobs)
}

func TestRetry_OnlyDraftNotes(t *testing.T) {
	f := newNoteFixture(t)
	draft := f.addNote(entity.NoteStatusDraft, nil)
	draft.ProcessingError = &entity.ProcessingError{Step: StepEmbed, Message: "provider down", Attempts: 5}
	processed := f.addNote(entity.NoteStatusProcessed, nil)

	res, err := f.svc.Retry(context.Background(), f.org, draft.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.NoteStatusDraft, res.Status)
	require.Len(t, f.jobs.bySubject(pkgNats.SubjectNoteProcess), 1)

	_, err = f.svc.Retry(context.Background(), f.org, processed.Id)
	assert.Error(t, err)
}

package service

import (
	"context"
	"time"

	"sigment-be/internal/dto"
	"sigment-be/internal/entity"
	"sigment-be/internal/repository/specification"
	"sigment-be/internal/repository/unitofwork"
	pkgNats "sigment-be/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type INoteService interface {
	Submit(ctx context.Context, organizationId, userId uuid.UUID, req *dto.SubmitNoteRequest) (*dto.SubmitNoteResponse, error)
	Show(ctx context.Context, organizationId uuid.UUID, id uuid.UUID) (*dto.ShowNoteResponse, error)
	List(ctx context.Context, organizationId uuid.UUID, req *dto.ListNotesRequest) ([]*dto.ShowNoteResponse, error)
	Moderate(ctx context.Context, organizationId, actorId uuid.UUID, req *dto.ModerateNoteRequest) (*dto.ModerateNoteResponse, error)
	Retry(ctx context.Context, organizationId uuid.UUID, id uuid.UUID) (*dto.RetryNoteResponse, error)
}

type noteService struct {
	uowFactory   unitofwork.RepositoryFactory
	jobPublisher JobPublisher
	lifecycle    ILifecycleService
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	jobPublisher JobPublisher,
	lifecycle ILifecycleService,
) INoteService {
	return &noteService{
		uowFactory:   uowFactory,
		jobPublisher: jobPublisher,
		lifecycle:    lifecycle,
	}
}

// Submit accepts a raw note and enqueues it for asynchronous triage. The
// response carries only the id and status; all analysis happens off the
// request path.
func (s *noteService) Submit(ctx context.Context, organizationId, userId uuid.UUID, req *dto.SubmitNoteRequest) (*dto.SubmitNoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note := entity.Note{
		Id:             uuid.New(),
		OrganizationId: organizationId,
		AuthorId:       userId,
		RawContent:     req.Content,
		Status:         entity.NoteStatusDraft,
		CreatedAt:      time.Now(),
	}
	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return nil, err
	}

	job := dto.NoteProcessJob{NoteId: note.Id}
	if err := s.jobPublisher.PublishJob(ctx, pkgNats.SubjectNoteProcess, job); err != nil {
		// The note row survives; a manual retry re-enqueues it.
		return nil, err
	}

	s.lifecycle.Emit(ctx, dto.LifecycleEventMessage{
		NoteId:         note.Id,
		OrganizationId: organizationId,
		EventType:      entity.EventSubmissionReceived,
		Title:          "Submission received",
		Description:    "Note accepted and queued for analysis.",
		ActorId:        &userId,
	})

	return &dto.SubmitNoteResponse{Id: note.Id, Status: note.Status}, nil
}

func (s *noteService) Show(ctx context.Context, organizationId uuid.UUID, id uuid.UUID) (*dto.ShowNoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByOrganization{OrganizationID: organizationId},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Note not found")
	}

	return noteToResponse(note), nil
}

func (s *noteService) List(ctx context.Context, organizationId uuid.UUID, req *dto.ListNotesRequest) ([]*dto.ShowNoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	specs := []specification.Specification{
		specification.ByOrganization{OrganizationID: organizationId},
		specification.OrderBy{Field: "created_at", Desc: true},
	}
	if req.Status != "" {
		specs = append(specs, specification.ByStatus{Status: req.Status})
	}
	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	specs = append(specs, specification.Pagination{Limit: limit, Offset: req.Offset})

	notes, err := uow.NoteRepository().FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.ShowNoteResponse, 0, len(notes))
	for _, note := range notes {
		out = append(out, noteToResponse(note))
	}
	return out, nil
}

// Moderate applies a reviewer decision. Moving a clustered note in or out of
// the active set changes its cluster's aggregate, so a fresh snapshot job is
// enqueued for the cluster.
func (s *noteService) Moderate(ctx context.Context, organizationId, actorId uuid.UUID, req *dto.ModerateNoteRequest) (*dto.ModerateNoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.ByOrganization{OrganizationID: organizationId},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Note not found")
	}
	if note.Status == entity.NoteStatusDraft || note.Status == entity.NoteStatusProcessing {
		return nil, fiber.NewError(fiber.StatusConflict, "Note has not finished processing")
	}

	previous := note.Status
	if previous == req.Status {
		return &dto.ModerateNoteResponse{Id: note.Id, Status: note.Status}, nil
	}

	note.Status = req.Status
	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return nil, err
	}

	s.lifecycle.Emit(ctx, dto.LifecycleEventMessage{
		NoteId:         note.Id,
		OrganizationId: organizationId,
		EventType:      entity.EventModerationChanged,
		Title:          "Moderation changed",
		Description:    "Reviewer moved note from " + previous + " to " + note.Status + ".",
		ActorId:        &actorId,
	})

	// Only transitions that change active-set membership move the aggregate.
	if note.ClusterId != nil && entity.IsActiveNoteStatus(previous) != entity.IsActiveNoteStatus(note.Status) {
		job := dto.ClusterSnapshotJob{ClusterId: *note.ClusterId}
		if err := s.jobPublisher.PublishJob(ctx, pkgNats.SubjectClusterSnapshot, job); err != nil {
			return nil, err
		}
	}

	return &dto.ModerateNoteResponse{Id: note.Id, Status: note.Status}, nil
}

// Retry re-enqueues a note that was parked in draft by a failed run. The
// stale error payload is kept on the row until the worker picks the job up.
func (s *noteService) Retry(ctx context.Context, organizationId uuid.UUID, id uuid.UUID) (*dto.RetryNoteResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.ByOrganization{OrganizationID: organizationId},
	)
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, fiber.NewError(fiber.StatusNotFound, "Note not found")
	}
	if note.Status != entity.NoteStatusDraft {
		return nil, fiber.NewError(fiber.StatusConflict, "Only draft notes can be retried")
	}

	job := dto.NoteProcessJob{NoteId: note.Id}
	if err := s.jobPublisher.PublishJob(ctx, pkgNats.SubjectNoteProcess, job); err != nil {
		return nil, err
	}

	return &dto.RetryNoteResponse{Id: note.Id, Status: note.Status}, nil
}

func noteToResponse(note *entity.Note) *dto.ShowNoteResponse {
	res := &dto.ShowNoteResponse{
		Id:               note.Id,
		RawContent:       note.RawContent,
		Title:            note.Title,
		ClarifiedContent: note.ClarifiedContent,
		PillarId:         note.PillarId,
		ClusterId:        note.ClusterId,
		Score:            note.Score,
		Reasoning:        note.Reasoning,
		Status:           note.Status,
		CreatedAt:        note.CreatedAt,
		ProcessedAt:      note.ProcessedAt,
	}
	if note.ProcessingError != nil {
		res.ProcessingError = &dto.ProcessingErrorResponse{
			Step:      note.ProcessingError.Step,
			Message:   note.ProcessingError.Message,
			Attempts:  note.ProcessingError.Attempts,
			FailedAt:  note.ProcessingError.FailedAt,
			Permanent: note.ProcessingError.Permanent,
		}
	}
	return res
}

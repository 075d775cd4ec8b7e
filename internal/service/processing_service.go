package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"sigment-be/internal/config"
	"sigment-be/internal/dto"
	"sigment-be/internal/entity"
	"sigment-be/internal/pkg/logger"
	"sigment-be/internal/pkg/mailer"
	"sigment-be/internal/repository/specification"
	"sigment-be/internal/repository/unitofwork"
	"sigment-be/pkg/embedding"
	"sigment-be/pkg/llm"
	pkgNats "sigment-be/pkg/nats"
	"sigment-be/pkg/retry"
	"sigment-be/pkg/triage/analyzer"
	"sigment-be/pkg/triage/cluster"
	"sigment-be/pkg/triage/snapshot"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// Pipeline step names recorded in a note's processing error.
const (
	StepAnalyze = "analyze"
	StepEmbed   = "embed"
	StepCluster = "cluster"
	StepPersist = "persist"
)

// JobPublisher is the slice of the NATS publisher the pipeline needs.
type JobPublisher interface {
	PublishJob(ctx context.Context, subject string, payload interface{}) error
}

// IProcessingService runs the asynchronous triage pipeline. ProcessNote and
// GenerateSnapshot are the two job handlers; Start wires them to the work
// queue.
type IProcessingService interface {
	Start(ctx context.Context) error
	ProcessNote(ctx context.Context, noteId uuid.UUID) error
	GenerateSnapshot(ctx context.Context, clusterId uuid.UUID) error
}

type processingService struct {
	uowFactory        unitofwork.RepositoryFactory
	llmProvider       llm.LLMProvider
	embeddingProvider embedding.EmbeddingProvider
	jobPublisher      JobPublisher
	subscriber        *pkgNats.Subscriber
	lifecycle         ILifecycleService
	emailService      mailer.IEmailService
	pillarCache       *gocache.Cache
	policy            retry.Policy
	cfg               config.PipelineConfig
	operatorEmail     string
	log               logger.ILogger
}

func NewProcessingService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	embeddingProvider embedding.EmbeddingProvider,
	jobPublisher JobPublisher,
	subscriber *pkgNats.Subscriber,
	lifecycle ILifecycleService,
	emailService mailer.IEmailService,
	cfg config.PipelineConfig,
	operatorEmail string,
	log logger.ILogger,
) IProcessingService {
	policy := retry.DefaultPolicy()
	policy.MaxAttempts = cfg.MaxAttempts
	policy.MaxElapsedTime = time.Duration(cfg.SoftTimeoutSeconds) * time.Second

	cacheTTL := time.Duration(cfg.PillarCacheSeconds) * time.Second

	return &processingService{
		uowFactory:        uowFactory,
		llmProvider:       llmProvider,
		embeddingProvider: embeddingProvider,
		jobPublisher:      jobPublisher,
		subscriber:        subscriber,
		lifecycle:         lifecycle,
		emailService:      emailService,
		pillarCache:       gocache.New(cacheTTL, 2*cacheTTL),
		policy:            policy,
		cfg:               cfg,
		operatorEmail:     operatorEmail,
		log:               log,
	}
}

// Start registers the durable job consumers. Each handler owns its retry
// budget; returning nil after exhaustion acks the message so the queue does
// not redeliver a job that already dead-lettered.
func (s *processingService) Start(ctx context.Context) error {
	err := s.subscriber.SubscribeJobs(pkgNats.SubjectNoteProcess, "note-processor", func(ctx context.Context, payload []byte) error {
		var job dto.NoteProcessJob
		if err := json.Unmarshal(payload, &job); err != nil {
			s.log.Error("pipeline", "invalid note job payload, dropping", map[string]interface{}{"error": err.Error()})
			return nil
		}
		return s.ProcessNote(ctx, job.NoteId)
	})
	if err != nil {
		return fmt.Errorf("subscribe note jobs: %w", err)
	}

	err = s.subscriber.SubscribeJobs(pkgNats.SubjectClusterSnapshot, "snapshot-generator", func(ctx context.Context, payload []byte) error {
		var job dto.ClusterSnapshotJob
		if err := json.Unmarshal(payload, &job); err != nil {
			s.log.Error("pipeline", "invalid snapshot job payload, dropping", map[string]interface{}{"error": err.Error()})
			return nil
		}
		return s.GenerateSnapshot(ctx, job.ClusterId)
	})
	if err != nil {
		return fmt.Errorf("subscribe snapshot jobs: %w", err)
	}

	return nil
}

// ProcessNote runs the full triage pipeline for one note: analyze, embed,
// cluster, persist, then enqueue a snapshot of the touched cluster. The
// whole unit retries together; a permanent failure or an exhausted budget
// parks the note back in draft with an inspectable error and dead-letters
// the job. The returned error is nil in both outcomes so the queue acks.
func (s *processingService) ProcessNote(ctx context.Context, noteId uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.HardTimeoutSeconds)*time.Second)
	defer cancel()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	note, err := uow.NoteRepository().FindOneWithAuthor(ctx, specification.ByID{ID: noteId})
	if err != nil {
		s.log.Error("pipeline", "failed to load note", map[string]interface{}{"note_id": noteId, "error": err.Error()})
		return err // transport-level retry, the note was never touched
	}
	if note == nil || note.IsDeleted {
		s.log.Warn("pipeline", "note gone before processing, dropping job", map[string]interface{}{"note_id": noteId})
		return nil
	}

	note.Status = entity.NoteStatusProcessing
	note.ProcessingError = nil
	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return fmt.Errorf("mark note processing: %w", err)
	}

	attempts := 0
	var clusterId uuid.UUID
	runErr := s.policy.ExecuteNotify(ctx, func(ctx context.Context) error {
		attempts++
		var err error
		clusterId, err = s.runPipeline(ctx, note)
		return err
	}, func(err error, next time.Duration) {
		s.log.Warn("pipeline", "attempt failed, backing off", map[string]interface{}{
			"note_id": noteId,
			"attempt": attempts,
			"retry_in": next.String(),
			"error":   err.Error(),
		})
	})

	if runErr != nil {
		s.deadLetter(ctx, note, attempts, runErr)
		return nil
	}

	s.lifecycle.Emit(ctx, dto.LifecycleEventMessage{
		NoteId:         note.Id,
		OrganizationId: note.OrganizationId,
		EventType:      entity.EventNoteClustered,
		Title:          "Note clustered",
		Description:    "Note was analyzed and placed in a cluster.",
		Payload: map[string]interface{}{
			"cluster_id": clusterId,
			"pillar_id":  note.PillarId,
			"score":      note.Score,
		},
	})

	job := dto.ClusterSnapshotJob{ClusterId: clusterId}
	if err := s.jobPublisher.PublishJob(ctx, pkgNats.SubjectClusterSnapshot, job); err != nil {
		// The note is already persisted; a lost snapshot job heals on the
		// cluster's next membership change.
		s.log.Error("pipeline", "failed to enqueue snapshot job", map[string]interface{}{
			"cluster_id": clusterId,
			"error":      err.Error(),
		})
	}

	return nil
}

// runPipeline is one attempt over the whole unit of work. Every step runs
// fresh on each attempt so a retry sees current state.
func (s *processingService) runPipeline(ctx context.Context, note *entity.Note) (uuid.UUID, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	pillars, err := s.tenantPillars(ctx, uow, note.OrganizationId)
	if err != nil {
		return uuid.Nil, stepError(StepAnalyze, err)
	}

	judge := analyzer.New(s.llmProvider, uow.PillarRepository(), s.cfg.PillarViabilityBar, s.cfg.ScoreHighBar)
	judgment, err := judge.Analyze(ctx, note.RawContent, note.Author, pillars)
	if err != nil {
		if errors.Is(err, analyzer.ErrNoPillars) {
			// Tenant misconfiguration; retrying cannot fix it.
			return uuid.Nil, stepError(StepAnalyze, retry.Permanent(err))
		}
		return uuid.Nil, stepError(StepAnalyze, err)
	}
	if judgment.UsedFallback {
		// The fallback pillar was just created or looked up outside the
		// cache; drop the stale set.
		s.pillarCache.Delete(note.OrganizationId.String())
	}

	s.lifecycle.Emit(ctx, dto.LifecycleEventMessage{
		NoteId:         note.Id,
		OrganizationId: note.OrganizationId,
		EventType:      entity.EventAnalysisComplete,
		Title:          "Analysis complete",
		Description:    fmt.Sprintf("Note scored %.1f and assigned to pillar %q.", judgment.Score, judgment.PillarName),
	})

	embedRes, err := s.embeddingProvider.Generate(judgment.ClarifiedText, "RETRIEVAL_DOCUMENT")
	if err != nil {
		return uuid.Nil, stepError(StepEmbed, err)
	}

	note.Title = &judgment.Title
	note.ClarifiedContent = &judgment.ClarifiedText
	note.PillarId = &judgment.PillarId
	note.Embedding = embedRes.Embedding.Values
	note.Score = &judgment.Score
	note.Reasoning = &judgment.Reasoning

	resolver := cluster.New(uow.NoteRepository(), uow.ClusterRepository(), s.cfg.SimilarityThreshold, s.cfg.MaxCandidates)
	resolution, err := resolver.Resolve(ctx, note, note.OrganizationId, judgment.PillarId)
	if err != nil {
		return uuid.Nil, stepError(StepCluster, err)
	}

	now := time.Now()
	note.ClusterId = &resolution.Cluster.Id
	note.Status = entity.NoteStatusProcessed
	note.ProcessedAt = &now
	note.ProcessingError = nil
	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return uuid.Nil, stepError(StepPersist, err)
	}

	return resolution.Cluster.Id, nil
}

// tenantPillars returns the organization's pillar set, cached per tenant so
// N concurrent jobs do not each hit the table.
func (s *processingService) tenantPillars(ctx context.Context, uow unitofwork.UnitOfWork, organizationId uuid.UUID) ([]*entity.Pillar, error) {
	key := organizationId.String()
	if cached, ok := s.pillarCache.Get(key); ok {
		return cached.([]*entity.Pillar), nil
	}

	pillars, err := uow.PillarRepository().FindAll(ctx, specification.ByOrganization{OrganizationID: organizationId})
	if err != nil {
		return nil, fmt.Errorf("load tenant pillars: %w", err)
	}
	s.pillarCache.SetDefault(key, pillars)
	return pillars, nil
}

// deadLetter parks the note back in draft with its failure attached, emits
// the audit event, publishes to the dead-letter subject and alerts the
// operator.
func (s *processingService) deadLetter(ctx context.Context, note *entity.Note, attempts int, cause error) {
	permanent := retry.IsPermanent(cause)
	step, message := splitStepError(cause)

	s.log.Error("pipeline", "note processing dead-lettered", map[string]interface{}{
		"note_id":   note.Id,
		"step":      step,
		"attempts":  attempts,
		"permanent": permanent,
		"error":     message,
	})

	// Best effort from here down: the note must land back in draft even if
	// the auxiliary notifications fail.
	uow := s.uowFactory.NewUnitOfWork(context.WithoutCancel(ctx))
	note.Status = entity.NoteStatusDraft
	note.ProcessingError = &entity.ProcessingError{
		Step:      step,
		Message:   message,
		Attempts:  attempts,
		FailedAt:  time.Now(),
		Permanent: permanent,
	}
	if err := uow.NoteRepository().Update(context.WithoutCancel(ctx), note); err != nil {
		s.log.Error("pipeline", "failed to park note in draft", map[string]interface{}{
			"note_id": note.Id,
			"error":   err.Error(),
		})
	}

	s.lifecycle.Emit(ctx, dto.LifecycleEventMessage{
		NoteId:         note.Id,
		OrganizationId: note.OrganizationId,
		EventType:      entity.EventProcessingFailed,
		Title:          "Processing failed",
		Description:    fmt.Sprintf("Note processing gave up at step %q after %d attempts.", step, attempts),
		Payload: map[string]interface{}{
			"step":      step,
			"permanent": permanent,
			"error":     message,
		},
	})

	deadJob := dto.DeadLetterJob{
		NoteId:    note.Id,
		Step:      step,
		Message:   message,
		Attempts:  attempts,
		Permanent: permanent,
	}
	if err := s.jobPublisher.PublishJob(context.WithoutCancel(ctx), pkgNats.SubjectDeadLetter, deadJob); err != nil {
		s.log.Error("pipeline", "failed to publish dead-letter job", map[string]interface{}{
			"note_id": note.Id,
			"error":   err.Error(),
		})
	}

	if s.emailService != nil && s.operatorEmail != "" {
		if err := s.emailService.SendDeadLetterAlert(s.operatorEmail, note.Id.String(), step, attempts, message); err != nil {
			s.log.Warn("pipeline", "failed to send operator alert", map[string]interface{}{
				"note_id": note.Id,
				"error":   err.Error(),
			})
		}
	}
}

// GenerateSnapshot materializes one snapshot for the cluster. Empty or
// vanished clusters are a no-op. Snapshot generation has no dead-letter
// path: the handler retries in place and acks, the next membership change
// enqueues a fresh job anyway.
func (s *processingService) GenerateSnapshot(ctx context.Context, clusterId uuid.UUID) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.HardTimeoutSeconds)*time.Second)
	defer cancel()

	runErr := s.policy.Execute(ctx, func(ctx context.Context) error {
		uow := s.uowFactory.NewUnitOfWork(ctx)
		generator := snapshot.New(
			uow.NoteRepository(),
			uow.ClusterRepository(),
			uow.ClusterSnapshotRepository(),
			snapshot.NewLLMSynthesizer(s.llmProvider),
			s.log,
		)
		_, err := generator.Generate(ctx, clusterId)
		return err
	})
	if runErr != nil {
		s.log.Error("pipeline", "snapshot generation gave up", map[string]interface{}{
			"cluster_id": clusterId,
			"error":      runErr.Error(),
		})
	}
	return nil
}

// stepError tags an error with the pipeline step that produced it, so the
// dead-letter payload can say where the job died.
type taggedError struct {
	step string
	err  error
}

func (e *taggedError) Error() string {
	return fmt.Sprintf("%s: %v", e.step, e.err)
}

func (e *taggedError) Unwrap() error {
	return e.err
}

func stepError(step string, err error) error {
	return &taggedError{step: step, err: err}
}

func splitStepError(err error) (step, message string) {
	var tagged *taggedError
	if errors.As(err, &tagged) {
		return tagged.step, tagged.err.Error()
	}
	return "pipeline", err.Error()
}

package service

import (
	"context"
	"encoding/json"
	"time"

	"sigment-be/internal/dto"
	"sigment-be/internal/entity"
	"sigment-be/internal/pkg/logger"
	"sigment-be/internal/repository/unitofwork"
	"sigment-be/pkg/events"
	pkgNats "sigment-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// ILifecycleService emits lifecycle events. Emission is fire-and-forget: a
// failure is logged and swallowed, never surfaced to the pipeline step that
// emitted it.
type ILifecycleService interface {
	Emit(ctx context.Context, msg dto.LifecycleEventMessage)
}

type lifecycleService struct {
	publisher IPublisherService
	log       logger.ILogger
}

func NewLifecycleService(publisher IPublisherService, log logger.ILogger) ILifecycleService {
	return &lifecycleService{publisher: publisher, log: log}
}

func (s *lifecycleService) Emit(ctx context.Context, msg dto.LifecycleEventMessage) {
	if msg.OccurredAt.IsZero() {
		msg.OccurredAt = time.Now()
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("lifecycle", "failed to marshal lifecycle event", map[string]interface{}{
			"event_type": msg.EventType,
			"note_id":    msg.NoteId,
			"error":      err.Error(),
		})
		return
	}

	if err := s.publisher.Publish(ctx, payload); err != nil {
		s.log.Error("lifecycle", "failed to publish lifecycle event", map[string]interface{}{
			"event_type": msg.EventType,
			"note_id":    msg.NoteId,
			"error":      err.Error(),
		})
	}
}

// ILifecycleConsumerService drains the in-process lifecycle topic into the
// append-only audit table and mirrors each event onto the NATS events
// stream for external subscribers.
type ILifecycleConsumerService interface {
	Consume(ctx context.Context) error
}

type lifecycleConsumerService struct {
	pubSub         *gochannel.GoChannel
	topicName      string
	uowFactory     unitofwork.RepositoryFactory
	eventPublisher *pkgNats.Publisher
	log            logger.ILogger
}

func NewLifecycleConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
) ILifecycleConsumerService {
	return &lifecycleConsumerService{
		pubSub:         pubSub,
		topicName:      topicName,
		uowFactory:     uowFactory,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func (cs *lifecycleConsumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *lifecycleConsumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.LifecycleEventMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.log.Error("lifecycle", "failed to unmarshal lifecycle message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // malformed messages can never succeed, drop them
		return
	}

	uow := cs.uowFactory.NewUnitOfWork(ctx)
	event := &entity.LifecycleEvent{
		Id:             uuid.New(),
		NoteId:         payload.NoteId,
		OrganizationId: payload.OrganizationId,
		EventType:      payload.EventType,
		Title:          payload.Title,
		Description:    payload.Description,
		ActorId:        payload.ActorId,
		Payload:        payload.Payload,
		CreatedAt:      payload.OccurredAt,
	}
	if err := uow.LifecycleEventRepository().Create(ctx, event); err != nil {
		cs.log.Error("lifecycle", "failed to persist lifecycle event", map[string]interface{}{
			"event_type": payload.EventType,
			"note_id":    payload.NoteId,
			"error":      err.Error(),
		})
		msg.Nack()
		return
	}

	if cs.eventPublisher != nil {
		evt := events.BaseEvent{
			Type: payload.EventType,
			Data: map[string]interface{}{
				"note_id":         payload.NoteId,
				"organization_id": payload.OrganizationId,
				"title":           payload.Title,
				"description":     payload.Description,
			},
			OccurredAt: payload.OccurredAt,
		}
		// Audit row is already committed; the external mirror is best effort.
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.log.Warn("lifecycle", "failed to mirror event to NATS", map[string]interface{}{
				"event_type": payload.EventType,
				"error":      err.Error(),
			})
		}
	}

	msg.Ack()
}

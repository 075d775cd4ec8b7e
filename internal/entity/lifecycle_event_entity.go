package entity

import (
	"time"

	"github.com/google/uuid"
)

// Lifecycle event types emitted by the pipeline.
const (
	EventSubmissionReceived = "SUBMISSION_RECEIVED"
	EventAnalysisComplete   = "ANALYSIS_COMPLETE"
	EventNoteClustered      = "NOTE_CLUSTERED"
	EventProcessingFailed   = "PROCESSING_FAILED"
	EventModerationChanged  = "MODERATION_CHANGED"
)

type LifecycleEvent struct {
	Id             uuid.UUID
	NoteId         uuid.UUID
	OrganizationId uuid.UUID
	EventType      string
	Title          string
	Description    string
	ActorId        *uuid.UUID
	Payload        map[string]interface{}
	CreatedAt      time.Time
}

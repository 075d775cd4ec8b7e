package dto

import (
	"time"

	"github.com/google/uuid"
)

// LifecycleEventMessage travels over the in-process pub/sub from emitters to
// the audit consumer. Emission is fire-and-forget; the pipeline never waits
// on audit persistence.
type LifecycleEventMessage struct {
	NoteId         uuid.UUID              `json:"note_id"`
	OrganizationId uuid.UUID              `json:"organization_id"`
	EventType      string                 `json:"event_type"`
	Title          string                 `json:"title"`
	Description    string                 `json:"description"`
	ActorId        *uuid.UUID             `json:"actor_id,omitempty"`
	Payload        map[string]interface{} `json:"payload,omitempty"`
	OccurredAt     time.Time              `json:"occurred_at"`
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

// Note lifecycle statuses. The pipeline only ever moves a note between
// draft, processing and processed; the moderation statuses are set by
// human reviewers through the API.
const (
	NoteStatusDraft      = "draft"
	NoteStatusProcessing = "processing"
	NoteStatusProcessed  = "processed"
	NoteStatusReview     = "review"
	NoteStatusApproved   = "approved"
	NoteStatusRefused    = "refused"
	NoteStatusArchived   = "archived"
)

// ActiveNoteStatuses are the statuses counted toward a cluster's displayed
// aggregate. Refused and archived notes are moderated out.
func ActiveNoteStatuses() []string {
	return []string{NoteStatusProcessed, NoteStatusReview, NoteStatusApproved}
}

// IsActiveNoteStatus reports whether notes in the given status belong to the
// active set of their cluster.
func IsActiveNoteStatus(status string) bool {
	for _, s := range ActiveNoteStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

type Note struct {
	Id               uuid.UUID
	OrganizationId   uuid.UUID
	AuthorId         uuid.UUID
	RawContent       string
	Title            *string
	ClarifiedContent *string
	PillarId         *uuid.UUID
	ClusterId        *uuid.UUID
	Embedding        []float32
	Score            *float64
	Reasoning        *string
	Status           string
	ProcessingError  *ProcessingError
	CreatedAt        time.Time
	ProcessedAt      *time.Time
	UpdatedAt        *time.Time
	DeletedAt        *time.Time
	IsDeleted        bool

	// Author is populated when the note is fetched with author context.
	Author *User
}

// ProcessingError is the inspectable failure payload attached to a note that
// was parked back in draft.
type ProcessingError struct {
	Step      string    `json:"step"`
	Message   string    `json:"message"`
	Attempts  int       `json:"attempts"`
	FailedAt  time.Time `json:"failed_at"`
	Permanent bool      `json:"permanent"`
}

package dto

import (
	"time"

	"github.com/google/uuid"
)

type SubmitNoteRequest struct {
	Content string `json:"content" validate:"required,min=3"`
}

type SubmitNoteResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type ProcessingErrorResponse struct {
	Step      string    `json:"step"`
	Message   string    `json:"message"`
	Attempts  int       `json:"attempts"`
	FailedAt  time.Time `json:"failed_at"`
	Permanent bool      `json:"permanent"`
}

type ShowNoteResponse struct {
	Id               uuid.UUID                `json:"id"`
	RawContent       string                   `json:"raw_content"`
	Title            *string                  `json:"title"`
	ClarifiedContent *string                  `json:"clarified_content"`
	PillarId         *uuid.UUID               `json:"pillar_id"`
	ClusterId        *uuid.UUID               `json:"cluster_id"`
	Score            *float64                 `json:"score"`
	Reasoning        *string                  `json:"reasoning"`
	Status           string                   `json:"status"`
	ProcessingError  *ProcessingErrorResponse `json:"processing_error,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
	ProcessedAt      *time.Time               `json:"processed_at"`
}

type ListNotesRequest struct {
	Status string `query:"status"`
	Limit  int    `query:"limit"`
	Offset int    `query:"offset"`
}

type ModerateNoteRequest struct {
	Id     uuid.UUID
	Status string `json:"status" validate:"required,oneof=review approved refused archived"`
}

type ModerateNoteResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

type RetryNoteResponse struct {
	Id     uuid.UUID `json:"id"`
	Status string    `json:"status"`
}

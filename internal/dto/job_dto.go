package dto

import "github.com/google/uuid"

// NoteProcessJob is the payload published to the note processing queue.
// Only the id travels; workers reload the note so they always act on the
// current row, not a stale copy.
type NoteProcessJob struct {
	NoteId uuid.UUID `json:"note_id"`
}

// ClusterSnapshotJob is the payload published to the snapshot queue.
type ClusterSnapshotJob struct {
	ClusterId uuid.UUID `json:"cluster_id"`
}

// DeadLetterJob is published after a note exhausted its retry budget, for
// operator tooling to inspect.
type DeadLetterJob struct {
	NoteId    uuid.UUID `json:"note_id"`
	Step      string    `json:"step"`
	Message   string    `json:"message"`
	Attempts  int       `json:"attempts"`
	Permanent bool      `json:"permanent"`
}

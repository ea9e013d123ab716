package store

import (
	"context"

	"github.com/alfredjeanlab/cueline/internal/model"
)

// Store defines the persistence interface for cueline.
type Store interface {
	// Participants. CreateOrFindParticipant is keyed on the participant's
	// client-chosen key; the id is used only when a new row is created.
	CreateOrFindParticipant(ctx context.Context, id, key string) (*model.Participant, error)
	GetParticipant(ctx context.Context, id string) (*model.Participant, error)
	ListParticipants(ctx context.Context) ([]*model.Participant, error)
	GetCursor(ctx context.Context, participantID string) (int, error)
	SetCursor(ctx context.Context, participantID string, cursor int) error

	// Answers. RecordAnswer reports whether the row was created; false
	// means the participant had already answered that cue.
	RecordAnswer(ctx context.Context, answer *model.Answer) (bool, error)
	HasAnswered(ctx context.Context, participantID, cueID string) (bool, error)
	AnsweredCueIDs(ctx context.Context, participantID string) ([]string, error)
	AnswerCount(ctx context.Context, cueID string) (int, error)
	ListAnswers(ctx context.Context) ([]*model.Answer, error)

	// ResetProgress wipes all answers and rewinds every cursor to zero.
	ResetProgress(ctx context.Context) error

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}

package events

import (
	"context"

	"github.com/alfredjeanlab/cueline/internal/model"
)

// Event topic constants
const (
	TopicShowStarted = "cueline.show.started"
	TopicShowReset   = "cueline.show.reset"

	// Broadcast slot events (scheduler-driven).
	TopicCueFired    = "cueline.cue.fired"
	TopicCueCleared  = "cueline.cue.cleared"
	TopicCueInjected = "cueline.cue.injected"

	// Per-participant progression events.
	TopicAnswerRecorded = "cueline.answer.recorded"
	TopicCursorAdvanced = "cueline.cursor.advanced"
)

// Event types

type ShowStarted struct {
	Title    string `json:"title,omitempty"`
	CueCount int    `json:"cue_count"`
}

type ShowReset struct {
	CancelledTimers int `json:"cancelled_timers"`
}

type CueFired struct {
	Cue *model.Cue `json:"cue"`
}

type CueCleared struct {
	CueID string `json:"cue_id"`
}

type CueInjected struct {
	Cue      *model.Cue `json:"cue"`
	SourceID string     `json:"source_id,omitempty"` // cue whose answer triggered the branch
}

type AnswerRecorded struct {
	Answer    *model.Answer `json:"answer"`
	CueID     string        `json:"cue_id"`
	Correct   *bool         `json:"correct,omitempty"` // only set when the cue carries a rule
	Duplicate bool          `json:"duplicate"`
}

type CursorAdvanced struct {
	ParticipantID string `json:"participant_id"`
	Cursor        int    `json:"cursor"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Package client provides a transport-agnostic interface for the cueline
// service and an HTTP/JSON implementation that talks to the cueline REST API.
package client

import (
	"context"
	"time"

	"github.com/alfredjeanlab/cueline/internal/model"
	"github.com/alfredjeanlab/cueline/internal/progress"
)

// ShowClient is the interface that all cueline CLI commands use to
// communicate with the show server. It is implemented by HTTPClient.
type ShowClient interface {
	// Show control
	GetShow(ctx context.Context) (*ShowStatus, error)
	StartShow(ctx context.Context) (*StartShowResponse, error)
	ResetShow(ctx context.Context) (*ResetShowResponse, error)

	// Broadcast and cues
	GetBroadcast(ctx context.Context) (*model.CueView, error)
	ListCues(ctx context.Context) ([]*model.Cue, error)
	GetCue(ctx context.Context, id string) (*model.Cue, error)

	// Participant session
	Session(ctx context.Context, participantKey string) (*SessionResponse, error)
	SubmitAnswer(ctx context.Context, participantKey, cueID string, answer any) (*progress.SubmitResult, error)

	// Roster
	GetRoster(ctx context.Context, staleThresholdSecs int) (*RosterResponse, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// ShowStatus is the response from GetShow.
type ShowStatus struct {
	Title     string         `json:"title"`
	Running   bool           `json:"running"`
	CueCount  int            `json:"cue_count"`
	StartedAt *time.Time     `json:"started_at,omitempty"`
	Broadcast *model.CueView `json:"broadcast,omitempty"`
}

// StartShowResponse is the response from StartShow.
type StartShowResponse struct {
	Running   bool      `json:"running"`
	StartedAt time.Time `json:"started_at"`
}

// ResetShowResponse is the response from ResetShow.
type ResetShowResponse struct {
	Reset           bool `json:"reset"`
	CancelledTimers int  `json:"cancelled_timers"`
}

// SessionResponse is the response from Session: the participant's identity
// plus the single cue they should currently see. HasAnswered and
// AnswerCount are only present for answerable cues.
type SessionResponse struct {
	ParticipantID string        `json:"participant_id"`
	Cursor        int           `json:"cursor"`
	Cue           model.CueView `json:"cue"`
	HasAnswered   *bool         `json:"has_answered,omitempty"`
	AnswerCount   *int          `json:"answer_count,omitempty"`
}

// RosterEntry is one participant in the roster.
type RosterEntry struct {
	ParticipantID string  `json:"participant_id"`
	Key           string  `json:"key"`
	Cursor        int     `json:"cursor"`
	LastAction    string  `json:"last_action"`
	IdleSecs      float64 `json:"idle_secs"`
	AnswerCount   int64   `json:"answer_count"`
	Dropped       bool    `json:"dropped,omitempty"`
}

// RosterResponse is the response from GetRoster.
type RosterResponse struct {
	Participants []RosterEntry `json:"participants"`
	Count        int           `json:"count"`
}

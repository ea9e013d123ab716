package model

import "time"

// Participant is one connected viewer of the show. Key is the stable
// client-supplied identity (a device fingerprint or similar); ID is the
// server-assigned identifier everything else hangs off.
type Participant struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Cursor    int       `json:"cursor"`
	CreatedAt time.Time `json:"created_at"`
}

// Answer is a persisted answer record. Append-only: at most the first
// answer per (participant, cue) pair is effective, later submissions are
// detected as duplicates and ignored.
type Answer struct {
	ID            int64     `json:"id"`
	ParticipantID string    `json:"participant_id"`
	CueID         string    `json:"cue_id"`
	Value         string    `json:"value"`
	AnsweredAt    time.Time `json:"answered_at"`
}

package server

import (
	"net/http"
	"strconv"
	"time"
)

// handleParticipantRoster handles GET /v1/participants/roster.
// Returns the live participant roster from the presence tracker, enriched
// with each participant's answer tally from the store.
func (s *ShowServer) handleParticipantRoster(w http.ResponseWriter, r *http.Request) {
	// Parse optional stale_threshold_secs query param (default: 5 min).
	staleThreshold := 5 * time.Minute
	if v := r.URL.Query().Get("stale_threshold_secs"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			staleThreshold = time.Duration(secs) * time.Second
		}
	}

	entries := s.Presence.Roster(staleThreshold)

	type rosterEntry struct {
		ParticipantID string  `json:"participant_id"`
		Key           string  `json:"key"`
		Cursor        int     `json:"cursor"`
		LastAction    string  `json:"last_action"`
		IdleSecs      float64 `json:"idle_secs"`
		AnswerCount   int64   `json:"answer_count"`
		Dropped       bool    `json:"dropped,omitempty"`
	}

	participants := make([]rosterEntry, 0, len(entries))
	for _, e := range entries {
		re := rosterEntry{
			ParticipantID: e.ParticipantID,
			Key:           e.Key,
			LastAction:    e.LastAction,
			IdleSecs:      e.IdleSecs,
			AnswerCount:   e.AnswerCount,
			Dropped:       e.Dropped,
		}
		if cursor, err := s.store.GetCursor(r.Context(), e.ParticipantID); err == nil {
			re.Cursor = cursor
		}
		participants = append(participants, re)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"participants": participants,
		"count":        len(participants),
	})
}

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/alfredjeanlab/cueline/internal/idgen"
	"github.com/alfredjeanlab/cueline/internal/progress"
)

// handleSession handles GET /v1/session?participant=KEY.
// The participant key is client-chosen; the first poll with a new key
// creates the participant. Returns the single cue that participant should
// currently see.
func (s *ShowServer) handleSession(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.URL.Query().Get("participant"))
	if key == "" {
		writeError(w, http.StatusBadRequest, "participant query parameter is required")
		return
	}

	id, err := idgen.Generate()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	p, err := s.store.CreateOrFindParticipant(r.Context(), id, key)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.Presence.RecordPoll(p.ID, key)

	view, err := s.Tracker.View(r.Context(), p.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := map[string]any{
		"participant_id": p.ID,
		"cursor":         p.Cursor,
		"cue":            view,
	}
	// Annotate answerable cues so clients can render resubmission state
	// and a live answer tally without extra round trips.
	if view.ID != "" && view.Kind.Answerable() {
		if answered, err := s.store.HasAnswered(r.Context(), p.ID, view.ID); err == nil {
			resp["has_answered"] = answered
		}
		if count, err := s.store.AnswerCount(r.Context(), view.ID); err == nil {
			resp["answer_count"] = count
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type submitAnswerInput struct {
	Participant string `json:"participant"`
	CueID       string `json:"cue_id"`
	Answer      any    `json:"answer"`
}

// validate rejects malformed submissions before any state is touched.
// A body omitting the answer field decodes to nil and must not reach the
// tracker, where it would be stringified and recorded as "null".
func (in *submitAnswerInput) validate() error {
	if strings.TrimSpace(in.Participant) == "" {
		return inputError("participant is required")
	}
	if in.CueID == "" {
		return inputError("cue_id is required")
	}
	if in.Answer == nil {
		return inputError("answer is required")
	}
	return nil
}

// handleSubmitAnswer handles POST /v1/session/answer.
func (s *ShowServer) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var in submitAnswerInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := in.validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := idgen.Generate()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	p, err := s.store.CreateOrFindParticipant(r.Context(), id, in.Participant)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.Presence.RecordAnswer(p.ID, in.Participant)

	result, err := s.Tracker.SubmitAnswer(r.Context(), p.ID, in.CueID, in.Answer)
	if err != nil {
		if errors.Is(err, progress.ErrCueNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		if errors.Is(err, progress.ErrMissingAnswer) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, result)
}

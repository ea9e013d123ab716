package server

import (
	"errors"
	"net/http"

	"github.com/alfredjeanlab/cueline/internal/events"
	"github.com/alfredjeanlab/cueline/internal/model"
	"github.com/alfredjeanlab/cueline/internal/schedule"
)

// handleGetShow handles GET /v1/show.
func (s *ShowServer) handleGetShow(w http.ResponseWriter, _ *http.Request) {
	resp := map[string]any{
		"title":   s.Title(),
		"running": s.Scheduler.Running(),
	}
	switch {
	case s.Scheduler.Timeline() != nil:
		resp["cue_count"] = s.Scheduler.Timeline().Len()
	case s.pendingShow() != nil:
		resp["cue_count"] = len(s.pendingShow().Cues)
	default:
		resp["cue_count"] = 0
	}
	if startedAt := s.Scheduler.StartedAt(); !startedAt.IsZero() {
		resp["started_at"] = startedAt
	}
	if cur := s.Scheduler.Current(); cur != nil {
		resp["broadcast"] = model.ViewOf(cur)
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleStartShow handles POST /v1/show/start.
// Starting an already-running show is a no-op, not an error.
func (s *ShowServer) handleStartShow(w http.ResponseWriter, r *http.Request) {
	wasRunning := s.Scheduler.Running()
	if show := s.pendingShow(); show != nil && !wasRunning {
		tl, err := show.Resolve(s.clk.Now())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if err := s.Scheduler.LoadTimeline(tl); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		s.clearPending()
	}
	if err := s.Scheduler.Start(); err != nil {
		if errors.As(err, &schedule.ErrNoTimeline{}) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !wasRunning {
		tl := s.Scheduler.Timeline()
		s.publish(r.Context(), events.TopicShowStarted, events.ShowStarted{
			Title:    s.Title(),
			CueCount: tl.Len(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"running":    true,
		"started_at": s.Scheduler.StartedAt(),
	})
}

// handleResetShow handles POST /v1/show/reset. It cancels every armed
// timer, clears the broadcast slot, and wipes all participant progress.
func (s *ShowServer) handleResetShow(w http.ResponseWriter, r *http.Request) {
	cancelled := s.Scheduler.Reset()
	if err := s.store.ResetProgress(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"reset":            true,
		"cancelled_timers": cancelled,
	})
}

// handleGetBroadcast handles GET /v1/broadcast.
// The cue field is null until the first cue fires; after an auto-hide it
// is a none-kind view carrying the hidden cue's id.
func (s *ShowServer) handleGetBroadcast(w http.ResponseWriter, _ *http.Request) {
	cur := s.Scheduler.Current()
	if cur == nil {
		writeJSON(w, http.StatusOK, map[string]any{"cue": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cue": model.ViewOf(cur)})
}

// handleListCues handles GET /v1/cues. Returns the full cue definitions,
// including trigger times and rules; this is the operator view, not the
// participant one.
func (s *ShowServer) handleListCues(w http.ResponseWriter, _ *http.Request) {
	tl := s.Scheduler.Timeline()
	if tl == nil {
		writeJSON(w, http.StatusOK, map[string]any{"cues": []any{}, "count": 0})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cues": tl.All(), "count": tl.Len()})
}

// handleGetCue handles GET /v1/cues/{id}.
func (s *ShowServer) handleGetCue(w http.ResponseWriter, r *http.Request) {
	tl := s.Scheduler.Timeline()
	if tl == nil {
		writeError(w, http.StatusNotFound, "no timeline loaded")
		return
	}
	cue := tl.ByID(r.PathValue("id"))
	if cue == nil {
		writeError(w, http.StatusNotFound, "cue not found")
		return
	}
	writeJSON(w, http.StatusOK, cue)
}

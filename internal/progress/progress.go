// Package progress computes each participant's session view and applies
// answer submissions against it. The broadcast slot is global; this package
// owns everything that differs per participant.
package progress

import (
	"github.com/alfredjeanlab/cueline/internal/model"
	"github.com/alfredjeanlab/cueline/internal/timeline"
)

// Resolve computes the single cue a participant should see right now.
//
// Mandatory cues act as checkpoints: an unanswered mandatory cue positioned
// before the cursor is surfaced ahead of the cursor cue, earliest first, no
// matter how far the cursor has moved. The scan stops at the cursor; a
// mandatory cue the participant has not reached yet never blocks. With no
// checkpoint outstanding the cursor cue is shown, and a cursor past the end
// of the timeline resolves to the none view.
func Resolve(tl *timeline.Timeline, cursor int, answered func(cueID string) bool) model.CueView {
	bound := cursor
	if bound > tl.Len() {
		bound = tl.Len()
	}
	for pos := 0; pos < bound; pos++ {
		cue := tl.At(pos)
		if cue.Mandatory && !answered(cue.ID) {
			return model.ViewOf(cue)
		}
	}
	if cue := tl.At(cursor); cue != nil {
		return model.ViewOf(cue)
	}
	return model.NoneView()
}

// AnsweredSet builds a membership func over a list of answered cue ids,
// suitable for Resolve.
func AnsweredSet(ids []string) func(string) bool {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return func(id string) bool {
		_, ok := set[id]
		return ok
	}
}

// Package timeline holds the ordered, immutable list of cues driving one
// show. Array position is the canonical ordering used both for cursor
// advancement and for the mandatory-checkpoint scan.
package timeline

import (
	"fmt"

	"github.com/alfredjeanlab/cueline/internal/model"
)

// Timeline is an ordered, immutable-after-load list of cues indexed by
// position and by id.
type Timeline struct {
	cues []*model.Cue
	byID map[string]int // cue id -> position
}

// New validates the given cue definitions and builds a timeline from them.
// Validation failures (duplicate ids, missing kinds, malformed rules) are
// returned as a descriptive error; nothing is silently coerced.
func New(cues []*model.Cue) (*Timeline, error) {
	tl := &Timeline{
		cues: make([]*model.Cue, 0, len(cues)),
		byID: make(map[string]int, len(cues)),
	}
	var ve model.ValidationError
	for i, c := range cues {
		if err := model.ValidateCue(c); err != nil {
			inner, ok := err.(*model.ValidationError)
			if !ok {
				return nil, err
			}
			for _, fe := range inner.Errors {
				ve.Errors = append(ve.Errors, model.FieldError{
					Field:   fmt.Sprintf("timeline[%d].%s", i, fe.Field),
					Message: fe.Message,
				})
			}
			continue
		}
		if _, dup := tl.byID[c.ID]; dup {
			ve.Errors = append(ve.Errors, model.FieldError{
				Field:   fmt.Sprintf("timeline[%d].id", i),
				Message: fmt.Sprintf("duplicate id %q", c.ID),
			})
			continue
		}
		tl.byID[c.ID] = len(tl.cues)
		tl.cues = append(tl.cues, c)
	}
	if ve.HasErrors() {
		return nil, &ve
	}
	return tl, nil
}

// Len returns the number of cues on the timeline.
func (t *Timeline) Len() int {
	return len(t.cues)
}

// All returns the cues in timeline order. Callers must not mutate them.
func (t *Timeline) All() []*model.Cue {
	return t.cues
}

// At returns the cue at the given position, or nil when out of range.
func (t *Timeline) At(pos int) *model.Cue {
	if pos < 0 || pos >= len(t.cues) {
		return nil
	}
	return t.cues[pos]
}

// ByID returns the cue with the given id, or nil if absent.
func (t *Timeline) ByID(id string) *model.Cue {
	pos, ok := t.byID[id]
	if !ok {
		return nil
	}
	return t.cues[pos]
}

// PositionOf returns the position of the cue with the given id, or -1 if
// the id is not on the timeline.
func (t *Timeline) PositionOf(id string) int {
	pos, ok := t.byID[id]
	if !ok {
		return -1
	}
	return pos
}

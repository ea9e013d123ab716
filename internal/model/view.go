package model

import "encoding/json"

// CueView is the participant-facing projection of a cue. It carries only
// what a client needs to render: validation rules and trigger times stay
// server-side so correct answers never leak into poll responses.
type CueView struct {
	ID          string          `json:"id"`
	Kind        Kind            `json:"kind"`
	Content     string          `json:"content,omitempty"`
	Placeholder string          `json:"placeholder,omitempty"`
	Options     []string        `json:"options,omitempty"`
	Component   string          `json:"component,omitempty"`
	Props       json.RawMessage `json:"props,omitempty"`
}

// NoneView is the canonical "nothing to show" view returned when a
// participant has walked off the end of the timeline. Callers must treat it
// distinctly from a none-kind view carrying an id, which means "cleared".
func NoneView() CueView {
	return CueView{Kind: KindNone}
}

// ViewOf projects a cue into its participant-facing view.
func ViewOf(c *Cue) CueView {
	return CueView{
		ID:          c.ID,
		Kind:        c.Kind,
		Content:     c.Content,
		Placeholder: c.Placeholder,
		Options:     c.Options,
		Component:   c.Component,
		Props:       c.Props,
	}
}

// Cue converts the view back into a bare cue definition. Scheduling and
// validation fields are absent from views and come back zero.
func (v CueView) Cue() *Cue {
	return &Cue{
		ID:          v.ID,
		Kind:        v.Kind,
		Content:     v.Content,
		Placeholder: v.Placeholder,
		Options:     v.Options,
		Component:   v.Component,
		Props:       v.Props,
	}
}

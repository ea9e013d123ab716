package model

import (
	"encoding/json"
	"time"
)

// Kind classifies what a cue renders for participants.
type Kind string

const (
	KindText      Kind = "text"
	KindQuestion  Kind = "question"
	KindChoice    Kind = "choice"
	KindComponent Kind = "component"
	KindNone      Kind = "none"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}

// IsValid checks whether the kind is a known value.
func (k Kind) IsValid() bool {
	switch k {
	case KindText, KindQuestion, KindChoice, KindComponent, KindNone:
		return true
	}
	return false
}

// Answerable reports whether answers to cues of this kind are subject to
// validation rules. Other kinds always evaluate as accepted.
func (k Kind) Answerable() bool {
	return k == KindQuestion || k == KindChoice
}

// RuleType selects how a submitted answer is validated.
type RuleType string

const (
	RuleExact  RuleType = "exact"
	RuleRegex  RuleType = "regex"
	RuleCustom RuleType = "custom"
)

// String returns the string representation of the rule type.
func (t RuleType) String() string {
	return string(t)
}

// IsValid checks whether the rule type is a known value.
func (t RuleType) IsValid() bool {
	switch t {
	case RuleExact, RuleRegex, RuleCustom:
		return true
	}
	return false
}

// Rule is an answer-validation rule attached to a question or choice cue.
// A cue without a rule accepts any answer.
type Rule struct {
	Type    RuleType `json:"type" toml:"type"`
	Answers []string `json:"answers,omitempty" toml:"answers"` // exact: accepted answers, compared normalized
	Pattern string   `json:"pattern,omitempty" toml:"pattern"` // regex: pattern tested against the normalized answer
	Name    string   `json:"name,omitempty" toml:"name"`       // custom: validator name (reserved, accepts everything)
}

// Branches maps an evaluation trigger key to follow-up cues injected when a
// matching answer arrives. Always, when non-empty, fires regardless of key.
type Branches struct {
	Always []*Cue            `json:"always,omitempty" toml:"always"`
	OnKey  map[string][]*Cue `json:"on_key,omitempty" toml:"on_key"`
}

// For returns the cues to inject for the given trigger key, or nil when no
// branch matches. Always takes precedence over keyed branches.
func (b *Branches) For(key string) []*Cue {
	if b == nil {
		return nil
	}
	if len(b.Always) > 0 {
		return b.Always
	}
	return b.OnKey[key]
}

// Cue is a single timed entry on a show timeline. Cues are immutable once a
// timeline is loaded; the scheduler and resolver only ever read them.
type Cue struct {
	ID        string    `json:"id"`
	TriggerAt time.Time `json:"trigger_at,omitzero"`
	Kind      Kind      `json:"kind"`

	// Kind-specific payload. Which fields are required for which kind is
	// enforced by ValidateCue at load time.
	Content     string          `json:"content,omitempty"`     // text, question, choice
	Placeholder string          `json:"placeholder,omitempty"` // question: input hint
	Options     []string        `json:"options,omitempty"`     // choice
	Component   string          `json:"component,omitempty"`   // component: client-side component name
	Props       json.RawMessage `json:"props,omitempty"`       // component

	AutoHideAfter time.Duration `json:"auto_hide_after,omitempty"` // 0 = never cleared
	Mandatory     bool          `json:"mandatory,omitempty"`
	Rule          *Rule         `json:"rule,omitempty"`
	Branches      *Branches     `json:"branches,omitempty"`
}

// NoneCue returns the sentinel cue that replaces an auto-hidden cue in the
// broadcast slot. It carries the id of the cue it cleared.
func NoneCue(id string) *Cue {
	return &Cue{ID: id, Kind: KindNone}
}

// Clone returns a shallow copy of the cue with its own Options slice.
// Branch cues are shared; they are never mutated after load.
func (c *Cue) Clone() *Cue {
	clone := *c
	if c.Options != nil {
		clone.Options = append([]string(nil), c.Options...)
	}
	return &clone
}

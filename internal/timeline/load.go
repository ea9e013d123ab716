package timeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/alfredjeanlab/cueline/internal/model"
)

// Show is a parsed but not yet resolved show file. Cue trigger times may be
// given as absolute instants or as offsets from show start; offsets are a
// loading convenience and are resolved to absolute times by Resolve before
// the core ever sees them.
type Show struct {
	Title string    `json:"title" toml:"title"`
	Cues  []*cueDef `json:"cues" toml:"cues"`
}

// cueDef is the wire form of a cue in a show file. Durations are strings
// ("5s", "2m30s") so the same definition reads naturally in JSON and TOML.
type cueDef struct {
	ID            string         `json:"id" toml:"id"`
	TriggerAt     string         `json:"trigger_at,omitempty" toml:"trigger_at"` // RFC 3339
	Offset        string         `json:"offset,omitempty" toml:"offset"`         // from show start
	Kind          string         `json:"kind" toml:"kind"`
	Content       string         `json:"content,omitempty" toml:"content"`
	Placeholder   string         `json:"placeholder,omitempty" toml:"placeholder"`
	Options       []string       `json:"options,omitempty" toml:"options"`
	Component     string         `json:"component,omitempty" toml:"component"`
	Props         map[string]any `json:"props,omitempty" toml:"props"`
	AutoHideAfter string         `json:"auto_hide_after,omitempty" toml:"auto_hide_after"`
	Mandatory     bool           `json:"mandatory,omitempty" toml:"mandatory"`
	Rule          *model.Rule    `json:"rule,omitempty" toml:"rule"`
	Branches      *branchesDef   `json:"branches,omitempty" toml:"branches"`
}

type branchesDef struct {
	Always []*cueDef            `json:"always,omitempty" toml:"always"`
	OnKey  map[string][]*cueDef `json:"on_key,omitempty" toml:"on_key"`
}

// LoadFile reads and parses a show file. The format is chosen by extension:
// .toml is decoded as TOML, everything else as JSON. Parsing here is purely
// syntactic; call Resolve to validate and build a timeline.
func LoadFile(path string) (*Show, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read show file: %w", err)
	}
	var show Show
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(data, &show); err != nil {
			return nil, fmt.Errorf("parse show file %s: %w", path, err)
		}
	} else {
		if err := json.Unmarshal(data, &show); err != nil {
			return nil, fmt.Errorf("parse show file %s: %w", path, err)
		}
	}
	if len(show.Cues) == 0 {
		return nil, fmt.Errorf("show file %s: no cues defined", path)
	}
	return &show, nil
}

// Resolve converts the show's cue definitions into a validated timeline,
// resolving relative offsets against the given base instant (normally the
// moment the show is started). Malformed times and durations are load-time
// validation errors.
func (s *Show) Resolve(base time.Time) (*Timeline, error) {
	var ve model.ValidationError
	cues := make([]*model.Cue, 0, len(s.Cues))
	for i, def := range s.Cues {
		path := fmt.Sprintf("cues[%d]", i)
		cue := def.toCue(path, &ve)
		if cue == nil {
			continue
		}
		switch {
		case def.TriggerAt != "" && def.Offset != "":
			ve.Errors = append(ve.Errors, model.FieldError{
				Field: path + ".trigger_at", Message: "trigger_at and offset are mutually exclusive",
			})
		case def.TriggerAt != "":
			at, err := time.Parse(time.RFC3339, def.TriggerAt)
			if err != nil {
				ve.Errors = append(ve.Errors, model.FieldError{
					Field: path + ".trigger_at", Message: fmt.Sprintf("not a valid RFC 3339 time: %v", err),
				})
				continue
			}
			cue.TriggerAt = at
		default:
			// Offset defaults to zero: the cue fires the moment the show starts.
			offset, ok := parseDuration(def.Offset, path+".offset", &ve)
			if !ok {
				continue
			}
			cue.TriggerAt = base.Add(offset)
		}
		cues = append(cues, cue)
	}
	if ve.HasErrors() {
		return nil, &ve
	}
	return New(cues)
}

// toCue converts a definition (including branch definitions, recursively)
// into a model cue, accumulating duration and props conversion failures
// into ve. Returns nil when the definition is unusable.
func (d *cueDef) toCue(path string, ve *model.ValidationError) *model.Cue {
	cue := &model.Cue{
		ID:          d.ID,
		Kind:        model.Kind(d.Kind),
		Content:     d.Content,
		Placeholder: d.Placeholder,
		Options:     d.Options,
		Component:   d.Component,
		Mandatory:   d.Mandatory,
		Rule:        d.Rule,
	}
	if d.Props != nil {
		props, err := json.Marshal(d.Props)
		if err != nil {
			ve.Errors = append(ve.Errors, model.FieldError{
				Field: path + ".props", Message: fmt.Sprintf("not serializable: %v", err),
			})
			return nil
		}
		cue.Props = props
	}
	if hide, ok := parseDuration(d.AutoHideAfter, path+".auto_hide_after", ve); ok {
		cue.AutoHideAfter = hide
	} else {
		return nil
	}
	if d.Branches != nil {
		branches := &model.Branches{}
		for i, child := range d.Branches.Always {
			if c := child.toBranchCue(fmt.Sprintf("%s.branches.always[%d]", path, i), ve); c != nil {
				branches.Always = append(branches.Always, c)
			}
		}
		for key, children := range d.Branches.OnKey {
			for i, child := range children {
				c := child.toBranchCue(fmt.Sprintf("%s.branches.on_key[%s][%d]", path, key, i), ve)
				if c == nil {
					continue
				}
				if branches.OnKey == nil {
					branches.OnKey = make(map[string][]*model.Cue)
				}
				branches.OnKey[key] = append(branches.OnKey[key], c)
			}
		}
		cue.Branches = branches
	}
	return cue
}

// toBranchCue converts a branch definition. Branch cues fire on injection,
// so trigger fields make no sense on them and are rejected.
func (d *cueDef) toBranchCue(path string, ve *model.ValidationError) *model.Cue {
	if d.TriggerAt != "" || d.Offset != "" {
		ve.Errors = append(ve.Errors, model.FieldError{
			Field: path, Message: "branch cues fire on injection and cannot set trigger_at or offset",
		})
		return nil
	}
	return d.toCue(path, ve)
}

// parseDuration parses an optional duration string, recording a validation
// error on failure. An empty string is zero.
func parseDuration(s, field string, ve *model.ValidationError) (time.Duration, bool) {
	if s == "" {
		return 0, true
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		ve.Errors = append(ve.Errors, model.FieldError{
			Field: field, Message: fmt.Sprintf("not a valid duration: %v", err),
		})
		return 0, false
	}
	if d < 0 {
		ve.Errors = append(ve.Errors, model.FieldError{
			Field: field, Message: "must not be negative",
		})
		return 0, false
	}
	return d, true
}

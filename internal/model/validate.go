package model

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

func (e *ValidationError) add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// ValidateCue checks a single cue for constraint violations, including its
// branch cues recursively. It returns a *ValidationError if any rules fail,
// or nil if the cue is valid. Timeline-level id uniqueness is checked by
// the timeline package, not here.
func ValidateCue(c *Cue) error {
	var ve ValidationError
	validateCue(c, "cue", &ve)
	if ve.HasErrors() {
		return &ve
	}
	return nil
}

func validateCue(c *Cue, path string, ve *ValidationError) {
	if strings.TrimSpace(c.ID) == "" {
		ve.add(path+".id", "is required")
	}

	if !c.Kind.IsValid() {
		ve.add(path+".kind", fmt.Sprintf("invalid value %q", c.Kind))
		return // kind-specific checks are meaningless without a kind
	}

	switch c.Kind {
	case KindText, KindQuestion:
		if c.Content == "" {
			ve.add(path+".content", fmt.Sprintf("is required for kind %q", c.Kind))
		}
	case KindChoice:
		if c.Content == "" {
			ve.add(path+".content", `is required for kind "choice"`)
		}
		if len(c.Options) == 0 {
			ve.add(path+".options", `is required for kind "choice"`)
		}
	case KindComponent:
		if c.Component == "" {
			ve.add(path+".component", `is required for kind "component"`)
		}
	case KindNone:
		// Sentinel kind: only ever produced by auto-hide, never authored.
		ve.add(path+".kind", `"none" is reserved and cannot be authored`)
	}

	if c.AutoHideAfter < 0 {
		ve.add(path+".auto_hide_after", "must not be negative")
	}

	if c.Rule != nil {
		if !c.Kind.Answerable() {
			ve.add(path+".rule", fmt.Sprintf("not allowed on kind %q", c.Kind))
		}
		validateRule(c.Rule, path+".rule", ve)
	}

	if c.Branches != nil {
		if len(c.Branches.Always) > 0 && len(c.Branches.OnKey) > 0 {
			ve.add(path+".branches", "always and on_key are mutually exclusive")
		}
		for i, child := range c.Branches.Always {
			validateCue(child, fmt.Sprintf("%s.branches.always[%d]", path, i), ve)
		}
		for key, children := range c.Branches.OnKey {
			for i, child := range children {
				validateCue(child, fmt.Sprintf("%s.branches.on_key[%s][%d]", path, key, i), ve)
			}
		}
	}
}

func validateRule(r *Rule, path string, ve *ValidationError) {
	if !r.Type.IsValid() {
		ve.add(path+".type", fmt.Sprintf("invalid value %q", r.Type))
		return
	}
	switch r.Type {
	case RuleExact:
		if len(r.Answers) == 0 {
			ve.add(path+".answers", `is required for type "exact"`)
		}
	case RuleRegex:
		if r.Pattern == "" {
			ve.add(path+".pattern", `is required for type "regex"`)
		} else if _, err := regexp.Compile(r.Pattern); err != nil {
			ve.add(path+".pattern", fmt.Sprintf("does not compile: %v", err))
		}
	case RuleCustom:
		if r.Name == "" {
			ve.add(path+".name", `is required for type "custom"`)
		}
	}
}

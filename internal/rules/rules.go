// Package rules evaluates submitted answers against cue validation rules.
// Evaluation is pure: no state, safe to repeat for the same input.
package rules

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/alfredjeanlab/cueline/internal/model"
)

// Trigger keys returned when a cue carries a validation rule. Branch
// configs key off these fixed literals, never off the raw answer.
const (
	KeyCorrect = "correct"
	KeyWrong   = "wrong"
)

// Result is the outcome of evaluating one answer.
type Result struct {
	// Key selects the branch list to fire: "correct"/"wrong" when the cue
	// has a rule, otherwise the stringified answer itself, preserving
	// free-form branching on literal answers.
	Key string
	// Validated is true when the cue carried a rule that applied.
	Correct   bool
	Validated bool
}

// Evaluate decides correctness for an answer against the cue's rule and
// returns the trigger key used to select branch cues.
//
// Without a rule the key is the answer stringified; with a rule the answer
// is normalized (trimmed, lowercased) and tested, and the key is the fixed
// "correct"/"wrong" literal. Rules only apply to question and choice cues;
// on any other kind the answer always evaluates as correct.
func Evaluate(answer any, cue *model.Cue) Result {
	raw := Stringify(answer)

	if cue.Rule == nil {
		return Result{Key: raw}
	}
	if !cue.Kind.Answerable() {
		// Rule present on a kind it cannot apply to: the fixed-key
		// contract still holds, and structurally everything is correct.
		return Result{Key: KeyCorrect, Correct: true, Validated: true}
	}

	normalized := Normalize(raw)
	correct := false
	switch cue.Rule.Type {
	case model.RuleExact:
		for _, want := range cue.Rule.Answers {
			if normalized == Normalize(want) {
				correct = true
				break
			}
		}
	case model.RuleRegex:
		// Pattern compilability is checked at load time; a failure here
		// means the rule bypassed validation, so fail closed.
		re, err := regexp.Compile(cue.Rule.Pattern)
		if err != nil {
			slog.Warn("regex rule failed to compile at evaluation time",
				"cue", cue.ID, "pattern", cue.Rule.Pattern, "error", err)
			break
		}
		correct = re.MatchString(normalized)
	case model.RuleCustom:
		// Reserved for future validators: accept everything, loudly.
		slog.Warn("custom validator is not implemented, accepting answer",
			"cue", cue.ID, "validator", cue.Rule.Name)
		correct = true
	}

	key := KeyWrong
	if correct {
		key = KeyCorrect
	}
	return Result{Key: key, Correct: correct, Validated: true}
}

// Stringify renders an answer as a deterministic string. Strings pass
// through untouched; everything else is canonical JSON so equal values
// always produce equal keys.
func Stringify(answer any) string {
	if s, ok := answer.(string); ok {
		return s
	}
	data, err := json.Marshal(answer)
	if err != nil {
		// Only unserializable exotic values end up here; their text form
		// is still deterministic enough for a branch key.
		return fmt.Sprintf("%v", answer)
	}
	return string(data)
}

// Normalize trims surrounding whitespace and lowercases an answer for
// rule comparison.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

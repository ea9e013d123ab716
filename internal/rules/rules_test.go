package rules

import (
	"testing"

	"github.com/alfredjeanlab/cueline/internal/model"
)

func question(rule *model.Rule) *model.Cue {
	return &model.Cue{ID: "q", Kind: model.KindQuestion, Content: "?", Rule: rule}
}

func TestEvaluate_NoRule(t *testing.T) {
	for _, tc := range []struct {
		name    string
		answer  any
		wantKey string
	}{
		{"String", "yes", "yes"},
		{"StringUntrimmed", " Yes ", " Yes "}, // no rule: literal passthrough, no normalization
		{"Number", float64(5), "5"},
		{"Bool", true, "true"},
		{"Object", map[string]any{"a": 1, "b": 2}, `{"a":1,"b":2}`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			res := Evaluate(tc.answer, question(nil))
			if res.Key != tc.wantKey {
				t.Errorf("Key = %q, want %q", res.Key, tc.wantKey)
			}
			if res.Validated {
				t.Error("Validated = true, want false without a rule")
			}
		})
	}
}

func TestEvaluate_ExactMatch(t *testing.T) {
	rule := &model.Rule{Type: model.RuleExact, Answers: []string{"5", "Five"}}
	for _, tc := range []struct {
		answer      string
		wantKey     string
		wantCorrect bool
	}{
		{"5", KeyCorrect, true},
		{" 5 ", KeyCorrect, true},  // normalized: trimmed
		{"FIVE", KeyCorrect, true}, // normalized: lowercased, both sides
		{"6", KeyWrong, false},
		{"", KeyWrong, false},
	} {
		res := Evaluate(tc.answer, question(rule))
		if res.Key != tc.wantKey || res.Correct != tc.wantCorrect || !res.Validated {
			t.Errorf("Evaluate(%q) = %+v, want key=%q correct=%v", tc.answer, res, tc.wantKey, tc.wantCorrect)
		}
	}
}

func TestEvaluate_RegexMatch(t *testing.T) {
	rule := &model.Rule{Type: model.RuleRegex, Pattern: `^\d+$`}
	for _, tc := range []struct {
		answer      string
		wantCorrect bool
	}{
		{"42", true},
		{" 42 ", true}, // pattern runs against the normalized answer
		{"forty-two", false},
	} {
		res := Evaluate(tc.answer, question(rule))
		if res.Correct != tc.wantCorrect {
			t.Errorf("Evaluate(%q).Correct = %v, want %v", tc.answer, res.Correct, tc.wantCorrect)
		}
	}
}

func TestEvaluate_RegexBadPatternFailsClosed(t *testing.T) {
	res := Evaluate("anything", question(&model.Rule{Type: model.RuleRegex, Pattern: "(("}))
	if res.Correct || res.Key != KeyWrong {
		t.Errorf("bad pattern should evaluate wrong, got %+v", res)
	}
}

func TestEvaluate_CustomAlwaysAccepts(t *testing.T) {
	res := Evaluate("whatever", question(&model.Rule{Type: model.RuleCustom, Name: "scorer"}))
	if !res.Correct || res.Key != KeyCorrect || !res.Validated {
		t.Errorf("custom rule should accept, got %+v", res)
	}
}

func TestEvaluate_RuleOnNonAnswerableKind(t *testing.T) {
	// A rule on a kind it cannot structurally apply to still yields the
	// fixed-key contract, always correct.
	cue := &model.Cue{ID: "t", Kind: model.KindText, Content: "x",
		Rule: &model.Rule{Type: model.RuleExact, Answers: []string{"nope"}}}
	res := Evaluate("anything at all", cue)
	if res.Key != KeyCorrect || !res.Correct || !res.Validated {
		t.Errorf("got %+v, want correct fixed key", res)
	}
}

func TestEvaluate_IsPure(t *testing.T) {
	rule := &model.Rule{Type: model.RuleExact, Answers: []string{"5"}}
	cue := question(rule)
	first := Evaluate(" 5 ", cue)
	for i := 0; i < 3; i++ {
		if got := Evaluate(" 5 ", cue); got != first {
			t.Fatalf("repeat call %d returned %+v, first was %+v", i, got, first)
		}
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  MiXeD  "); got != "mixed" {
		t.Errorf("Normalize = %q, want %q", got, "mixed")
	}
}

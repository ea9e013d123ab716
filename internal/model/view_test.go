package model

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestViewRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name string
		cue  *Cue
	}{
		{"Text", &Cue{ID: "t1", Kind: KindText, Content: "welcome"}},
		{"Question", &Cue{ID: "q1", Kind: KindQuestion, Content: "how many?", Placeholder: "a number"}},
		{"Choice", &Cue{ID: "c1", Kind: KindChoice, Content: "pick one", Options: []string{"red", "blue"}}},
		{"Component", &Cue{ID: "x1", Kind: KindComponent, Component: "noise", Props: json.RawMessage(`{"level":3}`)}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := ViewOf(tc.cue).Cue()
			if got.ID != tc.cue.ID || got.Kind != tc.cue.Kind {
				t.Errorf("round trip changed identity: got id=%q kind=%q", got.ID, got.Kind)
			}
			if got.Content != tc.cue.Content || got.Placeholder != tc.cue.Placeholder {
				t.Errorf("round trip changed content fields")
			}
			if !reflect.DeepEqual(got.Options, tc.cue.Options) {
				t.Errorf("round trip changed options: %v != %v", got.Options, tc.cue.Options)
			}
			if got.Component != tc.cue.Component || string(got.Props) != string(tc.cue.Props) {
				t.Errorf("round trip changed component fields")
			}
		})
	}
}

func TestViewOf_StripsServerFields(t *testing.T) {
	cue := &Cue{
		ID:            "q1",
		Kind:          KindQuestion,
		Content:       "secret?",
		TriggerAt:     time.Now(),
		Mandatory:     true,
		AutoHideAfter: time.Minute,
		Rule:          &Rule{Type: RuleExact, Answers: []string{"hunter2"}},
	}
	data, err := json.Marshal(ViewOf(cue))
	if err != nil {
		t.Fatalf("marshal view: %v", err)
	}
	for _, leak := range []string{"hunter2", "trigger_at", "mandatory", "rule", "auto_hide"} {
		if strings.Contains(string(data), leak) {
			t.Errorf("view JSON leaks %q: %s", leak, data)
		}
	}
}

func TestNoneView(t *testing.T) {
	v := NoneView()
	if v.ID != "" || v.Kind != KindNone || v.Content != "" {
		t.Errorf("NoneView() = %+v, want empty id/content with kind none", v)
	}
}

func TestNoneCue(t *testing.T) {
	c := NoneCue("q1")
	if c.ID != "q1" || c.Kind != KindNone {
		t.Errorf("NoneCue() = %+v", c)
	}
}

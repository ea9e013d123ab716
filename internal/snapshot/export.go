// Package snapshot periodically exports show progress (participants and
// answers) as JSONL to one or more destinations, so a crashed server can
// be audited and prize draws can be run offline after the show.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/alfredjeanlab/cueline/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version          string    `json:"version"`
	Type             string    `json:"type"`
	Timestamp        time.Time `json:"timestamp"`
	ParticipantCount int       `json:"participant_count"`
	AnswerCount      int       `json:"answer_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes all participants and answers from the store as JSONL
// to w. Participants are sorted by key, answers by id.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	participants, err := s.ListParticipants(ctx)
	if err != nil {
		return fmt.Errorf("list participants: %w", err)
	}
	sort.Slice(participants, func(i, j int) bool {
		return participants[i].Key < participants[j].Key
	})

	answers, err := s.ListAnswers(ctx)
	if err != nil {
		return fmt.Errorf("list answers: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:          "1",
		Type:             "header",
		Timestamp:        time.Now().UTC(),
		ParticipantCount: len(participants),
		AnswerCount:      len(answers),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, p := range participants {
		if err := enc.Encode(record{Type: "participant", Data: p}); err != nil {
			return fmt.Errorf("encode participant %s: %w", p.ID, err)
		}
	}

	for _, a := range answers {
		if err := enc.Encode(record{Type: "answer", Data: a}); err != nil {
			return fmt.Errorf("encode answer %d: %w", a.ID, err)
		}
	}

	return nil
}

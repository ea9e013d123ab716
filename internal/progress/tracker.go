package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alfredjeanlab/cueline/internal/clock"
	"github.com/alfredjeanlab/cueline/internal/events"
	"github.com/alfredjeanlab/cueline/internal/model"
	"github.com/alfredjeanlab/cueline/internal/rules"
	"github.com/alfredjeanlab/cueline/internal/schedule"
	"github.com/alfredjeanlab/cueline/internal/store"
)

// ErrCueNotFound is returned when an answer targets a cue id not on the
// loaded timeline.
var ErrCueNotFound = errors.New("cue not found on timeline")

// ErrMissingAnswer is returned when a submission carries no answer value.
// Rejected before any state is touched; a literal "null" must never be
// recorded, branch on, or advance a cursor.
var ErrMissingAnswer = errors.New("answer value is required")

// SubmitResult reports what happened to one answer submission.
type SubmitResult struct {
	// Duplicate means the participant had already answered this cue; no
	// evaluation, branching, or cursor movement happened.
	Duplicate bool `json:"duplicate"`
	// Key is the branch trigger key the answer evaluated to.
	Key string `json:"key,omitempty"`
	// Correct is set only when the cue carries a validation rule.
	Correct *bool `json:"correct,omitempty"`
	// Injected counts branch cues fired by this answer.
	Injected int `json:"injected"`
	// Next is the cue the participant should see after this submission.
	Next model.CueView `json:"next"`
}

// Tracker applies answer submissions: it records the answer, evaluates it,
// fires branch cues, and advances the participant's cursor.
type Tracker struct {
	store     store.Store
	sched     *schedule.Scheduler
	publisher events.Publisher
	clock     clock.Clock
	logger    *slog.Logger
}

// NewTracker wires a tracker over the given store and scheduler.
func NewTracker(st store.Store, sched *schedule.Scheduler, publisher events.Publisher, clk clock.Clock, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		store:     st,
		sched:     sched,
		publisher: publisher,
		clock:     clk,
		logger:    logger,
	}
}

// View resolves the participant's current session view from stored state.
func (t *Tracker) View(ctx context.Context, participantID string) (model.CueView, error) {
	tl := t.sched.Timeline()
	if tl == nil {
		return model.NoneView(), nil
	}
	cursor, err := t.store.GetCursor(ctx, participantID)
	if err != nil {
		return model.CueView{}, fmt.Errorf("get cursor: %w", err)
	}
	answered, err := t.store.AnsweredCueIDs(ctx, participantID)
	if err != nil {
		return model.CueView{}, fmt.Errorf("answered cue ids: %w", err)
	}
	return Resolve(tl, cursor, AnsweredSet(answered)), nil
}

// SubmitAnswer processes one answer from a participant.
//
// The flow: reject unknown cue ids, short-circuit duplicates, record the
// answer, evaluate it against the cue's rule, inject any matching branch
// cues with the answer text substituted, then advance the cursor only when
// the answered cue is the one the cursor stands on. Answering an earlier
// mandatory checkpoint backfills it without moving the cursor.
func (t *Tracker) SubmitAnswer(ctx context.Context, participantID, cueID string, answer any) (*SubmitResult, error) {
	if answer == nil {
		return nil, ErrMissingAnswer
	}
	tl := t.sched.Timeline()
	if tl == nil {
		return nil, ErrCueNotFound
	}
	cue := tl.ByID(cueID)
	if cue == nil {
		return nil, ErrCueNotFound
	}

	value := rules.Stringify(answer)
	record := &model.Answer{
		ParticipantID: participantID,
		CueID:         cueID,
		Value:         value,
		AnsweredAt:    t.clock.Now(),
	}

	var (
		created bool
		cursor  int
	)
	err := t.store.RunInTransaction(ctx, func(tx store.Store) error {
		var err error
		created, err = tx.RecordAnswer(ctx, record)
		if err != nil {
			return fmt.Errorf("record answer: %w", err)
		}
		if !created {
			return nil
		}
		cursor, err = tx.GetCursor(ctx, participantID)
		if err != nil {
			return fmt.Errorf("get cursor: %w", err)
		}
		if tl.PositionOf(cueID) == cursor {
			cursor++
			if err := tx.SetCursor(ctx, participantID, cursor); err != nil {
				return fmt.Errorf("set cursor: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !created {
		t.logger.Debug("duplicate answer ignored", "participant", participantID, "cue", cueID)
		next, err := t.View(ctx, participantID)
		if err != nil {
			return nil, err
		}
		t.publish(events.TopicAnswerRecorded, events.AnswerRecorded{
			Answer: record, CueID: cueID, Duplicate: true,
		})
		return &SubmitResult{Duplicate: true, Next: next}, nil
	}

	res := rules.Evaluate(answer, cue)
	result := &SubmitResult{Key: res.Key}
	if res.Validated {
		correct := res.Correct
		result.Correct = &correct
	}

	if branches := cue.Branches.For(res.Key); len(branches) > 0 {
		t.sched.InjectNow(branches, value, cueID)
		result.Injected = len(branches)
	}

	t.logger.Info("answer recorded",
		"participant", participantID, "cue", cueID, "key", res.Key, "injected", result.Injected)
	t.publish(events.TopicAnswerRecorded, events.AnswerRecorded{
		Answer: record, CueID: cueID, Correct: result.Correct,
	})
	if tl.PositionOf(cueID) == cursor-1 {
		t.publish(events.TopicCursorAdvanced, events.CursorAdvanced{
			ParticipantID: participantID, Cursor: cursor,
		})
	}

	answered, err := t.store.AnsweredCueIDs(ctx, participantID)
	if err != nil {
		return nil, fmt.Errorf("answered cue ids: %w", err)
	}
	result.Next = Resolve(tl, cursor, AnsweredSet(answered))
	return result, nil
}

func (t *Tracker) publish(topic string, event any) {
	if err := t.publisher.Publish(context.Background(), topic, event); err != nil {
		t.logger.Warn("failed to publish event", "topic", topic, "error", err)
	}
}

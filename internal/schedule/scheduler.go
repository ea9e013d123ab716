// Package schedule drives the broadcast slot: it converts each cue's
// trigger time into a one-shot timer and tracks the single "what's showing
// now" cue, independent of any participant's gated session view.
package schedule

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/alfredjeanlab/cueline/internal/clock"
	"github.com/alfredjeanlab/cueline/internal/events"
	"github.com/alfredjeanlab/cueline/internal/model"
	"github.com/alfredjeanlab/cueline/internal/timeline"
)

// AnswerPlaceholder is the token in branch cue content replaced by the
// literal answer text on injection.
const AnswerPlaceholder = "{answer}"

// ErrNotIdle is returned when a timeline is loaded into a running scheduler.
type ErrNotIdle struct{}

func (ErrNotIdle) Error() string { return "scheduler is running; reset before loading a timeline" }

// ErrNoTimeline is returned when the show is started with nothing loaded.
type ErrNoTimeline struct{}

func (ErrNoTimeline) Error() string { return "no timeline loaded" }

// Scheduler is a two-state machine: Idle until Start, Running until Reset.
// All armed timers are cancelled unconditionally on Reset, so no stale
// timer can fire after a reset.
type Scheduler struct {
	clock     clock.Clock
	logger    *slog.Logger
	publisher events.Publisher

	mu        sync.Mutex
	tl        *timeline.Timeline
	startedAt time.Time  // zero while idle
	current   *model.Cue // broadcast slot; nil = nothing has fired yet
	timers    map[string]clock.Timer
}

// New returns an idle scheduler. The publisher receives fired/cleared
// events best-effort; pass a NoopPublisher to disable.
func New(clk clock.Clock, publisher events.Publisher, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		clock:     clk,
		logger:    logger,
		publisher: publisher,
		timers:    make(map[string]clock.Timer),
	}
}

// LoadTimeline replaces the working timeline. Valid only while idle.
func (s *Scheduler) LoadTimeline(tl *timeline.Timeline) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.startedAt.IsZero() {
		return ErrNotIdle{}
	}
	s.tl = tl
	return nil
}

// Timeline returns the working timeline, or nil before the first load.
func (s *Scheduler) Timeline() *timeline.Timeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tl
}

// Running reports whether the show has been started and not reset.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.startedAt.IsZero()
}

// StartedAt returns the show start instant; the zero time means idle.
func (s *Scheduler) StartedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startedAt
}

// Start moves the scheduler from Idle to Running, recording the start
// instant and arming a one-shot timer for every cue whose trigger time is
// not already past. Past cues are skipped with a warning, never fired
// retroactively. Starting an already-running scheduler is a warned no-op;
// it never restarts the clock.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.startedAt.IsZero() {
		s.logger.Warn("show already started, ignoring start", "started_at", s.startedAt)
		return nil
	}
	if s.tl == nil {
		return ErrNoTimeline{}
	}

	now := s.clock.Now()
	s.startedAt = now
	armed := 0
	for _, cue := range s.tl.All() {
		delay := cue.TriggerAt.Sub(now)
		if delay < 0 {
			s.logger.Warn("cue trigger time already past, skipping",
				"cue", cue.ID, "trigger_at", cue.TriggerAt)
			continue
		}
		s.armLocked(cue.ID, delay, cue)
		armed++
	}
	s.logger.Info("show started", "cues", s.tl.Len(), "armed", armed)
	return nil
}

// InjectNow fires the given branch cues immediately, in listed order,
// substituting the answer text for the placeholder token in each cue's
// content. Injected cues take the same firing path as scheduled ones,
// including auto-hide.
func (s *Scheduler) InjectNow(cues []*model.Cue, answer, sourceID string) {
	now := s.clock.Now()
	for _, cue := range cues {
		injected := cue.Clone()
		injected.TriggerAt = now
		injected.Content = strings.ReplaceAll(injected.Content, AnswerPlaceholder, answer)
		s.fire(injected)
		s.publish(events.TopicCueInjected, events.CueInjected{Cue: injected, SourceID: sourceID})
	}
}

// Reset cancels every armed timer, clears the broadcast slot and the start
// instant, and returns the scheduler to Idle. Safe to call while idle.
// It returns the number of timers cancelled.
func (s *Scheduler) Reset() int {
	s.mu.Lock()
	cancelled := 0
	for id, t := range s.timers {
		if t.Stop() {
			cancelled++
		}
		delete(s.timers, id)
	}
	s.current = nil
	s.startedAt = time.Time{}
	s.mu.Unlock()

	s.logger.Info("show reset", "cancelled_timers", cancelled)
	s.publish(events.TopicShowReset, events.ShowReset{CancelledTimers: cancelled})
	return cancelled
}

// Current returns the broadcast slot. nil means nothing has fired yet;
// a none-kind cue means the last cue auto-hid. Callers render both as
// "nothing showing" but must not conflate them.
func (s *Scheduler) Current() *model.Cue {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// armLocked registers a one-shot timer under the given key. Must be called
// with s.mu held.
func (s *Scheduler) armLocked(key string, delay time.Duration, cue *model.Cue) {
	if prev, ok := s.timers[key]; ok {
		prev.Stop()
	}
	s.timers[key] = s.clock.AfterFunc(delay, func() {
		s.fire(cue)
	})
}

// fire puts a cue into the broadcast slot and, when the cue auto-hides,
// arms the clearing timer. It runs detached from any request context and
// must never panic: failures are logged and dropped.
func (s *Scheduler) fire(cue *model.Cue) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic while firing cue", "cue", cue.ID, "panic", r)
		}
	}()

	s.mu.Lock()
	delete(s.timers, cue.ID)
	s.current = cue
	if cue.AutoHideAfter > 0 {
		firedID := cue.ID
		s.timers[firedID+"/hide"] = s.clock.AfterFunc(cue.AutoHideAfter, func() {
			s.autoHide(firedID)
		})
	}
	s.mu.Unlock()

	s.logger.Info("cue fired", "cue", cue.ID, "kind", cue.Kind)
	s.publish(events.TopicCueFired, events.CueFired{Cue: cue})
}

// autoHide replaces the broadcast slot with the none sentinel, but only if
// the fired cue is still showing. A later cue displacing the slot makes
// the hide timer stale, and stale timers must not clear it.
func (s *Scheduler) autoHide(id string) {
	s.mu.Lock()
	delete(s.timers, id+"/hide")
	if s.current == nil || s.current.ID != id || s.current.Kind == model.KindNone {
		s.mu.Unlock()
		return
	}
	s.current = model.NoneCue(id)
	s.mu.Unlock()

	s.logger.Info("cue auto-hidden", "cue", id)
	s.publish(events.TopicCueCleared, events.CueCleared{CueID: id})
}

// publish emits an event best-effort. Scheduler callers never wait on the
// bus, so failures are logged and swallowed.
func (s *Scheduler) publish(topic string, event any) {
	if err := s.publisher.Publish(context.Background(), topic, event); err != nil {
		s.logger.Warn("failed to publish event", "topic", topic, "error", err)
	}
}

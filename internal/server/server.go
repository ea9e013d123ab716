// Package server exposes the show engine over HTTP: admin control of the
// schedule, participant session polling and answer submission, and an SSE
// stream of live events.
package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/alfredjeanlab/cueline/internal/clock"
	"github.com/alfredjeanlab/cueline/internal/events"
	"github.com/alfredjeanlab/cueline/internal/presence"
	"github.com/alfredjeanlab/cueline/internal/progress"
	"github.com/alfredjeanlab/cueline/internal/schedule"
	"github.com/alfredjeanlab/cueline/internal/store"
	"github.com/alfredjeanlab/cueline/internal/timeline"
)

// ShowServer owns the scheduler, the progress tracker, and the HTTP
// surface over them.
type ShowServer struct {
	store     store.Store
	publisher events.Publisher
	sseHub    *sseHub
	logger    *slog.Logger
	clk       clock.Clock

	Scheduler *schedule.Scheduler
	Tracker   *progress.Tracker
	Presence  *presence.Tracker

	mu      sync.Mutex
	title   string
	pending *timeline.Show // offsets resolved when the show starts
}

// NewShowServer returns a ShowServer backed by the given store and
// publisher. Scheduler and tracker events are fanned out to both NATS and
// connected SSE clients.
func NewShowServer(st store.Store, pub events.Publisher, clk clock.Clock, logger *slog.Logger) *ShowServer {
	if logger == nil {
		logger = slog.Default()
	}
	hub := newSSEHub()
	fanout := &fanoutPublisher{next: pub, hub: hub, logger: logger}
	sched := schedule.New(clk, fanout, logger)
	return &ShowServer{
		store:     st,
		publisher: fanout,
		sseHub:    hub,
		logger:    logger,
		clk:       clk,
		Scheduler: sched,
		Tracker:   progress.NewTracker(st, sched, fanout, clk, logger),
		Presence:  presence.New(),
	}
}

// LoadShow loads a resolved timeline into the scheduler. Valid only while
// the show is idle.
func (s *ShowServer) LoadShow(tl *timeline.Timeline, title string) error {
	if err := s.Scheduler.LoadTimeline(tl); err != nil {
		return err
	}
	s.mu.Lock()
	s.title = title
	s.mu.Unlock()
	return nil
}

// LoadShowFile stores a parsed show for deferred resolution: relative cue
// offsets are anchored to the instant the show is actually started, not
// the instant the file was loaded.
func (s *ShowServer) LoadShowFile(show *timeline.Show) {
	s.mu.Lock()
	s.pending = show
	s.title = show.Title
	s.mu.Unlock()
}

// pendingShow returns the stored show awaiting resolution, if any.
func (s *ShowServer) pendingShow() *timeline.Show {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// clearPending drops the stored show after it has been resolved.
func (s *ShowServer) clearPending() {
	s.mu.Lock()
	s.pending = nil
	s.mu.Unlock()
}

// Title returns the loaded show's title.
func (s *ShowServer) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// publish emits an event to NATS and the SSE hub, best-effort.
func (s *ShowServer) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Warn("failed to publish event", "topic", topic, "error", err)
	}
}

// inputError indicates invalid user input.
// Transport layers map this to 400.
type inputError string

func (e inputError) Error() string { return string(e) }

// fanoutPublisher forwards events to the wrapped publisher and mirrors
// them onto the SSE hub. The scheduler fires from timer goroutines, so
// this is the one place every event passes through on its way to clients.
type fanoutPublisher struct {
	next   events.Publisher
	hub    *sseHub
	logger *slog.Logger
}

func (p *fanoutPublisher) Publish(ctx context.Context, topic string, event any) error {
	if payload, err := json.Marshal(event); err != nil {
		p.logger.Warn("failed to marshal event for SSE broadcast", "topic", topic, "error", err)
	} else {
		p.hub.broadcast(topic, payload)
	}
	return p.next.Publish(ctx, topic, event)
}

func (p *fanoutPublisher) Close() error {
	return p.next.Close()
}

// Package presence tracks which participants are actively polling the
// show, for the live roster view.
//
// The Tracker keeps an in-memory map updated directly by the server on
// every session poll and answer submission. A background reaper goroutine
// marks participants that stopped polling as dropped after a configurable
// threshold; the persistent store keeps their progress either way, so a
// dropped participant that resumes polling picks up where they left off.
package presence

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Entry represents a single participant's live presence state.
type Entry struct {
	ParticipantID string    `json:"participant_id"`
	Key           string    `json:"key"`
	FirstSeen     time.Time `json:"first_seen"`
	LastSeen      time.Time `json:"last_seen"`
	LastAction    string    `json:"last_action"` // "poll" or "answer"
	IdleSecs      float64   `json:"idle_secs"`   // seconds since last activity
	PollCount     int64     `json:"poll_count"`
	AnswerCount   int64     `json:"answer_count"`
	Dropped       bool      `json:"dropped,omitempty"` // true if reaper marked dropped
	DroppedAt     time.Time `json:"dropped_at,omitzero"`
}

// ReaperConfig configures the background dropout reaper.
type ReaperConfig struct {
	// DropThreshold is how long a participant must be idle before being
	// marked dropped. Default: 2 minutes.
	DropThreshold time.Duration

	// EvictAfter is how long after being marked dropped before a
	// participant is removed from the in-memory map. Prevents unbounded
	// growth from one-poll visitors. Default: 30 minutes.
	EvictAfter time.Duration

	// SweepInterval is how often the reaper scans for dropouts.
	// Default: 15 seconds.
	SweepInterval time.Duration

	// OnDropped is called for each participant newly marked dropped.
	// Called outside the lock.
	OnDropped func(participantID, key string)
}

// Tracker maintains an in-memory roster of active participants.
type Tracker struct {
	mu           sync.RWMutex
	participants map[string]*participantState
	started      time.Time

	reaperStop chan struct{}
	reaperDone chan struct{}
}

type participantState struct {
	key         string
	firstSeen   time.Time
	lastSeen    time.Time
	lastAction  string
	pollCount   int64
	answerCount int64
	dropped     bool
	droppedAt   time.Time
}

// New creates a new presence tracker.
func New() *Tracker {
	return &Tracker{
		participants: make(map[string]*participantState),
		started:      time.Now(),
	}
}

// RecordPoll marks a participant active after a session poll.
func (t *Tracker) RecordPoll(participantID, key string) {
	t.record(participantID, key, "poll")
}

// RecordAnswer marks a participant active after an answer submission.
func (t *Tracker) RecordAnswer(participantID, key string) {
	t.record(participantID, key, "answer")
}

func (t *Tracker) record(participantID, key, action string) {
	if participantID == "" {
		return
	}

	now := time.Now()
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.participants[participantID]
	if !ok {
		state = &participantState{key: key, firstSeen: now}
		t.participants[participantID] = state
	}

	// A dropped participant that polls again rejoins the roster.
	if state.dropped {
		slog.Info("presence: participant rejoined", "participant", participantID, "key", key)
		state.dropped = false
		state.droppedAt = time.Time{}
	}

	state.lastSeen = now
	state.lastAction = action
	switch action {
	case "poll":
		state.pollCount++
	case "answer":
		state.answerCount++
	}
	if key != "" {
		state.key = key
	}
}

// Roster returns a snapshot of tracked participants, sorted by most
// recently active. staleThreshold controls how long since last activity
// before a participant is excluded. Pass 0 to include everyone ever seen.
func (t *Tracker) Roster(staleThreshold time.Duration) []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := time.Now()
	entries := make([]Entry, 0, len(t.participants))

	for id, state := range t.participants {
		idle := now.Sub(state.lastSeen)
		if staleThreshold > 0 && idle > staleThreshold {
			continue
		}

		firstSeen := state.firstSeen
		if firstSeen.IsZero() {
			firstSeen = t.started
		}

		entries = append(entries, Entry{
			ParticipantID: id,
			Key:           state.key,
			FirstSeen:     firstSeen,
			LastSeen:      state.lastSeen,
			LastAction:    state.lastAction,
			IdleSecs:      idle.Seconds(),
			PollCount:     state.pollCount,
			AnswerCount:   state.answerCount,
			Dropped:       state.dropped,
			DroppedAt:     state.droppedAt,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].LastSeen.After(entries[j].LastSeen)
	})

	return entries
}

// StartReaper launches a background goroutine that periodically marks idle
// participants as dropped. Call Stop() to shut it down.
func (t *Tracker) StartReaper(cfg *ReaperConfig) {
	if cfg == nil {
		cfg = &ReaperConfig{}
	}
	if cfg.DropThreshold == 0 {
		cfg.DropThreshold = 2 * time.Minute
	}
	if cfg.EvictAfter == 0 {
		cfg.EvictAfter = 30 * time.Minute
	}
	if cfg.SweepInterval == 0 {
		cfg.SweepInterval = 15 * time.Second
	}

	t.reaperStop = make(chan struct{})
	t.reaperDone = make(chan struct{})

	go t.reapLoop(cfg)
	slog.Info("presence: reaper started",
		"drop_threshold", cfg.DropThreshold,
		"sweep_interval", cfg.SweepInterval)
}

// Stop shuts down the reaper goroutine.
func (t *Tracker) Stop() {
	if t.reaperStop != nil {
		close(t.reaperStop)
		<-t.reaperDone
		t.reaperStop = nil
		t.reaperDone = nil
	}
}

func (t *Tracker) reapLoop(cfg *ReaperConfig) {
	defer close(t.reaperDone)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-t.reaperStop:
			return
		case <-ticker.C:
			t.sweep(cfg)
		}
	}
}

func (t *Tracker) sweep(cfg *ReaperConfig) {
	now := time.Now()

	type droppedParticipant struct {
		id  string
		key string
	}
	var newlyDropped []droppedParticipant

	t.mu.Lock()
	for id, state := range t.participants {
		if state.dropped {
			if !state.droppedAt.IsZero() && now.Sub(state.droppedAt) > cfg.EvictAfter {
				delete(t.participants, id)
			}
			continue
		}
		idle := now.Sub(state.lastSeen)
		if idle > cfg.DropThreshold {
			state.dropped = true
			state.droppedAt = now
			newlyDropped = append(newlyDropped, droppedParticipant{id: id, key: state.key})
		}
	}
	t.mu.Unlock()

	for _, dropped := range newlyDropped {
		slog.Info("presence: participant dropped",
			"participant", dropped.id,
			"key", dropped.key,
			"threshold", cfg.DropThreshold)
		if cfg.OnDropped != nil {
			cfg.OnDropped(dropped.id, dropped.key)
		}
	}
}

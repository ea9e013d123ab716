package server

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/alfredjeanlab/cueline/internal/clock"
	"github.com/alfredjeanlab/cueline/internal/events"
	"github.com/alfredjeanlab/cueline/internal/model"
	"github.com/alfredjeanlab/cueline/internal/store"
	"github.com/alfredjeanlab/cueline/internal/timeline"
)

var showStart = time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)

// mockStore is an in-memory store.Store for handler tests.
type mockStore struct {
	mu       sync.Mutex
	byKey    map[string]*model.Participant
	cursors  map[string]int
	answers  []*model.Answer
	answered map[string]map[string]bool
	nextID   int64
}

func newMockStore() *mockStore {
	return &mockStore{
		byKey:    make(map[string]*model.Participant),
		cursors:  make(map[string]int),
		answered: make(map[string]map[string]bool),
	}
}

func (m *mockStore) CreateOrFindParticipant(_ context.Context, id, key string) (*model.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.byKey[key]; ok {
		p.Cursor = m.cursors[p.ID]
		return p, nil
	}
	p := &model.Participant{ID: id, Key: key, CreatedAt: time.Now()}
	m.byKey[key] = p
	m.cursors[id] = 0
	return p, nil
}

func (m *mockStore) GetParticipant(_ context.Context, id string) (*model.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byKey {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStore) ListParticipants(_ context.Context) ([]*model.Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Participant
	for _, p := range m.byKey {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockStore) GetCursor(_ context.Context, participantID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursors[participantID], nil
}

func (m *mockStore) SetCursor(_ context.Context, participantID string, cursor int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursors[participantID] = cursor
	return nil
}

func (m *mockStore) RecordAnswer(_ context.Context, answer *model.Answer) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.answered[answer.ParticipantID][answer.CueID] {
		return false, nil
	}
	if m.answered[answer.ParticipantID] == nil {
		m.answered[answer.ParticipantID] = make(map[string]bool)
	}
	m.answered[answer.ParticipantID][answer.CueID] = true
	m.nextID++
	answer.ID = m.nextID
	m.answers = append(m.answers, answer)
	return true, nil
}

func (m *mockStore) HasAnswered(_ context.Context, participantID, cueID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.answered[participantID][cueID], nil
}

func (m *mockStore) AnsweredCueIDs(_ context.Context, participantID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []string
	for _, a := range m.answers {
		if a.ParticipantID == participantID {
			ids = append(ids, a.CueID)
		}
	}
	return ids, nil
}

func (m *mockStore) AnswerCount(_ context.Context, cueID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.answers {
		if a.CueID == cueID {
			n++
		}
	}
	return n, nil
}

func (m *mockStore) ListAnswers(_ context.Context) ([]*model.Answer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.Answer(nil), m.answers...), nil
}

func (m *mockStore) ResetProgress(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.answers = nil
	m.answered = make(map[string]map[string]bool)
	for id := range m.cursors {
		m.cursors[id] = 0
	}
	return nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }

// newTestServer builds a ShowServer over a mock store and a fake clock,
// with the given cues loaded.
func newTestServer(t *testing.T, cues ...*model.Cue) (*ShowServer, *mockStore, *clock.Fake, http.Handler) {
	t.Helper()
	st := newMockStore()
	clk := clock.NewFake(showStart)
	srv := NewShowServer(st, &events.NoopPublisher{}, clk, slog.New(slog.DiscardHandler))
	if len(cues) > 0 {
		tl, err := timeline.New(cues)
		if err != nil {
			t.Fatalf("timeline.New: %v", err)
		}
		if err := srv.LoadShow(tl, "Test Show"); err != nil {
			t.Fatalf("LoadShow: %v", err)
		}
	}
	return srv, st, clk, srv.NewHTTPHandler("")
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func requireStatus(t *testing.T, rec *httptest.ResponseRecorder, code int) {
	t.Helper()
	if rec.Code != code {
		t.Fatalf("expected status %d, got %d; body: %s", code, rec.Code, rec.Body.String())
	}
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func textCue(id string, offset time.Duration) *model.Cue {
	return &model.Cue{
		ID:        id,
		TriggerAt: showStart.Add(offset),
		Kind:      model.KindText,
		Content:   "cue " + id,
	}
}

func questionCue(id string, offset time.Duration, mandatory bool) *model.Cue {
	return &model.Cue{
		ID:        id,
		TriggerAt: showStart.Add(offset),
		Kind:      model.KindQuestion,
		Content:   "question " + id,
		Mandatory: mandatory,
	}
}

func TestHealth(t *testing.T) {
	_, _, _, handler := newTestServer(t)

	rec := doJSON(t, handler, "GET", "/v1/health", nil)
	requireStatus(t, rec, http.StatusOK)

	var resp map[string]string
	decodeJSON(t, rec, &resp)
	if resp["status"] != "ok" {
		t.Errorf("status = %q, want ok", resp["status"])
	}
}

func TestStartShowWithoutTimeline(t *testing.T) {
	_, _, _, handler := newTestServer(t)

	rec := doJSON(t, handler, "POST", "/v1/show/start", nil)
	requireStatus(t, rec, http.StatusConflict)
}

func TestStartShowAndBroadcast(t *testing.T) {
	_, _, clk, handler := newTestServer(t,
		textCue("intro", 0),
		textCue("second", 10*time.Second),
	)

	rec := doJSON(t, handler, "POST", "/v1/show/start", nil)
	requireStatus(t, rec, http.StatusOK)

	// Nothing has fired before the clock moves.
	rec = doJSON(t, handler, "GET", "/v1/broadcast", nil)
	requireStatus(t, rec, http.StatusOK)
	var broadcast struct {
		Cue *model.CueView `json:"cue"`
	}
	decodeJSON(t, rec, &broadcast)
	if broadcast.Cue != nil {
		t.Fatalf("broadcast cue = %+v, want null before first fire", broadcast.Cue)
	}

	clk.Advance(0)
	rec = doJSON(t, handler, "GET", "/v1/broadcast", nil)
	decodeJSON(t, rec, &broadcast)
	if broadcast.Cue == nil || broadcast.Cue.ID != "intro" {
		t.Fatalf("broadcast cue = %+v, want intro", broadcast.Cue)
	}

	clk.Advance(10 * time.Second)
	rec = doJSON(t, handler, "GET", "/v1/broadcast", nil)
	decodeJSON(t, rec, &broadcast)
	if broadcast.Cue == nil || broadcast.Cue.ID != "second" {
		t.Fatalf("broadcast cue = %+v, want second", broadcast.Cue)
	}
}

func TestStartShowTwice(t *testing.T) {
	_, _, _, handler := newTestServer(t, textCue("intro", 0))

	rec := doJSON(t, handler, "POST", "/v1/show/start", nil)
	requireStatus(t, rec, http.StatusOK)

	// Second start is a no-op, still 200.
	rec = doJSON(t, handler, "POST", "/v1/show/start", nil)
	requireStatus(t, rec, http.StatusOK)
}

func TestGetShow(t *testing.T) {
	_, _, _, handler := newTestServer(t, textCue("intro", 0))

	rec := doJSON(t, handler, "GET", "/v1/show", nil)
	requireStatus(t, rec, http.StatusOK)

	var resp struct {
		Title    string `json:"title"`
		Running  bool   `json:"running"`
		CueCount int    `json:"cue_count"`
	}
	decodeJSON(t, rec, &resp)
	if resp.Title != "Test Show" {
		t.Errorf("title = %q, want Test Show", resp.Title)
	}
	if resp.Running {
		t.Error("running = true before start")
	}
	if resp.CueCount != 1 {
		t.Errorf("cue_count = %d, want 1", resp.CueCount)
	}
}

func TestResetShow(t *testing.T) {
	_, st, clk, handler := newTestServer(t,
		textCue("intro", 0),
		textCue("later", time.Minute),
	)

	doJSON(t, handler, "POST", "/v1/show/start", nil)
	clk.Advance(0)

	rec := doJSON(t, handler, "POST", "/v1/show/reset", nil)
	requireStatus(t, rec, http.StatusOK)
	var resp struct {
		Reset           bool `json:"reset"`
		CancelledTimers int  `json:"cancelled_timers"`
	}
	decodeJSON(t, rec, &resp)
	if !resp.Reset {
		t.Error("reset = false")
	}
	if resp.CancelledTimers != 1 {
		t.Errorf("cancelled_timers = %d, want 1 (the unfired later cue)", resp.CancelledTimers)
	}

	// The armed timer must not fire after the reset.
	clk.Advance(time.Hour)
	rec = doJSON(t, handler, "GET", "/v1/broadcast", nil)
	var broadcast struct {
		Cue *model.CueView `json:"cue"`
	}
	decodeJSON(t, rec, &broadcast)
	if broadcast.Cue != nil {
		t.Fatalf("broadcast cue = %+v, want null after reset", broadcast.Cue)
	}

	answers, _ := st.ListAnswers(context.Background())
	if len(answers) != 0 {
		t.Errorf("answers after reset = %d, want 0", len(answers))
	}
}

func TestListCues(t *testing.T) {
	_, _, _, handler := newTestServer(t,
		textCue("a", 0),
		textCue("b", time.Second),
	)

	rec := doJSON(t, handler, "GET", "/v1/cues", nil)
	requireStatus(t, rec, http.StatusOK)
	var resp struct {
		Count int          `json:"count"`
		Cues  []*model.Cue `json:"cues"`
	}
	decodeJSON(t, rec, &resp)
	if resp.Count != 2 || len(resp.Cues) != 2 {
		t.Fatalf("count = %d, cues = %d, want 2", resp.Count, len(resp.Cues))
	}
}

func TestGetCue(t *testing.T) {
	_, _, _, handler := newTestServer(t, textCue("a", 0))

	rec := doJSON(t, handler, "GET", "/v1/cues/a", nil)
	requireStatus(t, rec, http.StatusOK)

	rec = doJSON(t, handler, "GET", "/v1/cues/missing", nil)
	requireStatus(t, rec, http.StatusNotFound)
}

func TestSessionRequiresParticipant(t *testing.T) {
	_, _, _, handler := newTestServer(t, textCue("a", 0))

	rec := doJSON(t, handler, "GET", "/v1/session", nil)
	requireStatus(t, rec, http.StatusBadRequest)
}

func TestSessionCreatesParticipant(t *testing.T) {
	_, _, _, handler := newTestServer(t,
		textCue("welcome", 0),
	)

	rec := doJSON(t, handler, "GET", "/v1/session?participant=alice", nil)
	requireStatus(t, rec, http.StatusOK)

	var resp struct {
		ParticipantID string        `json:"participant_id"`
		Cursor        int           `json:"cursor"`
		Cue           model.CueView `json:"cue"`
	}
	decodeJSON(t, rec, &resp)
	if resp.ParticipantID == "" {
		t.Fatal("participant_id empty")
	}
	if resp.Cue.ID != "welcome" {
		t.Fatalf("cue = %q, want welcome", resp.Cue.ID)
	}

	// Polling again with the same key reuses the participant.
	rec = doJSON(t, handler, "GET", "/v1/session?participant=alice", nil)
	var again struct {
		ParticipantID string `json:"participant_id"`
	}
	decodeJSON(t, rec, &again)
	if again.ParticipantID != resp.ParticipantID {
		t.Fatalf("participant_id changed across polls: %q vs %q", again.ParticipantID, resp.ParticipantID)
	}
}

// Polls surfacing an answerable cue carry has_answered and a live tally;
// text cues carry neither.
func TestSessionAnswerAnnotations(t *testing.T) {
	_, _, _, handler := newTestServer(t, questionCue("q1", 0, true))

	var resp struct {
		Cue         model.CueView `json:"cue"`
		HasAnswered *bool         `json:"has_answered"`
		AnswerCount *int          `json:"answer_count"`
	}
	rec := doJSON(t, handler, "GET", "/v1/session?participant=alice", nil)
	requireStatus(t, rec, http.StatusOK)
	decodeJSON(t, rec, &resp)
	if resp.Cue.ID != "q1" {
		t.Fatalf("cue = %q, want q1", resp.Cue.ID)
	}
	if resp.HasAnswered == nil || *resp.HasAnswered {
		t.Fatalf("has_answered = %v, want false", resp.HasAnswered)
	}
	if resp.AnswerCount == nil || *resp.AnswerCount != 0 {
		t.Fatalf("answer_count = %v, want 0", resp.AnswerCount)
	}

	// Bob answers; Alice's next poll sees the tally move.
	rec = doJSON(t, handler, "POST", "/v1/session/answer",
		map[string]any{"participant": "bob", "cue_id": "q1", "answer": "x"})
	requireStatus(t, rec, http.StatusOK)

	rec = doJSON(t, handler, "GET", "/v1/session?participant=alice", nil)
	decodeJSON(t, rec, &resp)
	if resp.AnswerCount == nil || *resp.AnswerCount != 1 {
		t.Fatalf("answer_count = %v, want 1", resp.AnswerCount)
	}
	if resp.HasAnswered == nil || *resp.HasAnswered {
		t.Fatalf("has_answered = %v, want false for alice", resp.HasAnswered)
	}
}

func TestSubmitAnswerValidation(t *testing.T) {
	_, _, _, handler := newTestServer(t, questionCue("q1", 0, false))

	rec := doJSON(t, handler, "POST", "/v1/session/answer",
		map[string]any{"cue_id": "q1", "answer": "x"})
	requireStatus(t, rec, http.StatusBadRequest)

	rec = doJSON(t, handler, "POST", "/v1/session/answer",
		map[string]any{"participant": "alice", "answer": "x"})
	requireStatus(t, rec, http.StatusBadRequest)

	rec = doJSON(t, handler, "POST", "/v1/session/answer",
		map[string]any{"participant": "alice", "cue_id": "missing", "answer": "x"})
	requireStatus(t, rec, http.StatusNotFound)
}

// A body omitting the answer value must be rejected before anything is
// recorded; otherwise the nil decodes through as the literal "null".
func TestSubmitAnswerRequiresValue(t *testing.T) {
	q := questionCue("q1", 0, false)
	q.Branches = &model.Branches{OnKey: map[string][]*model.Cue{
		"null": {{ID: "null-path", Kind: model.KindText, Content: "oops"}},
	}}
	srv, st, _, handler := newTestServer(t, q)

	rec := doJSON(t, handler, "POST", "/v1/session/answer",
		map[string]any{"participant": "alice", "cue_id": "q1"})
	requireStatus(t, rec, http.StatusBadRequest)

	// Explicit JSON null is the same as omitting the field.
	rec = doJSON(t, handler, "POST", "/v1/session/answer",
		map[string]any{"participant": "alice", "cue_id": "q1", "answer": nil})
	requireStatus(t, rec, http.StatusBadRequest)

	if len(st.answers) != 0 {
		t.Fatalf("stored %d answers, want 0", len(st.answers))
	}
	if cur := srv.Scheduler.Current(); cur != nil {
		t.Fatalf("branch fired from rejected submission: %+v", cur)
	}
}

func TestSubmitAnswerFlow(t *testing.T) {
	q := questionCue("q1", 0, true)
	q.Rule = &model.Rule{Type: model.RuleExact, Answers: []string{"5"}}
	q.Branches = &model.Branches{OnKey: map[string][]*model.Cue{
		"correct": {{ID: "praise", Kind: model.KindText, Content: "Nice, {answer}!"}},
	}}
	srv, _, _, handler := newTestServer(t, q, textCue("after", time.Minute))

	rec := doJSON(t, handler, "POST", "/v1/session/answer",
		map[string]any{"participant": "alice", "cue_id": "q1", "answer": " 5 "})
	requireStatus(t, rec, http.StatusOK)

	var resp struct {
		Duplicate bool          `json:"duplicate"`
		Key       string        `json:"key"`
		Correct   *bool         `json:"correct"`
		Injected  int           `json:"injected"`
		Next      model.CueView `json:"next"`
	}
	decodeJSON(t, rec, &resp)
	if resp.Duplicate {
		t.Error("duplicate = true on first submission")
	}
	if resp.Key != "correct" {
		t.Errorf("key = %q, want correct", resp.Key)
	}
	if resp.Correct == nil || !*resp.Correct {
		t.Errorf("correct = %v, want true", resp.Correct)
	}
	if resp.Injected != 1 {
		t.Errorf("injected = %d, want 1", resp.Injected)
	}
	if resp.Next.ID != "after" {
		t.Errorf("next = %q, want after", resp.Next.ID)
	}

	// The injected branch cue took the broadcast slot with the answer
	// substituted.
	cur := srv.Scheduler.Current()
	if cur == nil || cur.Content != "Nice,  5 !" {
		t.Fatalf("broadcast = %+v, want injected cue with literal answer text", cur)
	}

	// Second submission is a duplicate.
	rec = doJSON(t, handler, "POST", "/v1/session/answer",
		map[string]any{"participant": "alice", "cue_id": "q1", "answer": "5"})
	requireStatus(t, rec, http.StatusOK)
	decodeJSON(t, rec, &resp)
	if !resp.Duplicate {
		t.Error("duplicate = false on repeat submission")
	}
}

func TestParticipantRoster(t *testing.T) {
	_, _, _, handler := newTestServer(t, textCue("a", 0))

	doJSON(t, handler, "GET", "/v1/session?participant=alice", nil)
	doJSON(t, handler, "GET", "/v1/session?participant=bob", nil)

	rec := doJSON(t, handler, "GET", "/v1/participants/roster", nil)
	requireStatus(t, rec, http.StatusOK)

	var resp struct {
		Count int `json:"count"`
	}
	decodeJSON(t, rec, &resp)
	if resp.Count != 2 {
		t.Fatalf("roster count = %d, want 2", resp.Count)
	}
}

// Show files loaded before the show starts must anchor cue offsets to the
// start instant, not the load instant.
func TestStartShowResolvesShowFileOffsets(t *testing.T) {
	srv, _, clk, handler := newTestServer(t)

	path := filepath.Join(t.TempDir(), "show.json")
	show := `{
		"title": "Offset Show",
		"cues": [
			{"id": "opener", "kind": "text", "content": "Hello", "offset": "10s"}
		]
	}`
	if err := os.WriteFile(path, []byte(show), 0o644); err != nil {
		t.Fatalf("write show file: %v", err)
	}

	parsed, err := timeline.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	srv.LoadShowFile(parsed)

	var showResp struct {
		Title    string `json:"title"`
		CueCount int    `json:"cue_count"`
	}
	rec := doJSON(t, handler, "GET", "/v1/show", nil)
	requireStatus(t, rec, http.StatusOK)
	decodeJSON(t, rec, &showResp)
	if showResp.Title != "Offset Show" || showResp.CueCount != 1 {
		t.Fatalf("unexpected show: %+v", showResp)
	}

	// Sit idle for a minute before starting; the opener must still fire
	// 10s after start, not 10s after load.
	clk.Advance(time.Minute)
	rec = doJSON(t, handler, "POST", "/v1/show/start", nil)
	requireStatus(t, rec, http.StatusOK)

	clk.Advance(9 * time.Second)
	if cur := srv.Scheduler.Current(); cur != nil {
		t.Fatalf("cue fired early: %+v", cur)
	}

	clk.Advance(time.Second)
	cur := srv.Scheduler.Current()
	if cur == nil || cur.ID != "opener" {
		t.Fatalf("expected opener on broadcast, got %+v", cur)
	}
}

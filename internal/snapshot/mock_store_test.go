package snapshot

import (
	"context"
	"fmt"

	"github.com/alfredjeanlab/cueline/internal/model"
	"github.com/alfredjeanlab/cueline/internal/store"
)

// mockStore is an in-memory store for snapshot tests.
type mockStore struct {
	participants map[string]*model.Participant
	answers      []*model.Answer
}

func newMockStore() *mockStore {
	return &mockStore{participants: make(map[string]*model.Participant)}
}

func (s *mockStore) CreateOrFindParticipant(_ context.Context, id, key string) (*model.Participant, error) {
	for _, p := range s.participants {
		if p.Key == key {
			return p, nil
		}
	}
	p := &model.Participant{ID: id, Key: key}
	s.participants[id] = p
	return p, nil
}

func (s *mockStore) GetParticipant(_ context.Context, id string) (*model.Participant, error) {
	p, ok := s.participants[id]
	if !ok {
		return nil, fmt.Errorf("participant %s not found", id)
	}
	return p, nil
}

func (s *mockStore) ListParticipants(_ context.Context) ([]*model.Participant, error) {
	out := make([]*model.Participant, 0, len(s.participants))
	for _, p := range s.participants {
		out = append(out, p)
	}
	return out, nil
}

func (s *mockStore) GetCursor(_ context.Context, participantID string) (int, error) {
	p, ok := s.participants[participantID]
	if !ok {
		return 0, fmt.Errorf("participant %s not found", participantID)
	}
	return p.Cursor, nil
}

func (s *mockStore) SetCursor(_ context.Context, participantID string, cursor int) error {
	p, ok := s.participants[participantID]
	if !ok {
		return fmt.Errorf("participant %s not found", participantID)
	}
	p.Cursor = cursor
	return nil
}

func (s *mockStore) RecordAnswer(_ context.Context, answer *model.Answer) (bool, error) {
	for _, a := range s.answers {
		if a.ParticipantID == answer.ParticipantID && a.CueID == answer.CueID {
			return false, nil
		}
	}
	answer.ID = int64(len(s.answers) + 1)
	s.answers = append(s.answers, answer)
	return true, nil
}

func (s *mockStore) HasAnswered(_ context.Context, participantID, cueID string) (bool, error) {
	for _, a := range s.answers {
		if a.ParticipantID == participantID && a.CueID == cueID {
			return true, nil
		}
	}
	return false, nil
}

func (s *mockStore) AnsweredCueIDs(_ context.Context, participantID string) ([]string, error) {
	var ids []string
	for _, a := range s.answers {
		if a.ParticipantID == participantID {
			ids = append(ids, a.CueID)
		}
	}
	return ids, nil
}

func (s *mockStore) AnswerCount(_ context.Context, cueID string) (int, error) {
	count := 0
	for _, a := range s.answers {
		if a.CueID == cueID {
			count++
		}
	}
	return count, nil
}

func (s *mockStore) ListAnswers(_ context.Context) ([]*model.Answer, error) {
	return s.answers, nil
}

func (s *mockStore) ResetProgress(_ context.Context) error {
	s.answers = nil
	for _, p := range s.participants {
		p.Cursor = 0
	}
	return nil
}

func (s *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

func (s *mockStore) Close() error { return nil }

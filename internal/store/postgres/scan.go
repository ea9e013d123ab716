package postgres

import (
	"github.com/alfredjeanlab/cueline/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanParticipant scans a single row into a model.Participant.
// The row must contain columns in the order defined by participantColumns.
func scanParticipant(row scannable) (*model.Participant, error) {
	var p model.Participant
	if err := row.Scan(&p.ID, &p.Key, &p.Cursor, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// scanAnswer scans a single row into a model.Answer.
// The row must contain columns in the order defined by answerColumns.
func scanAnswer(row scannable) (*model.Answer, error) {
	var a model.Answer
	if err := row.Scan(&a.ID, &a.ParticipantID, &a.CueID, &a.Value, &a.AnsweredAt); err != nil {
		return nil, err
	}
	return &a, nil
}

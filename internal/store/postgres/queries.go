package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/alfredjeanlab/cueline/internal/model"
)

// participantColumns is the column list used for SELECT statements on the
// participants table.
const participantColumns = `id, key, cursor_pos, created_at`

// answerColumns is the column list used for SELECT statements on the
// answers table.
const answerColumns = `id, participant_id, cue_id, value, answered_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queryCreateOrFindParticipant inserts a participant keyed on its client
// key, or returns the existing row for that key. The no-op DO UPDATE makes
// RETURNING yield the existing row on conflict.
func queryCreateOrFindParticipant(ctx context.Context, db executor, id, key string) (*model.Participant, error) {
	row := db.QueryRowContext(ctx, `
		INSERT INTO participants (id, key)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET key = EXCLUDED.key
		RETURNING `+participantColumns,
		id, key)
	p, err := scanParticipant(row)
	if err != nil {
		return nil, fmt.Errorf("create or find participant: %w", err)
	}
	return p, nil
}

func queryGetParticipant(ctx context.Context, db executor, id string) (*model.Participant, error) {
	row := db.QueryRowContext(ctx, `SELECT `+participantColumns+` FROM participants WHERE id = $1`, id)
	return scanParticipant(row)
}

func queryListParticipants(ctx context.Context, db executor) ([]*model.Participant, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+participantColumns+` FROM participants ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var participants []*model.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan participants: %w", err)
	}
	return participants, nil
}

func queryGetCursor(ctx context.Context, db executor, participantID string) (int, error) {
	var cursor int
	err := db.QueryRowContext(ctx,
		`SELECT cursor_pos FROM participants WHERE id = $1`, participantID).Scan(&cursor)
	if err != nil {
		return 0, err
	}
	return cursor, nil
}

func querySetCursor(ctx context.Context, db executor, participantID string, cursor int) error {
	result, err := db.ExecContext(ctx,
		`UPDATE participants SET cursor_pos = $2 WHERE id = $1`, participantID, cursor)
	if err != nil {
		return fmt.Errorf("set cursor: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// queryRecordAnswer inserts an answer row and reports whether it was
// created. The unique (participant_id, cue_id) constraint makes a repeat
// submission a silent no-op rather than an error.
func queryRecordAnswer(ctx context.Context, db executor, a *model.Answer) (bool, error) {
	row := db.QueryRowContext(ctx, `
		INSERT INTO answers (participant_id, cue_id, value, answered_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (participant_id, cue_id) DO NOTHING
		RETURNING id`,
		a.ParticipantID, a.CueID, a.Value, a.AnsweredAt)
	if err := row.Scan(&a.ID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("record answer: %w", err)
	}
	return true, nil
}

func queryHasAnswered(ctx context.Context, db executor, participantID, cueID string) (bool, error) {
	var answered bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM answers WHERE participant_id = $1 AND cue_id = $2)`,
		participantID, cueID).Scan(&answered)
	if err != nil {
		return false, fmt.Errorf("has answered: %w", err)
	}
	return answered, nil
}

func queryAnsweredCueIDs(ctx context.Context, db executor, participantID string) ([]string, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT cue_id FROM answers WHERE participant_id = $1 ORDER BY id`, participantID)
	if err != nil {
		return nil, fmt.Errorf("answered cue ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan cue id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan cue ids: %w", err)
	}
	return ids, nil
}

func queryAnswerCount(ctx context.Context, db executor, cueID string) (int, error) {
	var count int
	err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM answers WHERE cue_id = $1`, cueID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("answer count: %w", err)
	}
	return count, nil
}

func queryListAnswers(ctx context.Context, db executor) ([]*model.Answer, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+answerColumns+` FROM answers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}
	defer rows.Close()

	var answers []*model.Answer
	for rows.Next() {
		a, err := scanAnswer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan answer: %w", err)
		}
		answers = append(answers, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan answers: %w", err)
	}
	return answers, nil
}

func queryResetProgress(ctx context.Context, db executor) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM answers`); err != nil {
		return fmt.Errorf("delete answers: %w", err)
	}
	if _, err := db.ExecContext(ctx, `UPDATE participants SET cursor_pos = 0`); err != nil {
		return fmt.Errorf("rewind cursors: %w", err)
	}
	return nil
}

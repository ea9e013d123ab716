// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/alfredjeanlab/cueline/internal/model"
	"github.com/alfredjeanlab/cueline/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateOrFindParticipant(ctx context.Context, id, key string) (*model.Participant, error) {
	return queryCreateOrFindParticipant(ctx, s.db, id, key)
}

func (s *PostgresStore) GetParticipant(ctx context.Context, id string) (*model.Participant, error) {
	return queryGetParticipant(ctx, s.db, id)
}

func (s *PostgresStore) ListParticipants(ctx context.Context) ([]*model.Participant, error) {
	return queryListParticipants(ctx, s.db)
}

func (s *PostgresStore) GetCursor(ctx context.Context, participantID string) (int, error) {
	return queryGetCursor(ctx, s.db, participantID)
}

func (s *PostgresStore) SetCursor(ctx context.Context, participantID string, cursor int) error {
	return querySetCursor(ctx, s.db, participantID, cursor)
}

func (s *PostgresStore) RecordAnswer(ctx context.Context, answer *model.Answer) (bool, error) {
	return queryRecordAnswer(ctx, s.db, answer)
}

func (s *PostgresStore) HasAnswered(ctx context.Context, participantID, cueID string) (bool, error) {
	return queryHasAnswered(ctx, s.db, participantID, cueID)
}

func (s *PostgresStore) AnsweredCueIDs(ctx context.Context, participantID string) ([]string, error) {
	return queryAnsweredCueIDs(ctx, s.db, participantID)
}

func (s *PostgresStore) AnswerCount(ctx context.Context, cueID string) (int, error) {
	return queryAnswerCount(ctx, s.db, cueID)
}

func (s *PostgresStore) ListAnswers(ctx context.Context) ([]*model.Answer, error) {
	return queryListAnswers(ctx, s.db)
}

func (s *PostgresStore) ResetProgress(ctx context.Context) error {
	return queryResetProgress(ctx, s.db)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) CreateOrFindParticipant(ctx context.Context, id, key string) (*model.Participant, error) {
	return queryCreateOrFindParticipant(ctx, s.tx, id, key)
}

func (s *txStore) GetParticipant(ctx context.Context, id string) (*model.Participant, error) {
	return queryGetParticipant(ctx, s.tx, id)
}

func (s *txStore) ListParticipants(ctx context.Context) ([]*model.Participant, error) {
	return queryListParticipants(ctx, s.tx)
}

func (s *txStore) GetCursor(ctx context.Context, participantID string) (int, error) {
	return queryGetCursor(ctx, s.tx, participantID)
}

func (s *txStore) SetCursor(ctx context.Context, participantID string, cursor int) error {
	return querySetCursor(ctx, s.tx, participantID, cursor)
}

func (s *txStore) RecordAnswer(ctx context.Context, answer *model.Answer) (bool, error) {
	return queryRecordAnswer(ctx, s.tx, answer)
}

func (s *txStore) HasAnswered(ctx context.Context, participantID, cueID string) (bool, error) {
	return queryHasAnswered(ctx, s.tx, participantID, cueID)
}

func (s *txStore) AnsweredCueIDs(ctx context.Context, participantID string) ([]string, error) {
	return queryAnsweredCueIDs(ctx, s.tx, participantID)
}

func (s *txStore) AnswerCount(ctx context.Context, cueID string) (int, error) {
	return queryAnswerCount(ctx, s.tx, cueID)
}

func (s *txStore) ListAnswers(ctx context.Context) ([]*model.Answer, error) {
	return queryListAnswers(ctx, s.tx)
}

func (s *txStore) ResetProgress(ctx context.Context) error {
	return queryResetProgress(ctx, s.tx)
}

// RunInTransaction on a txStore reuses the already-open transaction.
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

func (s *txStore) Close() error { return nil }

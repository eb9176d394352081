package idgen

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const sequenceSchema = `
    CREATE TABLE IF NOT EXISTS code_sequences (
        name  TEXT PRIMARY KEY,
        value BIGINT NOT NULL
    )`

// PostgresSequence stores one row per sequence name and advances it with an
// upsert, so concurrent callers never see the same value.
type PostgresSequence struct {
	db *sql.DB
}

func NewPostgresSequence(db *sql.DB) *PostgresSequence {
	return &PostgresSequence{db: db}
}

// Init creates the backing table if it does not exist.
func (s *PostgresSequence) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sequenceSchema); err != nil {
		return fmt.Errorf("failed to create code_sequences: %w", err)
	}
	return nil
}

func (s *PostgresSequence) Next(ctx context.Context, name string) (uint64, error) {
	query := `
        INSERT INTO code_sequences (name, value)
        VALUES ($1, 1)
        ON CONFLICT (name) DO UPDATE SET value = code_sequences.value + 1
        RETURNING value
    `
	var val int64
	if err := s.db.QueryRowContext(ctx, query, name).Scan(&val); err != nil {
		return 0, fmt.Errorf("failed to advance sequence: %w", err)
	}
	return uint64(val), nil
}

func (s *PostgresSequence) Current(ctx context.Context, name string) (uint64, error) {
	var val int64
	err := s.db.QueryRowContext(ctx, `SELECT value FROM code_sequences WHERE name = $1`, name).Scan(&val)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read sequence: %w", err)
	}
	return uint64(val), nil
}

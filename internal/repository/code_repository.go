package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/Siddarth2230/flowcode/internal/models"
	"github.com/Siddarth2230/flowcode/pkg/metrics"
)

// ErrDuplicate is returned when a code was already recorded for a sequence.
var ErrDuplicate = errors.New("code already issued for sequence")

const uniqueViolation = "23505"

const schema = `
    CREATE TABLE IF NOT EXISTS issued_codes (
        id            BIGSERIAL PRIMARY KEY,
        sequence_name TEXT        NOT NULL,
        seq_value     BIGINT      NOT NULL,
        code          TEXT        NOT NULL,
        code_length   INT         NOT NULL,
        tier          INT         NOT NULL,
        issued_at     TIMESTAMPTZ NOT NULL,
        UNIQUE (sequence_name, code)
    )`

type CodeRepository struct {
	db *sql.DB
}

func NewCodeRepository(db *sql.DB) *CodeRepository {
	return &CodeRepository{db: db}
}

// Migrate creates the issued_codes table if it does not exist.
func (r *CodeRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create issued_codes: %w", err)
	}
	return nil
}

func (r *CodeRepository) Save(ctx context.Context, c *models.IssuedCode) error {
	defer observe("save", time.Now())

	query := `
        INSERT INTO issued_codes (sequence_name, seq_value, code, code_length, tier, issued_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	row := r.db.QueryRowContext(ctx, query, c.Sequence, int64(c.Value), c.Code, c.Length, c.Tier, c.IssuedAt)
	if err := row.Scan(&c.ID); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicate
		}
		slog.Error("saving issued code", "sequence", c.Sequence, "code", c.Code, "err", err)
		return err
	}
	return nil
}

// FindByCode returns nil, nil when the code was never issued.
func (r *CodeRepository) FindByCode(ctx context.Context, sequence, code string) (*models.IssuedCode, error) {
	defer observe("find_by_code", time.Now())

	query := `
        SELECT id, sequence_name, seq_value, code, code_length, tier, issued_at
        FROM issued_codes
        WHERE sequence_name = $1 AND code = $2
	`
	c, err := scanCode(r.db.QueryRowContext(ctx, query, sequence, code))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		slog.Error("finding issued code", "sequence", sequence, "code", code, "err", err)
		return nil, err
	}
	return c, nil
}

// ListBySequence returns up to limit codes, newest first.
func (r *CodeRepository) ListBySequence(ctx context.Context, sequence string, limit int) ([]models.IssuedCode, error) {
	defer observe("list_by_sequence", time.Now())

	query := `
        SELECT id, sequence_name, seq_value, code, code_length, tier, issued_at
        FROM issued_codes
        WHERE sequence_name = $1
        ORDER BY seq_value DESC
        LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, sequence, limit)
	if err != nil {
		slog.Error("listing issued codes", "sequence", sequence, "err", err)
		return nil, err
	}
	defer rows.Close()

	var out []models.IssuedCode
	for rows.Next() {
		c, err := scanCode(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCode(s scanner) (*models.IssuedCode, error) {
	var (
		c     models.IssuedCode
		value int64
	)
	if err := s.Scan(&c.ID, &c.Sequence, &value, &c.Code, &c.Length, &c.Tier, &c.IssuedAt); err != nil {
		return nil, err
	}
	c.Value = uint64(value)
	return &c, nil
}

func observe(op string, start time.Time) {
	metrics.DatabaseQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

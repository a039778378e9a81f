package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ticket-marketplace/internal/domain"
	"ticket-marketplace/internal/domain/model"
	"ticket-marketplace/internal/domain/ports/repository"
)

var _ repository.FailureLedger = (*failureLedgerRepo)(nil)

const failureLedgerSchema = `
CREATE TABLE IF NOT EXISTS fulfillment_failures (
  id          TEXT PRIMARY KEY,
  event_id    TEXT NOT NULL,
  event_type  TEXT NOT NULL,
  step        TEXT NOT NULL,
  order_id    TEXT NOT NULL DEFAULT '',
  user_id     TEXT NOT NULL DEFAULT '',
  recipient   TEXT NOT NULL DEFAULT '',
  error       TEXT NOT NULL,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS fulfillment_failures_event_idx ON fulfillment_failures (event_id);`

type failureLedgerRepo struct {
	pool *pgxpool.Pool
}

func NewFailureLedgerRepo(pool *pgxpool.Pool) *failureLedgerRepo {
	return &failureLedgerRepo{pool: pool}
}

// EnsureSchema creates the ledger table when missing.
func (r *failureLedgerRepo) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, failureLedgerSchema); err != nil {
		return fmt.Errorf("ensure failure ledger schema: %w", err)
	}
	return nil
}

func (r *failureLedgerRepo) Record(ctx context.Context, f *model.FailedStep) error {
	const q = `
INSERT INTO fulfillment_failures (id, event_id, event_type, step, order_id, user_id, recipient, error, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO NOTHING;`

	_, err := r.pool.Exec(ctx, q, f.ID, f.EventID, f.EventType, f.Step, f.OrderID, f.UserID, f.Recipient, f.Error, f.CreatedAt)
	if err != nil {
		return mapPgErr("record failure", err)
	}
	return nil
}

// ListByEvent returns the ledger entries of one provider event, oldest first.
func (r *failureLedgerRepo) ListByEvent(ctx context.Context, eventID string) ([]*model.FailedStep, error) {
	const q = `
SELECT id, event_id, event_type, step, order_id, user_id, recipient, error, created_at
  FROM fulfillment_failures
 WHERE event_id=$1
 ORDER BY created_at ASC;`

	rows, err := r.pool.Query(ctx, q, eventID)
	if err != nil {
		return nil, mapPgErr("list failures", err)
	}
	defer rows.Close()

	var out []*model.FailedStep
	for rows.Next() {
		var f model.FailedStep
		if err := rows.Scan(&f.ID, &f.EventID, &f.EventType, &f.Step, &f.OrderID, &f.UserID, &f.Recipient, &f.Error, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		out = append(out, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgErr("list failures", err)
	}
	if len(out) == 0 {
		return nil, domain.NewNotFound("failure", eventID)
	}
	return out, nil
}

func mapPgErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01": // undefined_table
			return fmt.Errorf("%s: ledger schema missing: %w", op, err)
		case "23502", "22001": // not_null_violation, string_data_right_truncation
			return fmt.Errorf("%s: %w: %s", op, domain.ErrInvalidArgument, pgErr.Message)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

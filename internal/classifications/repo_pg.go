package classifications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation  = "23505"
	pgCheckViolation   = "23514"
	pgNotNullViolation = "23502"
)

// PGRepo implements Repo using Postgres. The (classification_id, user_id)
// primary key and the layer CHECK constraint are the backstop for the
// batch-rejection contract.
type PGRepo struct {
	DB *sql.DB
}

// CreateMany inserts the batch in a single statement, so either every row
// lands or none do. Rows come back with their store-assigned timestamps.
func (r *PGRepo) CreateMany(ctx context.Context, records []Classification) ([]Classification, error) {
	if len(records) == 0 {
		return []Classification{}, nil
	}

	var sb strings.Builder
	sb.WriteString(`
INSERT INTO classifications (classification_id, user_id, layer)
VALUES `)
	args := make([]any, 0, len(records)*3)
	for i, rec := range records {
		if rec.UserID == "" {
			return nil, fmt.Errorf("%w: user is required", ErrInvalidInput)
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "($%d, $%d, $%d)", i*3+1, i*3+2, i*3+3)
		args = append(args, rec.ID, rec.UserID, rec.Layer)
	}
	sb.WriteString(`
RETURNING classification_id, user_id, layer, modification_date`)

	rows, err := r.DB.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, mapConstraintError(err)
	}
	defer rows.Close()

	out := make([]Classification, 0, len(records))
	for rows.Next() {
		var rec Classification
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Layer, &rec.ModificationDate); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapConstraintError(err)
	}
	return out, nil
}

// GetByUser returns the user's rows ordered by classification id.
func (r *PGRepo) GetByUser(ctx context.Context, userID string) ([]Classification, error) {
	const query = `
SELECT classification_id, user_id, layer, modification_date
FROM classifications
WHERE user_id = $1
ORDER BY classification_id`

	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Classification, 0)
	for rows.Next() {
		var rec Classification
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Layer, &rec.ModificationDate); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// DeleteByUser removes all rows for the user.
func (r *PGRepo) DeleteByUser(ctx context.Context, userID string) error {
	const query = `DELETE FROM classifications WHERE user_id = $1`
	_, err := r.DB.ExecContext(ctx, query, userID)
	return err
}

func mapConstraintError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
		case pgCheckViolation, pgNotNullViolation:
			return fmt.Errorf("%w: %s", ErrInvalidInput, pgErr.Message)
		}
	}
	return err
}

var _ Repo = (*PGRepo)(nil)

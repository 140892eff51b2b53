package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const userColumns = "id, first_name, last_name, mail, created_at, updated_at"

// sortColumns whitelists sortable fields; anything else falls back to id.
var sortColumns = map[string]string{
	"id":        "id",
	"firstName": "first_name",
	"lastName":  "last_name",
	"mail":      "mail",
	"createdAt": "created_at",
}

func (r *PGRepo) Create(ctx context.Context, user User) (User, error) {
	created, err := r.CreateMany(ctx, []User{user})
	if err != nil {
		return User{}, err
	}
	return created[0], nil
}

// CreateMany inserts the batch in a single statement so constraint violations
// reject it whole.
func (r *PGRepo) CreateMany(ctx context.Context, batch []User) ([]User, error) {
	if len(batch) == 0 {
		return []User{}, nil
	}

	var sb strings.Builder
	sb.WriteString(`
INSERT INTO users (id, first_name, last_name, mail)
VALUES `)
	args := make([]any, 0, len(batch)*4)
	for i, user := range batch {
		if user.ID == "" || user.FirstName == "" || user.LastName == "" || user.Mail == "" {
			return nil, ErrInvalidInput
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d)", i*4+1, i*4+2, i*4+3, i*4+4)
		args = append(args, user.ID, user.FirstName, user.LastName, user.Mail)
	}
	sb.WriteString(`
RETURNING ` + userColumns)

	rows, err := r.DB.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, mapUserError(err)
	}
	defer rows.Close()

	out := make([]User, 0, len(batch))
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	if err := rows.Err(); err != nil {
		return nil, mapUserError(err)
	}
	return out, nil
}

func (r *PGRepo) UpdateByID(ctx context.Context, id string, upd Update) (User, error) {
	if upd.FirstName == "" || upd.LastName == "" || upd.Mail == "" {
		return User{}, ErrInvalidInput
	}
	const query = `
UPDATE users
SET first_name = $1, last_name = $2, mail = $3, updated_at = now()
WHERE id = $4
RETURNING ` + userColumns

	user, err := scanUser(r.DB.QueryRowContext(ctx, query, upd.FirstName, upd.LastName, upd.Mail, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (r *PGRepo) DeleteByID(ctx context.Context, id string) (User, error) {
	const query = `
DELETE FROM users
WHERE id = $1
RETURNING ` + userColumns

	user, err := scanUser(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (User, error) {
	const query = `
SELECT ` + userColumns + `
FROM users
WHERE id = $1
LIMIT 1`

	user, err := scanUser(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	return user, nil
}

func (r *PGRepo) GetByIDs(ctx context.Context, ids []string) ([]User, error) {
	if len(ids) == 0 {
		return []User{}, nil
	}
	var sb strings.Builder
	sb.WriteString(`
SELECT ` + userColumns + `
FROM users
WHERE id IN (`)
	args := make([]any, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "$%d", i+1)
		args = append(args, id)
	}
	sb.WriteString(`)
ORDER BY id`)

	return r.queryUsers(ctx, sb.String(), args...)
}

func (r *PGRepo) GetMany(ctx context.Context, filter Filter, page Page) ([]User, error) {
	page = page.Normalize()
	where, args := filterClause(filter)
	query := fmt.Sprintf(`
SELECT %s
FROM users
%s
ORDER BY %s %s
LIMIT $%d OFFSET $%d`, userColumns, where, sortColumn(page.SortBy), sortDirection(page.SortDesc), len(args)+1, len(args)+2)
	args = append(args, page.Limit, page.Offset)

	return r.queryUsers(ctx, query, args...)
}

func (r *PGRepo) Count(ctx context.Context, filter Filter) (int, error) {
	where, args := filterClause(filter)
	query := "SELECT COUNT(*) FROM users " + where

	var count int
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PGRepo) Search(ctx context.Context, term string, page Page) ([]User, error) {
	page = page.Normalize()
	query := fmt.Sprintf(`
SELECT %s
FROM users
WHERE %s
ORDER BY %s %s
LIMIT $2 OFFSET $3`, userColumns, searchClause, sortColumn(page.SortBy), sortDirection(page.SortDesc))

	return r.queryUsers(ctx, query, searchPattern(term), page.Limit, page.Offset)
}

func (r *PGRepo) SearchCount(ctx context.Context, term string) (int, error) {
	query := "SELECT COUNT(*) FROM users WHERE " + searchClause

	var count int
	if err := r.DB.QueryRowContext(ctx, query, searchPattern(term)).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

const searchClause = "(id ILIKE $1 OR first_name ILIKE $1 OR last_name ILIKE $1 OR mail ILIKE $1)"

func searchPattern(term string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
	return "%" + escaped + "%"
}

func filterClause(filter Filter) (string, []any) {
	var conds []string
	var args []any
	add := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		conds = append(conds, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("first_name", filter.FirstName)
	add("last_name", filter.LastName)
	add("mail", filter.Mail)
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func sortColumn(sortBy string) string {
	if col, ok := sortColumns[sortBy]; ok {
		return col
	}
	return "id"
}

func sortDirection(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}

func (r *PGRepo) queryUsers(ctx context.Context, query string, args ...any) ([]User, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, user)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var user User
	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Mail,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

func mapUserError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return err
}

var _ Repo = (*PGRepo)(nil)

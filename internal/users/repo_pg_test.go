package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

var userCols = []string{"id", "first_name", "last_name", "mail", "created_at", "updated_at"}

func userRow(id, first, last, mail string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(userCols).AddRow(id, first, last, mail, now, now)
}

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("u-1", "Ada", "Lovelace", "ada@example.org").
		WillReturnRows(userRow("u-1", "Ada", "Lovelace", "ada@example.org"))

	repo := &PGRepo{DB: db}
	created, err := repo.Create(context.Background(), User{
		ID: "u-1", FirstName: "Ada", LastName: "Lovelace", Mail: "ada@example.org",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != "u-1" || created.CreatedAt.IsZero() {
		t.Fatalf("unexpected user %+v", created)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_pkey"})

	repo := &PGRepo{DB: db}
	if _, err := repo.Create(context.Background(), User{
		ID: "u-1", FirstName: "Ada", LastName: "Lovelace", Mail: "ada@example.org",
	}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
}

func TestPGRepoCreateManyValidatesBeforeQuerying(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := &PGRepo{DB: db}
	if _, err := repo.CreateMany(context.Background(), []User{
		{ID: "", FirstName: "Ada", LastName: "Lovelace", Mail: "ada@example.org"},
	}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no query expected: %v", err)
	}
}

func TestPGRepoUpdateByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("UPDATE users").
		WithArgs("Augusta", "King", "augusta@example.org", "nope").
		WillReturnError(sql.ErrNoRows)

	repo := &PGRepo{DB: db}
	if _, err := repo.UpdateByID(context.Background(), "nope", Update{
		FirstName: "Augusta", LastName: "King", Mail: "augusta@example.org",
	}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoDeleteByIDReturnsRecord(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("DELETE FROM users").
		WithArgs("u-1").
		WillReturnRows(userRow("u-1", "Ada", "Lovelace", "ada@example.org"))

	repo := &PGRepo{DB: db}
	deleted, err := repo.DeleteByID(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("DeleteByID: %v", err)
	}
	if deleted.Mail != "ada@example.org" {
		t.Fatalf("unexpected user %+v", deleted)
	}
}

func TestPGRepoGetByIDs(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	now := time.Now().UTC()
	rows := sqlmock.NewRows(userCols).
		AddRow("u-1", "Ada", "Lovelace", "ada@example.org", now, now).
		AddRow("u-2", "Grace", "Hopper", "grace@example.org", now, now)

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("u-1", "u-2").
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	list, err := repo.GetByIDs(context.Background(), []string{"u-1", "u-2"})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 users, got %d", len(list))
	}
}

func TestPGRepoGetByIDsEmpty(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	repo := &PGRepo{DB: db}
	list, err := repo.GetByIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty slice, got %+v", list)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no query expected: %v", err)
	}
}

func TestPGRepoSearchEscapesPattern(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs(`%100\%%`, 20, 0).
		WillReturnRows(sqlmock.NewRows(userCols))

	repo := &PGRepo{DB: db}
	if _, err := repo.Search(context.Background(), "100%", Page{}); err != nil {
		t.Fatalf("Search: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestPGRepoCountWithFilter(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("Ada").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	repo := &PGRepo{DB: db}
	count, err := repo.Count(context.Background(), Filter{FirstName: "Ada"})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2, got %d", count)
	}
}

func TestSortColumnWhitelist(t *testing.T) {
	if got := sortColumn("firstName"); got != "first_name" {
		t.Fatalf("unexpected column %q", got)
	}
	if got := sortColumn("created_at; DROP TABLE users"); got != "id" {
		t.Fatalf("unknown sort keys must fall back to id, got %q", got)
	}
}

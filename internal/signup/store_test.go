package signup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record() Record {
	return Record{
		ID:           "6f1c0c7e-2f7e-4bde-9c1b-1f3b0b7f0a11",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Email:        "Ada@Example.com",
		PasswordHash: "$2a$04$hash",
		CreatedAt:    time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestPostgresStore_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(
			"6f1c0c7e-2f7e-4bde-9c1b-1f3b0b7f0a11",
			"Ada",
			"Lovelace",
			"ada@example.com",
			"$2a$04$hash",
			sqlmock.AnyArg(), // created_at
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	store := NewPostgresStore(db)
	assert.NoError(t, store.Create(context.Background(), record()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DuplicateEmail(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err = NewPostgresStore(db).Create(context.Background(), record())
	assert.True(t, errors.Is(err, ErrEmailTaken))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_OtherErrorsWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`INSERT INTO users`).WillReturnError(errors.New("connection reset"))

	err = NewPostgresStore(db).Create(context.Background(), record())
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrEmailTaken))
	assert.Contains(t, err.Error(), "insert user")
}

func TestPostgresStore_EnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, NewPostgresStore(db).EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryStore_UniqueByEmail(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, record()))

	dup := record()
	dup.Email = "ADA@example.COM"
	assert.ErrorIs(t, s.Create(ctx, dup), ErrEmailTaken)

	got, ok := s.Lookup("ada@example.com")
	assert.True(t, ok)
	assert.Equal(t, "Ada", got.FirstName)
}

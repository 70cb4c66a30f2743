package signup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/lib/pq"
)

type Record struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

type Store interface {
	Create(ctx context.Context, r Record) error
	Ping(ctx context.Context) error
}

// MemoryStore is used when no database is configured.
type MemoryStore struct {
	mu      sync.Mutex
	byEmail map[string]Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byEmail: make(map[string]Record)}
}

func (s *MemoryStore) Create(_ context.Context, r Record) error {
	key := strings.ToLower(r.Email)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[key]; ok {
		return ErrEmailTaken
	}
	s.byEmail[key] = r
	return nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Lookup(email string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byEmail[strings.ToLower(email)]
	return r, ok
}

const (
	uniqueViolation = "23505"

	createUsersTable = `CREATE TABLE IF NOT EXISTS users (
	id         UUID PRIMARY KEY,
	first_name TEXT NOT NULL,
	last_name  TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	password   TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

	insertUser = `INSERT INTO users (id, first_name, last_name, email, password, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`
)

type PostgresStore struct {
	db *sql.DB
}

func OpenPostgres(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return NewPostgresStore(db), nil
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createUsersTable); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, r Record) error {
	_, err := s.db.ExecContext(ctx, insertUser,
		r.ID, r.FirstName, r.LastName, strings.ToLower(r.Email), r.PasswordHash, r.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Package keybook stores shared wheel keys under names in PostgreSQL, so
// correspondents can refer to a key without pasting it into every request.
package keybook

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Hadidomena/inqwheel/message_utils"
	"github.com/Hadidomena/inqwheel/wheelcipher"
	"github.com/lib/pq"
)

var (
	ErrKeyNotFound = errors.New("key not found")
	ErrKeyExists   = errors.New("key name already in use")
)

// uniqueViolation is the PostgreSQL SQLSTATE for a duplicate primary key.
const uniqueViolation = "23505"

const schema = `CREATE TABLE IF NOT EXISTS wheel_keys (
	name       TEXT PRIMARY KEY,
	wheel_key  TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Entry is one stored key.
type Entry struct {
	Name      string
	Key       string
	CreatedAt time.Time
}

// Store is a keybook backed by a *sql.DB.
type Store struct {
	db      *sql.DB
	sealKey []byte
}

type StoreOption func(*Store)

// WithSealKey stores keys sealed with AES-GCM under a 32-byte storage key
// instead of in the clear.
func WithSealKey(key []byte) StoreOption {
	return func(s *Store) { s.sealKey = key }
}

// Open connects to PostgreSQL with the lib/pq driver and checks the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	return db, nil
}

func NewStore(db *sql.DB, opts ...StoreOption) *Store {
	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) seal(name, key string) (string, error) {
	if s.sealKey == nil {
		return key, nil
	}
	return message_utils.SealKey(key, name, s.sealKey)
}

func (s *Store) open(name, stored string) (string, error) {
	if s.sealKey == nil {
		return stored, nil
	}
	key, err := message_utils.OpenKey(stored, name, s.sealKey)
	if err != nil {
		return "", fmt.Errorf("key %s: %w", name, err)
	}
	return key, nil
}

// Migrate creates the wheel_keys table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create wheel_keys table: %w", err)
	}
	return nil
}

// Save stores key under name. The key must build a WheelSet; its normalized
// form is what gets stored.
func (s *Store) Save(ctx context.Context, name, key string) error {
	ws, err := wheelcipher.Build(key)
	if err != nil {
		return err
	}

	stored, err := s.seal(name, ws.Key())
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO wheel_keys (name, wheel_key) VALUES ($1, $2)",
		name, stored)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return fmt.Errorf("%w: %s", ErrKeyExists, name)
		}
		return fmt.Errorf("failed to save key: %w", err)
	}
	return nil
}

// Lookup returns the normalized key stored under name.
func (s *Store) Lookup(ctx context.Context, name string) (string, error) {
	var key string
	err := s.db.QueryRowContext(ctx,
		"SELECT wheel_key FROM wheel_keys WHERE name = $1", name).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up key: %w", err)
	}
	return s.open(name, key)
}

// Wheels looks name up and builds its WheelSet.
func (s *Store) Wheels(ctx context.Context, name string) (*wheelcipher.WheelSet, error) {
	key, err := s.Lookup(ctx, name)
	if err != nil {
		return nil, err
	}
	return wheelcipher.Build(key)
}

// List returns every stored key ordered by name.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, wheel_key, created_at FROM wheel_keys ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Name, &e.Key, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan key row: %w", err)
		}
		if e.Key, err = s.open(e.Name, e.Key); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return entries, nil
}

// Delete removes name. Deleting a missing name returns ErrKeyNotFound.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM wheel_keys WHERE name = $1", name)
	if err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, name)
	}
	return nil
}

// Package store persists the profile's ordered collections and flags in a
// local SQLite database. Reads never fail: a missing or malformed value is an
// empty collection.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Store is the durable key-value layer behind every collection.
type Store struct {
	db     *sql.DB
	path   string
	logger zerolog.Logger

	// mu serializes read-modify-write cycles so two handlers never interleave
	// inside one mutation.
	mu sync.Mutex

	lmu       sync.Mutex
	listeners map[string]map[int]func()
	nextID    int

	dmu     sync.Mutex
	digests map[string]string
}

// Open initializes or connects to the profile database and applies migrations.
func Open(ctx context.Context, path string, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous = FULL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if err := applyMigrations(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:        db,
		path:      path,
		logger:    logger.With().Str("component", "store").Logger(),
		listeners: make(map[string]map[int]func()),
		digests:   make(map[string]string),
	}, nil
}

func applyMigrations(db *sql.DB) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	// m.Close would close db as well, so the instance is left to the GC.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Subscribe registers fn to run after every successful mutation of the named
// collection, including changes written by another process. The returned
// function removes the registration.
func (s *Store) Subscribe(name string, fn func()) func() {
	s.lmu.Lock()
	defer s.lmu.Unlock()

	if s.listeners[name] == nil {
		s.listeners[name] = make(map[int]func())
	}
	id := s.nextID
	s.nextID++
	s.listeners[name][id] = fn

	return func() {
		s.lmu.Lock()
		defer s.lmu.Unlock()
		delete(s.listeners[name], id)
	}
}

func (s *Store) notify(name string) {
	s.lmu.Lock()
	fns := make([]func(), 0, len(s.listeners[name]))
	for _, fn := range s.listeners[name] {
		fns = append(fns, fn)
	}
	s.lmu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

func (s *Store) subscribedNames() []string {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	names := make([]string, 0, len(s.listeners))
	for name, fns := range s.listeners {
		if len(fns) > 0 {
			names = append(names, name)
		}
	}
	return names
}

// Flag reads a boolean flag. Unset or unreadable flags are false.
func (s *Store) Flag(ctx context.Context, name string) bool {
	raw, ok := s.get(ctx, name)
	if !ok {
		return false
	}
	return strings.TrimSpace(raw) == "true"
}

// SetFlag durably stores a boolean flag.
func (s *Store) SetFlag(ctx context.Context, name string, value bool) error {
	s.mu.Lock()
	err := s.put(ctx, name, fmt.Sprintf("%t", value))
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notify(name)
	return nil
}

// get returns the raw stored value. Database errors are logged and reported
// as a missing value.
func (s *Store) get(ctx context.Context, name string) (string, bool) {
	payload, ok, err := s.read(ctx, name)
	if err != nil {
		s.logger.Warn().Err(err).Str("collection", name).Msg("failed to read collection")
		return "", false
	}
	return payload, ok
}

// read returns the raw stored value, reporting a missing row as ok=false and
// any other database failure as an error.
func (s *Store) read(ctx context.Context, name string) (string, bool, error) {
	ctx = ensureContext(ctx)
	var payload string
	err := retryOnBusy(ctx, func() error {
		return s.db.QueryRowContext(ctx,
			`SELECT payload FROM collections WHERE name = ?`, name,
		).Scan(&payload)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return payload, true, nil
}

func (s *Store) put(ctx context.Context, name, payload string) error {
	ctx = ensureContext(ctx)
	now := time.Now().UTC().Format(time.RFC3339Nano)
	err := retryOnBusy(ctx, func() error {
		_, execErr := s.db.ExecContext(ctx,
			`INSERT INTO collections (name, payload, updated_at) VALUES (?, ?, ?)
             ON CONFLICT(name) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
			name, payload, now,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	s.remember(name, payload)
	return nil
}

func (s *Store) remember(name, payload string) {
	s.dmu.Lock()
	s.digests[name] = digest(payload)
	s.dmu.Unlock()
}

// Refresh re-reads every subscribed collection and notifies those whose stored
// value differs from the last value this process saw.
func (s *Store) Refresh(ctx context.Context) []string {
	var changed []string
	for _, name := range s.subscribedNames() {
		raw, _ := s.get(ctx, name)
		d := digest(raw)

		s.dmu.Lock()
		prev, seen := s.digests[name]
		s.digests[name] = d
		s.dmu.Unlock()

		if seen && prev == d {
			continue
		}
		changed = append(changed, name)
		s.notify(name)
	}
	return changed
}

func digest(payload string) string {
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

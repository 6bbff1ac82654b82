// Package store keeps the event log in SQLite.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/verte-zerg/keydrill/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for drill events.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("failed to close db after migration error")
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY,
			timestamp INTEGER NOT NULL,
			character TEXT NOT NULL,
			typed TEXT NOT NULL,
			elapsed REAL NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_character ON events(character);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Load returns every event in insertion order.
func (s *Store) Load(ctx context.Context) ([]model.Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT timestamp, character, typed, elapsed FROM events ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("failed to close rows")
		}
	}()

	var events []model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.Timestamp, &e.Char, &e.Typed, &e.Elapsed); err != nil {
			return nil, err
		}
		e.Elapsed = model.RoundElapsed(e.Elapsed)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Append inserts one event.
func (s *Store) Append(ctx context.Context, e model.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (timestamp, character, typed, elapsed) VALUES (?, ?, ?, ?)`,
		e.Timestamp, e.Char, e.Typed, e.Elapsed)
	return err
}

// Save replaces the stored log with events in a single transaction.
func (s *Store) Save(ctx context.Context, events []model.Event) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				log.Warn().Err(rerr).Msg("failed to roll back")
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM events`); err != nil {
		return err
	}
	if len(events) > 0 {
		var stmt *sql.Stmt
		stmt, err = tx.PrepareContext(ctx,
			`INSERT INTO events (timestamp, character, typed, elapsed) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				log.Warn().Err(cerr).Msg("failed to close statement")
			}
		}()
		for _, e := range events {
			if _, err = stmt.ExecContext(ctx, e.Timestamp, e.Char, e.Typed, e.Elapsed); err != nil {
				return err
			}
		}
	}

	err = tx.Commit()
	return err
}

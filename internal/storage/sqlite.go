package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/Kanaan7/NutritionTracker/internal"
)

// AUTOINCREMENT keeps ids from being reused after a row is removed.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS entries (
		id     INTEGER PRIMARY KEY AUTOINCREMENT,
		date   TEXT NOT NULL,
		fields TEXT NOT NULL DEFAULT '{}',
		tips   TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS entries_date_idx ON entries (date)`,
	`CREATE TABLE IF NOT EXISTS goals (
		position INTEGER NOT NULL,
		key      TEXT PRIMARY KEY,
		label    TEXT NOT NULL,
		unit     TEXT NOT NULL DEFAULT '',
		target   REAL NOT NULL
	)`,
}

type SQLiteStorage struct {
	db     *sql.DB
	mu     sync.Mutex // single writer
	logger internal.Logger
}

// openSQLite opens (or creates) the database at path with WAL journaling.
func openSQLite(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func NewSQLiteStorage(path string, logger internal.Logger) (*SQLiteStorage, error) {
	db, err := openSQLite(path)
	if err != nil {
		logger.Errorf("failed to open sqlite %s: %v", path, err)
		return nil, err
	}
	for _, stmt := range sqliteSchema {
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			logger.Errorf("failed to apply sqlite schema: %v", err)
			return nil, err
		}
	}
	return &SQLiteStorage{db: db, logger: logger}, nil
}

// --- EntryRepository ---
func (s *SQLiteStorage) CreateEntry(ctx context.Context, entry internal.Entry) (internal.Entry, error) {
	fields, err := encodeFields(entry.Fields)
	if err != nil {
		return internal.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `INSERT INTO entries (date, fields, tips) VALUES (?, ?, ?)`, entry.Date, fields, entry.Tips)
	if err != nil {
		s.logger.Errorf("failed to insert entry: %v", err)
		return internal.Entry{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return internal.Entry{}, err
	}
	stored := entry.Clone()
	stored.ID = id
	return stored, nil
}

func (s *SQLiteStorage) ListEntries(ctx context.Context) ([]internal.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, date, fields, tips FROM entries ORDER BY id`)
	if err != nil {
		s.logger.Errorf("failed to query entries: %v", err)
		return nil, err
	}
	defer rows.Close()

	entries := []internal.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			s.logger.Errorf("failed to scan entry: %v", err)
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStorage) PatchEntry(ctx context.Context, id int64, patch internal.EntryPatch) (internal.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return internal.Entry{}, err
	}
	defer tx.Rollback()

	e, err := scanEntry(tx.QueryRowContext(ctx, `SELECT id, date, fields, tips FROM entries WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return internal.Entry{}, internal.ErrNotFound
	}
	if err != nil {
		s.logger.Errorf("failed to load entry %d: %v", id, err)
		return internal.Entry{}, err
	}

	changed, err := patch.Apply(&e)
	if err != nil {
		return internal.Entry{}, err
	}
	if !changed {
		return e, nil
	}
	fields, err := encodeFields(e.Fields)
	if err != nil {
		return internal.Entry{}, err
	}
	if _, err := tx.ExecContext(ctx, `UPDATE entries SET date = ?, fields = ? WHERE id = ?`, e.Date, fields, id); err != nil {
		s.logger.Errorf("failed to update entry %d: %v", id, err)
		return internal.Entry{}, err
	}
	if err := tx.Commit(); err != nil {
		return internal.Entry{}, err
	}
	return e, nil
}

// --- GoalRepository ---
func (s *SQLiteStorage) SetGoals(ctx context.Context, goals []internal.Goal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM goals`); err != nil {
		return err
	}
	for i, g := range goals {
		if _, err := tx.ExecContext(ctx, `INSERT INTO goals (position, key, label, unit, target) VALUES (?, ?, ?, ?, ?)`,
			i, g.Key, g.Label, g.Unit, g.Target); err != nil {
			s.logger.Errorf("failed to insert goal %s: %v", g.Key, err)
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStorage) GetGoals(ctx context.Context) ([]internal.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, label, unit, target FROM goals ORDER BY position`)
	if err != nil {
		s.logger.Errorf("failed to query goals: %v", err)
		return nil, err
	}
	defer rows.Close()

	goals := []internal.Goal{}
	for rows.Next() {
		var g internal.Goal
		if err := rows.Scan(&g.Key, &g.Label, &g.Unit, &g.Target); err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (s *SQLiteStorage) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (internal.Entry, error) {
	var (
		e      internal.Entry
		fields string
	)
	if err := row.Scan(&e.ID, &e.Date, &fields, &e.Tips); err != nil {
		return internal.Entry{}, err
	}
	e.Fields = internal.Fields{}
	if err := json.Unmarshal([]byte(fields), &e.Fields); err != nil {
		return internal.Entry{}, fmt.Errorf("entry %d fields: %w", e.ID, err)
	}
	return e, nil
}

func encodeFields(f internal.Fields) (string, error) {
	if f == nil {
		return "{}", nil
	}
	b, err := json.Marshal(f)
	if err != nil {
		return "", fmt.Errorf("encode fields: %w", err)
	}
	return string(b), nil
}

// --- Compile-time assertions ---
var _ EntryRepository = (*SQLiteStorage)(nil)
var _ GoalRepository = (*SQLiteStorage)(nil)
var _ Store = (*SQLiteStorage)(nil)

package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kanaan7/NutritionTracker/internal"
)

// BIGSERIAL ids come from a sequence and are never reused.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS entries (
	id     BIGSERIAL PRIMARY KEY,
	date   TEXT NOT NULL,
	fields JSONB NOT NULL DEFAULT '{}'::jsonb,
	tips   TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS entries_date_idx ON entries (date);
CREATE TABLE IF NOT EXISTS goals (
	position INTEGER NOT NULL,
	key      TEXT PRIMARY KEY,
	label    TEXT NOT NULL,
	unit     TEXT NOT NULL DEFAULT '',
	target   DOUBLE PRECISION NOT NULL
);`

type PostgresStorage struct {
	pool   *pgxpool.Pool
	logger internal.Logger
}

func NewPostgresStorage(dsn string, logger internal.Logger) (*PostgresStorage, error) {
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		logger.Errorf("failed to connect to postgres: %v", err)
		return nil, err
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		logger.Errorf("failed to apply postgres schema: %v", err)
		return nil, err
	}
	return &PostgresStorage{pool: pool, logger: logger}, nil
}

// --- EntryRepository ---
func (p *PostgresStorage) CreateEntry(ctx context.Context, entry internal.Entry) (internal.Entry, error) {
	fields, err := encodeFields(entry.Fields)
	if err != nil {
		return internal.Entry{}, err
	}
	stored := entry.Clone()
	err = p.pool.QueryRow(ctx, `INSERT INTO entries (date, fields, tips) VALUES ($1, $2::jsonb, $3) RETURNING id`,
		entry.Date, fields, entry.Tips).Scan(&stored.ID)
	if err != nil {
		p.logger.Errorf("failed to insert entry: %v", err)
		return internal.Entry{}, err
	}
	return stored, nil
}

func (p *PostgresStorage) ListEntries(ctx context.Context) ([]internal.Entry, error) {
	rows, err := p.pool.Query(ctx, `SELECT id, date, fields::text, tips FROM entries ORDER BY id`)
	if err != nil {
		p.logger.Errorf("failed to query entries: %v", err)
		return nil, err
	}
	defer rows.Close()

	entries := []internal.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			p.logger.Errorf("failed to scan entry: %v", err)
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (p *PostgresStorage) PatchEntry(ctx context.Context, id int64, patch internal.EntryPatch) (internal.Entry, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return internal.Entry{}, err
	}
	defer tx.Rollback(ctx)

	e, err := scanEntry(tx.QueryRow(ctx, `SELECT id, date, fields::text, tips FROM entries WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return internal.Entry{}, internal.ErrNotFound
	}
	if err != nil {
		p.logger.Errorf("failed to load entry %d: %v", id, err)
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
	if _, err := tx.Exec(ctx, `UPDATE entries SET date = $1, fields = $2::jsonb WHERE id = $3`, e.Date, fields, id); err != nil {
		p.logger.Errorf("failed to update entry %d: %v", id, err)
		return internal.Entry{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return internal.Entry{}, err
	}
	return e, nil
}

// --- GoalRepository ---
func (p *PostgresStorage) SetGoals(ctx context.Context, goals []internal.Goal) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM goals`); err != nil {
		return err
	}
	batch := &pgx.Batch{}
	for i, g := range goals {
		batch.Queue(`INSERT INTO goals (position, key, label, unit, target) VALUES ($1, $2, $3, $4, $5)`,
			i, g.Key, g.Label, g.Unit, g.Target)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		p.logger.Errorf("failed to insert goals: %v", err)
		return err
	}
	return tx.Commit(ctx)
}

func (p *PostgresStorage) GetGoals(ctx context.Context) ([]internal.Goal, error) {
	rows, err := p.pool.Query(ctx, `SELECT key, label, unit, target FROM goals ORDER BY position`)
	if err != nil {
		p.logger.Errorf("failed to query goals: %v", err)
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

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

// --- Compile-time assertions ---
var _ EntryRepository = (*PostgresStorage)(nil)
var _ GoalRepository = (*PostgresStorage)(nil)
var _ Store = (*PostgresStorage)(nil)

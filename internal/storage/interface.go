package storage

import (
	"context"

	"github.com/Kanaan7/NutritionTracker/internal"
)

// EntryRepository is the append-only meal history. Ids come from a
// persisted counter and are never handed out twice.
type EntryRepository interface {
	// CreateEntry assigns the next id, persists the entry and returns the
	// stored snapshot. The write is durable when it returns nil.
	CreateEntry(ctx context.Context, entry internal.Entry) (internal.Entry, error)
	// ListEntries returns every entry in insertion order, read from the
	// durable state.
	ListEntries(ctx context.Context) ([]internal.Entry, error)
	// PatchEntry applies patch to entry id under the store's own
	// serialization. It returns internal.ErrNotFound when id is unknown and
	// the error of EntryPatch.Apply when the patch is rejected; in both cases
	// nothing is written.
	PatchEntry(ctx context.Context, id int64, patch internal.EntryPatch) (internal.Entry, error)
}

// GoalRepository holds the user's ordered goal list. An empty result means
// no goals were ever saved.
type GoalRepository interface {
	SetGoals(ctx context.Context, goals []internal.Goal) error
	GetGoals(ctx context.Context) ([]internal.Goal, error)
}

type Store interface {
	EntryRepository
	GoalRepository
	Close() error
}

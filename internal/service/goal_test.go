package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kanaan7/NutritionTracker/internal"
	"github.com/Kanaan7/NutritionTracker/internal/storage"
)

func newGoalService(t *testing.T) *GoalService {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFileStorage(filepath.Join(dir, "history.json"), filepath.Join(dir, "goals.json"), internal.NopLogger())
	require.NoError(t, err)
	return NewGoalService(store, internal.NopLogger())
}

func TestGoals_DefaultsUntilSaved(t *testing.T) {
	s := newGoalService(t)
	ctx := context.Background()

	goals, err := s.Goals(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultGoals, goals)

	goals[0].Target = 1
	again, err := s.Goals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12500.0, again[0].Target, "defaults must not be shared")
}

func TestGoals_Set(t *testing.T) {
	s := newGoalService(t)
	ctx := context.Background()

	saved, err := s.Set(ctx, &GoalRequest{Goals: []internal.Goal{
		{Label: " Vitamin C ", Unit: "mg", Target: 630},
		{Key: "calories", Label: "Calories", Unit: "kcal", Target: 14000},
	}})
	require.NoError(t, err)
	assert.Equal(t, "vitamin_c", saved[0].Key)
	assert.Equal(t, "Vitamin C", saved[0].Label)

	goals, err := s.Goals(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, goals)
}

func TestGoals_SetInvalid(t *testing.T) {
	s := newGoalService(t)
	ctx := context.Background()

	cases := map[string][]internal.Goal{
		"empty list":     {},
		"missing label":  {{Key: "x", Target: 1}},
		"negative":       {{Label: "Fat", Target: -5}},
		"duplicate keys": {{Label: "Fat", Target: 1}, {Key: "fat", Label: "Fat again", Target: 2}},
		"reserved key":   {{Label: "Date", Target: 1}},
		"empty slug":     {{Label: "???", Target: 1}},
	}
	for name, goals := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Set(ctx, &GoalRequest{Goals: goals})
			var ve *internal.ValidationError
			assert.True(t, errors.As(err, &ve), "got %v", err)
		})
	}

	goals, err := s.Goals(ctx)
	require.NoError(t, err)
	assert.Equal(t, DefaultGoals, goals)
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Kanaan7/NutritionTracker/internal"
	"github.com/Kanaan7/NutritionTracker/internal/storage"
)

// DefaultGoals are weekly targets used until the user saves their own.
var DefaultGoals = []internal.Goal{
	{Key: "calories", Label: "Calories", Unit: "kcal", Target: 12500},
	{Key: "protein", Label: "Protein (g)", Unit: "g", Target: 700},
	{Key: "carbs", Label: "Carbs (g)", Unit: "g", Target: 1750},
	{Key: "fat", Label: "Fat (g)", Unit: "g", Target: 500},
}

type GoalRequest struct {
	Goals []internal.Goal `json:"goals" validate:"required,min=1,dive"`
}

type GoalService struct {
	repo   storage.GoalRepository
	logger internal.Logger
}

func NewGoalService(repo storage.GoalRepository, logger internal.Logger) *GoalService {
	return &GoalService{repo: repo, logger: logger}
}

// Goals returns the saved goals, or DefaultGoals when none were saved.
func (s *GoalService) Goals(ctx context.Context) ([]internal.Goal, error) {
	goals, err := s.repo.GetGoals(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: get goals: %w", err)
	}
	if len(goals) == 0 {
		return append([]internal.Goal(nil), DefaultGoals...), nil
	}
	return goals, nil
}

// Set replaces the goal list. A goal without a key gets one derived from
// its label.
func (s *GoalService) Set(ctx context.Context, req *GoalRequest) ([]internal.Goal, error) {
	if err := validate.Struct(req); err != nil {
		return nil, validationError(err)
	}

	goals := make([]internal.Goal, 0, len(req.Goals))
	seen := map[string]bool{}
	for i, g := range req.Goals {
		g.Label = strings.TrimSpace(g.Label)
		if g.Key == "" {
			g.Key = Slugify(g.Label)
		} else {
			g.Key = strings.TrimSpace(g.Key)
		}
		field := fmt.Sprintf("goals[%d]", i)
		switch {
		case g.Key == "":
			return nil, internal.NewValidationError(field, "label %q yields an empty key", g.Label)
		case isReserved(g.Key):
			return nil, internal.NewValidationError(field, "key %q is reserved", g.Key)
		case seen[g.Key]:
			return nil, internal.NewValidationError(field, "duplicate key %q", g.Key)
		}
		seen[g.Key] = true
		goals = append(goals, g)
	}

	if err := s.repo.SetGoals(ctx, goals); err != nil {
		return nil, fmt.Errorf("storage: set goals: %w", err)
	}
	s.logger.Infof("goals updated: %d tracked nutrients", len(goals))
	return goals, nil
}

package api

import (
	"github.com/Kanaan7/NutritionTracker/internal"
	"github.com/Kanaan7/NutritionTracker/internal/service"
)

type App interface {
	Logger() internal.Logger
	Entries() *service.EntryService
	Goals() *service.GoalService
}

type app struct {
	logger  internal.Logger
	entries *service.EntryService
	goals   *service.GoalService
}

func NewApp(logger internal.Logger, entries *service.EntryService, goals *service.GoalService) App {
	return &app{logger: logger, entries: entries, goals: goals}
}

func (a *app) Logger() internal.Logger        { return a.logger }
func (a *app) Entries() *service.EntryService { return a.entries }
func (a *app) Goals() *service.GoalService    { return a.goals }

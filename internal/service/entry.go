package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Kanaan7/NutritionTracker/internal"
	"github.com/Kanaan7/NutritionTracker/internal/extraction"
	"github.com/Kanaan7/NutritionTracker/internal/metrics"
	"github.com/Kanaan7/NutritionTracker/internal/storage"
)

const (
	DefaultSummaryDays = 7
	maxSummaryDays     = 366
)

type LogRequest struct {
	Text      string   `json:"text" validate:"required"`
	Nutrients []string `json:"nutrients,omitempty"`
	Datetime  string   `json:"datetime,omitempty"`
}

// PatchRequest is a partial entry as sent by a client: "date" and nutrient
// keys mapped to raw JSON values.
type PatchRequest map[string]json.RawMessage

type SummaryRequest struct {
	Days int
	End  string
	Keys []string
}

type Summary struct {
	From   string                 `json:"from"`
	To     string                 `json:"to"`
	Days   int                    `json:"days"`
	Daily  []internal.DailyTotal  `json:"daily"`
	Totals []internal.PeriodTotal `json:"totals"`
	Weeks  []internal.WeekTotal   `json:"weeks"`
}

type EntryService struct {
	repo      storage.EntryRepository
	extractor extraction.Extractor
	goals     *GoalService
	resolver  *DayResolver
	timeout   time.Duration
	logger    internal.Logger
}

func NewEntryService(repo storage.EntryRepository, extractor extraction.Extractor, goals *GoalService, resolver *DayResolver, timeout time.Duration, logger internal.Logger) *EntryService {
	return &EntryService{
		repo:      repo,
		extractor: extractor,
		goals:     goals,
		resolver:  resolver,
		timeout:   timeout,
		logger:    logger,
	}
}

// Log runs the ingestion flow: extract, stamp the date, persist. Nothing
// is stored when extraction fails.
func (s *EntryService) Log(ctx context.Context, req *LogRequest) (internal.Entry, error) {
	req.Text = strings.TrimSpace(req.Text)
	if err := validate.Struct(req); err != nil {
		return internal.Entry{}, validationError(err)
	}
	keys := NormalizeKeys(req.Nutrients)
	date, err := s.resolver.ResolveString(req.Datetime)
	if err != nil {
		return internal.Entry{}, err
	}

	res, err := s.extract(ctx, req.Text, keys)
	if err != nil {
		return internal.Entry{}, err
	}
	if len(res.Dropped) > 0 {
		s.logger.Warnf("extraction: non-numeric values dropped for %s", strings.Join(res.Dropped, ", "))
	}

	// the model's own date field is ignored; the cutoff rule decides
	entry := internal.Entry{Date: date, Fields: res.Fields, Tips: res.Tips}
	stored, err := s.repo.CreateEntry(ctx, entry)
	if err != nil {
		return internal.Entry{}, fmt.Errorf("storage: create entry: %w", err)
	}
	metrics.EntriesCreatedTotal.Inc()
	s.logger.Infof("entry %d logged for %s (%d nutrients)", stored.ID, stored.Date, len(stored.Fields))
	return stored, nil
}

func (s *EntryService) extract(ctx context.Context, text string, keys []string) (*extraction.Result, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	res, err := s.extractor.Extract(ctx, text, keys)
	metrics.ExtractionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		kind := internal.ToAppError(err).Kind
		metrics.ExtractionFailuresTotal.WithLabelValues(kind).Inc()
		s.logger.Errorf("extraction failed (%s): %v", kind, err)
		return nil, err
	}
	if res.Fields == nil {
		res.Fields = internal.Fields{}
	}
	return res, nil
}

// History returns every entry in insertion order.
func (s *EntryService) History(ctx context.Context) ([]internal.Entry, error) {
	entries, err := s.repo.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage: list entries: %w", err)
	}
	if entries == nil {
		entries = []internal.Entry{}
	}
	return entries, nil
}

// Patch overwrites fields of entry id. Accepted keys are "date", the
// default nutrient names and any key the entry already carries; other keys
// are ignored. Nutrient values must be numbers. The store checks the keys
// against the entry it holds, so the entry is read once.
func (s *EntryService) Patch(ctx context.Context, id int64, req PatchRequest) (internal.Entry, error) {
	keys := make([]string, 0, len(req))
	for k := range req {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	patch := internal.EntryPatch{Fields: internal.Fields{}, Allowed: patchable}
	for _, k := range keys {
		raw := req[k]
		switch k {
		case internal.KeyDate:
			var date string
			if err := json.Unmarshal(raw, &date); err != nil {
				return internal.Entry{}, internal.NewValidationError("date", "must be a string")
			}
			if err := ValidDate(date); err != nil {
				return internal.Entry{}, internal.NewValidationError("date", "%v", err)
			}
			patch.Date = &date
			continue
		case internal.KeyID, internal.KeyTips:
			s.logger.Debugf("patch entry %d: ignoring field %q", id, k)
			continue
		}
		n, ok := internal.ParseNumber(raw)
		if !ok {
			patch.Invalid = append(patch.Invalid, k)
			continue
		}
		patch.Fields[k] = n
	}

	updated, err := s.repo.PatchEntry(ctx, id, patch)
	if err != nil {
		return internal.Entry{}, fmt.Errorf("storage: patch entry %d: %w", id, err)
	}
	s.logger.Infof("entry %d patched", id)
	return updated, nil
}

// patchable reports whether a patch may write key on e.
func patchable(e internal.Entry, key string) bool {
	if _, ok := e.Fields[key]; ok {
		return true
	}
	for _, k := range internal.DefaultNutrients {
		if k == key {
			return true
		}
	}
	return false
}

// DailyTotals aggregates the whole history by date.
func (s *EntryService) DailyTotals(ctx context.Context) ([]internal.DailyTotal, error) {
	entries, err := s.History(ctx)
	if err != nil {
		return nil, err
	}
	return AggregateDaily(entries), nil
}

// Summary totals the Days days ending at End against the user's goals.
// Days defaults to a week and End to today's bucket. Without Keys the
// goal keys are summed.
func (s *EntryService) Summary(ctx context.Context, req SummaryRequest) (*Summary, error) {
	days := req.Days
	if days == 0 {
		days = DefaultSummaryDays
	}
	if days < 0 || days > maxSummaryDays {
		return nil, internal.NewValidationError("days", "must be between 1 and %d", maxSummaryDays)
	}
	end := req.End
	if end == "" {
		end = s.resolver.Today()
	}
	endDay, err := time.Parse(internal.DateLayout, end)
	if err != nil {
		return nil, internal.NewValidationError("end", "%q is not a YYYY-MM-DD date", end)
	}

	daily, err := s.DailyTotals(ctx)
	if err != nil {
		return nil, err
	}
	window, err := LastNDays(daily, end, days)
	if err != nil {
		return nil, err
	}

	goals, err := s.goals.Goals(ctx)
	if err != nil {
		return nil, err
	}
	keys := TrackedKeys(goals)
	if len(req.Keys) > 0 {
		keys = NormalizeKeys(req.Keys)
	}

	return &Summary{
		From:   endDay.AddDate(0, 0, -(days - 1)).Format(internal.DateLayout),
		To:     end,
		Days:   days,
		Daily:  window,
		Totals: AggregatePeriod(window, keys, internal.GoalTargets(goals)),
		Weeks:  GroupByWeek(window),
	}, nil
}

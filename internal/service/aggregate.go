package service

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Kanaan7/NutritionTracker/internal"
)

// Sums go through decimal so that 0.1 + 0.2 reads back as 0.3.
type sums map[string]decimal.Decimal

func (s sums) add(fields internal.Fields) {
	for k, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		s[k] = s[k].Add(decimal.NewFromFloat(v))
	}
}

func (s sums) fields() internal.Fields {
	out := make(internal.Fields, len(s))
	for k, d := range s {
		out[k] = d.InexactFloat64()
	}
	return out
}

// AggregateDaily groups entries by date and sums, per date, every key any
// of that date's entries carries. An entry missing a key adds nothing to
// it. The result is ordered by ascending date.
func AggregateDaily(entries []internal.Entry) []internal.DailyTotal {
	byDate := map[string]sums{}
	for _, e := range entries {
		day, ok := byDate[e.Date]
		if !ok {
			day = sums{}
			byDate[e.Date] = day
		}
		day.add(e.Fields)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	out := make([]internal.DailyTotal, 0, len(dates))
	for _, d := range dates {
		out = append(out, internal.DailyTotal{Date: d, Totals: byDate[d].fields()})
	}
	return out
}

// AggregatePeriod sums each key over all of daily and scores it against
// goals. Percent is 100*total/target capped at 100. A key whose target is
// missing, zero or negative has HasGoal false and no Percent. With no keys
// the union of keys in daily is used, in lexical order.
func AggregatePeriod(daily []internal.DailyTotal, keys []string, goals map[string]float64) []internal.PeriodTotal {
	if len(keys) == 0 {
		keys = unionKeys(daily)
	}

	out := make([]internal.PeriodTotal, 0, len(keys))
	for _, key := range keys {
		total := decimal.Zero
		for _, day := range daily {
			if v, ok := day.Totals[key]; ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
				total = total.Add(decimal.NewFromFloat(v))
			}
		}

		pt := internal.PeriodTotal{Key: key, Total: total.InexactFloat64()}
		if target, ok := goals[key]; ok && target > 0 {
			pct := math.Min(100, 100*pt.Total/target)
			pt.Target = target
			pt.Percent = &pct
			pt.HasGoal = true
		}
		out = append(out, pt)
	}
	return out
}

func unionKeys(daily []internal.DailyTotal) []string {
	seen := map[string]bool{}
	var keys []string
	for _, day := range daily {
		for k := range day.Totals {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	sort.Strings(keys)
	return keys
}

// SelectRange keeps the days with from <= date <= to. An empty bound is
// open.
func SelectRange(daily []internal.DailyTotal, from, to string) []internal.DailyTotal {
	out := make([]internal.DailyTotal, 0, len(daily))
	for _, day := range daily {
		if from != "" && day.Date < from {
			continue
		}
		if to != "" && day.Date > to {
			continue
		}
		out = append(out, day)
	}
	return out
}

// LastNDays keeps the n days ending at end inclusive.
func LastNDays(daily []internal.DailyTotal, end string, n int) ([]internal.DailyTotal, error) {
	if n <= 0 {
		return []internal.DailyTotal{}, nil
	}
	endDay, err := time.Parse(internal.DateLayout, end)
	if err != nil {
		return nil, internal.NewValidationError("end", "%q is not a YYYY-MM-DD date", end)
	}
	from := endDay.AddDate(0, 0, -(n - 1)).Format(internal.DateLayout)
	return SelectRange(daily, from, end), nil
}

// GroupByWeek sums daily totals into ISO weeks, which start on Monday.
// Days whose date does not parse are skipped.
func GroupByWeek(daily []internal.DailyTotal) []internal.WeekTotal {
	type week struct {
		days int
		sums sums
	}
	weeks := map[string]*week{}
	for _, day := range daily {
		t, err := time.Parse(internal.DateLayout, day.Date)
		if err != nil {
			continue
		}
		offset := (int(t.Weekday()) + 6) % 7
		start := t.AddDate(0, 0, -offset).Format(internal.DateLayout)
		w, ok := weeks[start]
		if !ok {
			w = &week{sums: sums{}}
			weeks[start] = w
		}
		w.days++
		w.sums.add(day.Totals)
	}

	starts := make([]string, 0, len(weeks))
	for s := range weeks {
		starts = append(starts, s)
	}
	sort.Strings(starts)

	out := make([]internal.WeekTotal, 0, len(starts))
	for _, s := range starts {
		out = append(out, internal.WeekTotal{WeekStart: s, Days: weeks[s].days, Totals: weeks[s].sums.fields()})
	}
	return out
}

package service

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kanaan7/NutritionTracker/internal"
)

func TestAggregateDaily(t *testing.T) {
	entries := []internal.Entry{
		{ID: 1, Date: "2024-01-01", Fields: internal.Fields{"calories": 500}},
		{ID: 2, Date: "2024-01-01", Fields: internal.Fields{"protein": 20}},
		{ID: 3, Date: "2024-01-02", Fields: internal.Fields{"calories": 300}},
	}

	got := AggregateDaily(entries)
	assert.Equal(t, []internal.DailyTotal{
		{Date: "2024-01-01", Totals: internal.Fields{"calories": 500, "protein": 20}},
		{Date: "2024-01-02", Totals: internal.Fields{"calories": 300}},
	}, got)

	b, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"date":"2024-01-01","calories":500,"protein":20},{"date":"2024-01-02","calories":300}]`, string(b))
}

func TestAggregateDaily_SortsAndSums(t *testing.T) {
	entries := []internal.Entry{
		{Date: "2024-01-03", Fields: internal.Fields{"fat": 0.1}},
		{Date: "2023-12-31", Fields: internal.Fields{"fat": 1}},
		{Date: "2024-01-03", Fields: internal.Fields{"fat": 0.2, "fiber": 4}},
		{Date: "2024-01-03", Fields: nil},
	}

	got := AggregateDaily(entries)
	require.Len(t, got, 2)
	assert.Equal(t, "2023-12-31", got[0].Date)
	assert.Equal(t, "2024-01-03", got[1].Date)
	assert.Equal(t, 0.3, got[1].Totals["fat"])
	assert.Equal(t, 4.0, got[1].Totals["fiber"])
}

func TestAggregateDaily_Empty(t *testing.T) {
	got := AggregateDaily(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAggregateDaily_SkipsNonFinite(t *testing.T) {
	got := AggregateDaily([]internal.Entry{
		{Date: "2024-01-01", Fields: internal.Fields{"calories": math.NaN()}},
		{Date: "2024-01-01", Fields: internal.Fields{"calories": 10}},
	})
	assert.Equal(t, 10.0, got[0].Totals["calories"])
}

func TestAggregatePeriod(t *testing.T) {
	daily := []internal.DailyTotal{
		{Date: "2024-01-01", Totals: internal.Fields{"calories": 2000, "protein": 100}},
		{Date: "2024-01-02", Totals: internal.Fields{"calories": 1500}},
	}
	goals := map[string]float64{"calories": 14000, "protein": 50, "fat": 0}

	got := AggregatePeriod(daily, []string{"calories", "protein", "fat", "fiber"}, goals)
	require.Len(t, got, 4)

	assert.Equal(t, "calories", got[0].Key)
	assert.Equal(t, 3500.0, got[0].Total)
	require.NotNil(t, got[0].Percent)
	assert.InDelta(t, 25.0, *got[0].Percent, 1e-9)
	assert.True(t, got[0].HasGoal)

	assert.Equal(t, 100.0, *got[1].Percent, "capped at 100")

	assert.Equal(t, "fat", got[2].Key)
	assert.Equal(t, 0.0, got[2].Total)
	assert.False(t, got[2].HasGoal, "a zero target means no goal")
	assert.Nil(t, got[2].Percent)

	assert.False(t, got[3].HasGoal)
	assert.Nil(t, got[3].Percent)

	b, err := json.Marshal(got[2])
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"fat","total":0,"has_goal":false}`, string(b))
}

func TestAggregatePeriod_NoKeysUsesUnion(t *testing.T) {
	daily := []internal.DailyTotal{
		{Date: "2024-01-01", Totals: internal.Fields{"protein": 1}},
		{Date: "2024-01-02", Totals: internal.Fields{"calories": 2}},
	}
	got := AggregatePeriod(daily, nil, nil)
	require.Len(t, got, 2)
	assert.Equal(t, "calories", got[0].Key)
	assert.Equal(t, "protein", got[1].Key)
}

func TestLastNDays(t *testing.T) {
	daily := []internal.DailyTotal{
		{Date: "2024-01-01"}, {Date: "2024-01-02"}, {Date: "2024-01-05"}, {Date: "2024-01-08"}, {Date: "2024-01-09"},
	}
	got, err := LastNDays(daily, "2024-01-08", 7)
	require.NoError(t, err)
	dates := []string{}
	for _, d := range got {
		dates = append(dates, d.Date)
	}
	assert.Equal(t, []string{"2024-01-02", "2024-01-05", "2024-01-08"}, dates)

	got, err = LastNDays(daily, "2024-01-08", 0)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = LastNDays(daily, "soon", 7)
	assert.Error(t, err)
}

func TestSelectRange_OpenBounds(t *testing.T) {
	daily := []internal.DailyTotal{{Date: "2024-01-01"}, {Date: "2024-01-02"}}
	assert.Len(t, SelectRange(daily, "", ""), 2)
	assert.Len(t, SelectRange(daily, "2024-01-02", ""), 1)
	assert.Len(t, SelectRange(daily, "", "2024-01-01"), 1)
}

func TestGroupByWeek(t *testing.T) {
	daily := []internal.DailyTotal{
		{Date: "2024-01-07", Totals: internal.Fields{"calories": 1}}, // Sunday
		{Date: "2024-01-08", Totals: internal.Fields{"calories": 2}}, // Monday
		{Date: "2024-01-14", Totals: internal.Fields{"calories": 3, "fat": 1}},
		{Date: "bad", Totals: internal.Fields{"calories": 100}},
	}
	got := GroupByWeek(daily)
	assert.Equal(t, []internal.WeekTotal{
		{WeekStart: "2024-01-01", Days: 1, Totals: internal.Fields{"calories": 1}},
		{WeekStart: "2024-01-08", Days: 2, Totals: internal.Fields{"calories": 5, "fat": 1}},
	}, got)
}

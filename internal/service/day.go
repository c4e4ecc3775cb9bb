package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/Kanaan7/NutritionTracker/internal"
)

// DefaultCutoffHour ends a logging day at 4am: a meal at 01:30 still
// counts toward the previous date.
const DefaultCutoffHour = 4

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ResolveDate buckets t by its own wall clock with the default cutoff.
func ResolveDate(t time.Time) string {
	return bucket(t, DefaultCutoffHour)
}

func bucket(t time.Time, cutoff int) string {
	y, m, d := t.Date()
	if t.Hour() < cutoff {
		d--
	}
	// normalize through a zone without DST so only the date moves
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC).Format(internal.DateLayout)
}

// DayResolver converts timestamps into date buckets in one location.
type DayResolver struct {
	CutoffHour int
	Location   *time.Location
	Clock      func() time.Time
}

func NewDayResolver(cutoffHour int, loc *time.Location) *DayResolver {
	if loc == nil {
		loc = time.Local
	}
	return &DayResolver{CutoffHour: cutoffHour, Location: loc, Clock: time.Now}
}

// Resolve moves t into the resolver's location, then buckets it.
func (r *DayResolver) Resolve(t time.Time) string {
	if r.Location != nil {
		t = t.In(r.Location)
	}
	return bucket(t, r.CutoffHour)
}

// Today is the bucket of the current instant.
func (r *DayResolver) Today() string {
	return r.Resolve(r.now())
}

func (r *DayResolver) now() time.Time {
	if r.Clock == nil {
		return time.Now()
	}
	return r.Clock()
}

// ResolveString buckets a caller-supplied datetime. An empty string means
// now; a bare YYYY-MM-DD is taken as the bucket itself; anything else must
// be an ISO-8601 timestamp. Timestamps without an offset are read in the
// resolver's location.
func (r *DayResolver) ResolveString(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return r.Today(), nil
	}
	if d, err := time.Parse(internal.DateLayout, s); err == nil {
		return d.Format(internal.DateLayout), nil
	}
	t, err := r.ParseTimestamp(s)
	if err != nil {
		return "", err
	}
	return r.Resolve(t), nil
}

func (r *DayResolver) ParseTimestamp(s string) (time.Time, error) {
	loc := r.Location
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, internal.NewValidationError("datetime", "%q is not an ISO-8601 timestamp", s)
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date.
func ValidDate(s string) error {
	if _, err := time.Parse(internal.DateLayout, s); err != nil {
		return fmt.Errorf("%q is not a YYYY-MM-DD date", s)
	}
	return nil
}

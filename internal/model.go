package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Reserved top-level keys of a flattened Entry document.
const (
	KeyID   = "id"
	KeyDate = "date"
	KeyTips = "tips"
)

// DefaultNutrients is the key set tracked when the caller names none.
var DefaultNutrients = []string{"calories", "protein", "carbs", "fat"}

// DateLayout is the calendar-date format used for entry buckets.
const DateLayout = "2006-01-02"

// Fields maps a nutrient key to its numeric amount. Two entries may carry
// different key sets.
type Fields map[string]float64

// Clone returns an independent copy of f.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Keys returns the keys of f in lexical order.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Entry is one logged meal. It is serialized flat, nutrient keys side by
// side with id, date and tips:
//
//	{"id":3,"date":"2024-03-09","calories":540,"protein":31,"tips":"..."}
type Entry struct {
	ID     int64
	Date   string
	Fields Fields
	Tips   string
}

// Clone returns a snapshot of e that shares no memory with it.
func (e Entry) Clone() Entry {
	e.Fields = e.Fields.Clone()
	return e
}

func (e Entry) MarshalJSON() ([]byte, error) {
	return marshalFlat(map[string]any{KeyID: e.ID, KeyDate: e.Date, KeyTips: e.Tips}, e.Fields)
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := Entry{Fields: Fields{}}
	for k, v := range raw {
		switch k {
		case KeyID:
			if err := json.Unmarshal(v, &out.ID); err != nil {
				return fmt.Errorf("entry id: %w", err)
			}
		case KeyDate:
			if err := json.Unmarshal(v, &out.Date); err != nil {
				return fmt.Errorf("entry date: %w", err)
			}
		case KeyTips:
			// tips may be null or, from older documents, a non-string value
			var s string
			if json.Unmarshal(v, &s) == nil {
				out.Tips = s
			}
		default:
			if n, ok := ParseNumber(v); ok {
				out.Fields[k] = n
			}
		}
	}
	*e = out
	return nil
}

// EntryPatch overwrites the supplied parts of an entry. A nil Date leaves
// the date untouched. Allowed, when set, decides per entry which keys the
// patch may write; other keys are skipped. Invalid names keys whose values
// were not numbers: the patch fails if any of them is allowed.
type EntryPatch struct {
	Date    *string
	Fields  Fields
	Invalid []string
	Allowed func(e Entry, key string) bool
}

func (p EntryPatch) allows(e Entry, key string) bool {
	return p.Allowed == nil || p.Allowed(e, key)
}

// Apply writes the patch onto e in place and reports whether e changed.
// On error e is left untouched.
func (p EntryPatch) Apply(e *Entry) (bool, error) {
	for _, k := range p.Invalid {
		if p.allows(*e, k) {
			return false, NewValidationError(k, "must be a number")
		}
	}

	changed := false
	if p.Date != nil {
		e.Date = *p.Date
		changed = true
	}
	for k, v := range p.Fields {
		if !p.allows(*e, k) {
			continue
		}
		if e.Fields == nil {
			e.Fields = Fields{}
		}
		e.Fields[k] = v
		changed = true
	}
	return changed, nil
}

// DailyTotal is the sum of every nutrient logged on one date.
type DailyTotal struct {
	Date   string
	Totals Fields
}

func (d DailyTotal) MarshalJSON() ([]byte, error) {
	return marshalFlat(map[string]any{KeyDate: d.Date}, d.Totals)
}

// PeriodTotal is the sum of one key over a run of days, measured against
// the user's goal for it.
type PeriodTotal struct {
	Key     string   `json:"key"`
	Total   float64  `json:"total"`
	Target  float64  `json:"target,omitempty"`
	Percent *float64 `json:"percent,omitempty"`
	HasGoal bool     `json:"has_goal"`
}

// WeekTotal groups daily totals by ISO week.
type WeekTotal struct {
	WeekStart string `json:"week_start"`
	Days      int    `json:"days"`
	Totals    Fields `json:"totals"`
}

// Goal is a user-configured target for one nutrient key.
type Goal struct {
	Key    string  `json:"key"`
	Label  string  `json:"label" validate:"required"`
	Unit   string  `json:"unit,omitempty"`
	Target float64 `json:"goal" validate:"gte=0"`
}

// GoalTargets flattens goals into the key -> target mapping consumed by
// period aggregation.
func GoalTargets(goals []Goal) map[string]float64 {
	out := make(map[string]float64, len(goals))
	for _, g := range goals {
		out[g.Key] = g.Target
	}
	return out
}

// ParseNumber reads a JSON number, or a string holding a finite one, as
// float64.
func ParseNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, false
	}
	var n float64
	if raw[0] != '"' {
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, false
		}
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	// ParseFloat accepts "NaN" and "Inf", which no store can encode
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}

func marshalFlat(fixed map[string]any, fields Fields) ([]byte, error) {
	doc := make(map[string]any, len(fixed)+len(fields))
	for k, v := range fields {
		doc[k] = v
	}
	for k, v := range fixed {
		doc[k] = v
	}
	return json.Marshal(doc)
}

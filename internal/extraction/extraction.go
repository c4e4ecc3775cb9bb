// Package extraction turns a free-text meal description into nutrient
// fields by asking an external language model for a strict JSON object.
//
// The model is reached through the Extractor interface; openai.Client is
// the production implementation. This package owns the prompt and the
// parsing of the reply, which are the same for every provider.
package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/Kanaan7/NutritionTracker/internal"
)

// Result is the parsed reply of the extraction service.
type Result struct {
	Fields internal.Fields
	Tips   string
	// Date is whatever the model put in its date field, as JSON text when
	// it is not a string. The ingestion flow stamps its own date and does
	// not read it.
	Date string
	Raw  string
	// Dropped lists requested keys whose value was not numeric.
	Dropped []string
}

// Extractor asks the extraction service for the given keys.
type Extractor interface {
	Extract(ctx context.Context, text string, keys []string) (*Result, error)
}

// ExtractorFunc adapts a function to Extractor.
type ExtractorFunc func(ctx context.Context, text string, keys []string) (*Result, error)

func (f ExtractorFunc) Extract(ctx context.Context, text string, keys []string) (*Result, error) {
	return f(ctx, text, keys)
}

// BuildPrompt is the system instruction naming exactly the requested keys
// plus date and tips.
func BuildPrompt(keys []string) string {
	var b strings.Builder
	b.WriteString("You are a nutrition logging assistant.\n")
	fmt.Fprintf(&b, "Interpret the user's food description into the following nutrients: %s.\n", strings.Join(keys, ", "))
	b.WriteString("Always respond with a single JSON object with keys:\n")
	b.WriteString("  - date (YYYY-MM-DD)\n")
	for _, k := range keys {
		fmt.Fprintf(&b, "  - %s\n", k)
	}
	b.WriteString("  - tips\n")
	b.WriteString("Nutrient values must be plain numbers. Do NOT include any additional text, only the JSON.\n")
	return b.String()
}

// ParseResult reads raw as a single JSON object. Anything else yields an
// *internal.ExtractionParseError carrying raw.
func ParseResult(raw string, keys []string) (*Result, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	var obj map[string]json.RawMessage
	if err := dec.Decode(&obj); err != nil {
		return nil, &internal.ExtractionParseError{Raw: raw, Err: err}
	}
	if obj == nil {
		return nil, &internal.ExtractionParseError{Raw: raw, Err: errors.New("reply is null, want an object")}
	}
	// More reports false before a stray '}' or ']', so demand EOF instead
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &internal.ExtractionParseError{Raw: raw, Err: errors.New("trailing data after JSON object")}
	}

	requested := make(map[string]bool, len(keys))
	for _, k := range keys {
		requested[k] = true
	}

	res := &Result{Fields: internal.Fields{}, Raw: raw}
	for k, v := range obj {
		switch k {
		case internal.KeyDate:
			if json.Unmarshal(v, &res.Date) != nil && string(v) != "null" {
				res.Date = string(v)
			}
		case internal.KeyTips:
			var s string
			if json.Unmarshal(v, &s) == nil {
				res.Tips = s
			} else if string(v) != "null" {
				// lists or objects of advice are flattened to their JSON text
				res.Tips = string(v)
			}
		case internal.KeyID:
			// ids are assigned by the store
		default:
			n, ok := internal.ParseNumber(v)
			if ok {
				res.Fields[k] = n
			} else if requested[k] {
				res.Dropped = append(res.Dropped, k)
			}
		}
	}
	sort.Strings(res.Dropped)
	return res, nil
}

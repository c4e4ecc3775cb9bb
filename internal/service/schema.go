package service

import (
	"regexp"
	"strings"

	"github.com/Kanaan7/NutritionTracker/internal"
)

// NormalizeKeys trims keys and drops empties, duplicates and the reserved
// names id, date and tips, keeping first-seen order. When nothing is left
// the default nutrient set is returned.
func NormalizeKeys(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] || isReserved(k) {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	if len(out) == 0 {
		return append([]string(nil), internal.DefaultNutrients...)
	}
	return out
}

// TrackedKeys is the key set the user's goals configure.
func TrackedKeys(goals []internal.Goal) []string {
	keys := make([]string, 0, len(goals))
	for _, g := range goals {
		keys = append(keys, g.Key)
	}
	return NormalizeKeys(keys)
}

func isReserved(k string) bool {
	return k == internal.KeyID || k == internal.KeyDate || k == internal.KeyTips
}

var (
	spaceRun  = regexp.MustCompile(`\s+`)
	nonKeyRun = regexp.MustCompile(`[^a-z0-9_]`)
)

// Slugify turns a goal label such as "Vitamin C" into the key "vitamin_c".
func Slugify(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	s = spaceRun.ReplaceAllString(s, "_")
	return nonKeyRun.ReplaceAllString(s, "")
}

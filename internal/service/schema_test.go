package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Kanaan7/NutritionTracker/internal"
)

func TestNormalizeKeys(t *testing.T) {
	assert.Equal(t, []string{"calories", "protein", "carbs", "fat"}, NormalizeKeys(nil))
	assert.Equal(t, []string{"calories", "protein", "carbs", "fat"}, NormalizeKeys([]string{" ", "id"}))
	assert.Equal(t, []string{"fiber", "calories"}, NormalizeKeys([]string{" fiber", "calories", "fiber", "date", "tips", ""}))
}

func TestNormalizeKeys_DoesNotShareDefaults(t *testing.T) {
	keys := NormalizeKeys(nil)
	keys[0] = "mutated"
	assert.Equal(t, "calories", internal.DefaultNutrients[0])
}

func TestTrackedKeys(t *testing.T) {
	assert.Equal(t, internal.DefaultNutrients, TrackedKeys(nil))
	assert.Equal(t, []string{"vitamin_c", "calories"}, TrackedKeys([]internal.Goal{{Key: "vitamin_c"}, {Key: "calories"}}))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "vitamin_c", Slugify("  Vitamin C "))
	assert.Equal(t, "protein_g", Slugify("Protein (g)"))
	assert.Equal(t, "omega3_fatty_acids", Slugify("Omega-3   Fatty\tAcids"))
	assert.Equal(t, "", Slugify("!!!"))
}

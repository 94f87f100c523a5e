package categorizer

import (
	"testing"

	"fjacquet/statement-compare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomCategories(t *testing.T) {
	custom := NewCustomCategories("Pets", " ", "groceries", "Travel")
	assert.Equal(t, []string{"Pets", "Travel"}, custom.List())

	require.NoError(t, custom.Add("Gifts"))
	require.NoError(t, custom.Add("Gifts"))
	assert.Error(t, custom.Add(""))
	assert.Error(t, custom.Add("Food & Dining"))
	assert.Error(t, custom.Add("SHOPPING"))

	assert.True(t, custom.Contains("Gifts"))
	assert.True(t, custom.Remove("Gifts"))
	assert.False(t, custom.Remove("Gifts"))
	assert.False(t, custom.Contains("Gifts"))
}

func TestCustomCategories_NeverAffectClassification(t *testing.T) {
	c := New()
	before := c.Categorize("PETSMART Pets supplies")

	custom := NewCustomCategories("Pets", "petsmart")
	require.True(t, custom.Contains("petsmart"))

	assert.Equal(t, before, c.Categorize("PETSMART Pets supplies"))
	assert.Equal(t, models.CategoryShopping, before)
}

func TestAvailableCategories(t *testing.T) {
	custom := NewCustomCategories("Pets")
	all := AvailableCategories(custom)

	assert.Equal(t, models.BuiltinCategories(), all[:len(models.BuiltinCategories())])
	assert.Equal(t, "Pets", all[len(all)-1])
	assert.Equal(t, models.BuiltinCategories(), AvailableCategories(nil))
}

func TestIsKnownCategory(t *testing.T) {
	custom := NewCustomCategories("Pets")

	assert.True(t, IsKnownCategory(models.CategoryHealth, custom))
	assert.True(t, IsKnownCategory("Pets", custom))
	assert.False(t, IsKnownCategory("Boats", custom))
	assert.False(t, IsKnownCategory("Pets", nil))
}

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealwise/mealwise-go/internal/types"
)

func TestClone(t *testing.T) {
	t.Run("copies are independent", func(t *testing.T) {
		original := samplePlan()
		copied, err := clone(original)
		require.NoError(t, err)
		require.Equal(t, original, copied)

		copied.Days[0].Meals[0].Recipe.Title = "changed"
		assert.Equal(t, "Oats", original.Days[0].Meals[0].Recipe.Title)
	})

	t.Run("nil stays nil", func(t *testing.T) {
		var plan *types.MealPlan
		copied, err := clone(plan)
		require.NoError(t, err)
		assert.Nil(t, copied)
	})
}

func TestSameJSON(t *testing.T) {
	a := samplePlan()
	b := samplePlan()
	assert.True(t, sameJSON(a, b))

	b.Days[0].Meals[0].Recipe.Calories = 999
	assert.False(t, sameJSON(a, b))
}

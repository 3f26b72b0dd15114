package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	t.Run("should classify a bare Error", func(t *testing.T) {
		err := New(Conflict, "recipe_in_meal_plan", "recipe is referenced by a meal plan")
		assert.Equal(t, Conflict, KindOf(err))
		assert.True(t, IsKind(err, Conflict))
	})

	t.Run("should classify through wrapping", func(t *testing.T) {
		inner := Wrap(Timeout, "request timed out", errors.New("context deadline exceeded"))
		outer := fmt.Errorf("load plan: %w", inner)
		assert.Equal(t, Timeout, KindOf(outer))
	})

	t.Run("should return Unknown for unclassified errors", func(t *testing.T) {
		assert.Equal(t, Unknown, KindOf(errors.New("boom")))
		assert.False(t, IsKind(errors.New("boom"), Network))
	})
}

func TestErrorString(t *testing.T) {
	withCode := New(NotFound, "recipe_not_found", "no such recipe")
	assert.Equal(t, "not_found (recipe_not_found): no such recipe", withCode.Error())

	withoutCode := New(NoPlan, "", "no meal plan loaded")
	assert.Equal(t, "no_plan: no meal plan loaded", withoutCode.Error())
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(Network, "network unreachable", cause)
	assert.ErrorIs(t, err, cause)
}

package types

import (
	"github.com/google/uuid"
)

// Slots 0-2 carry fixed meal-type semantics; higher slots are extra meals of
// a freely chosen type.
const (
	SlotBreakfast = 0
	SlotLunch     = 1
	SlotDinner    = 2
)

// SlotMeal is one position in a day's meal grid. A nil MealItemID means the
// slot is empty; Recipe is nil for empty slots. Until the server confirms a
// newly added meal, MealItemID can hold a client-generated placeholder and
// must not be treated as stable.
type SlotMeal struct {
	MealItemID *int64       `json:"meal_item_id"`
	Slot       int          `json:"slot"`
	MealType   string       `json:"meal_type"`
	Recipe     *RecipeShort `json:"recipe"`
}

// DayMeals groups the slots of one weekday, Day in 0..6.
type DayMeals struct {
	Day   int        `json:"day"`
	Meals []SlotMeal `json:"meals"`
}

// MealPlan is the 7-day meal grid. The whole tree is replaced on generation;
// individual slots are mutated by change/add/delete operations.
type MealPlan struct {
	ID   uuid.UUID  `json:"id"`
	Days []DayMeals `json:"days"`
}

// Slot returns the slot with the given meal item id, or nil.
func (p *MealPlan) Slot(mealItemID int64) *SlotMeal {
	for di := range p.Days {
		for mi := range p.Days[di].Meals {
			m := &p.Days[di].Meals[mi]
			if m.MealItemID != nil && *m.MealItemID == mealItemID {
				return m
			}
		}
	}
	return nil
}

// Day returns the day group for the given weekday index, or nil.
func (p *MealPlan) Day(day int) *DayMeals {
	for i := range p.Days {
		if p.Days[i].Day == day {
			return &p.Days[i]
		}
	}
	return nil
}

// internal/models/mealplan.go
package models

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

var MealTypes = []MealType{MealBreakfast, MealLunch, MealDinner, MealSnack}

func (t MealType) Valid() bool {
	for _, m := range MealTypes {
		if m == t {
			return true
		}
	}
	return false
}

type PlannedMeal struct {
	Date     string   `json:"date"`
	MealType MealType `json:"mealType"`
	Name     string   `json:"name"`
	Macros   Macros   `json:"macros"`
}

// SameSlot reports whether both meals occupy the same (date, mealType) slot.
func (m PlannedMeal) SameSlot(o PlannedMeal) bool {
	return m.Date == o.Date && m.MealType == o.MealType
}

type MealPlan struct {
	ID        string        `json:"_id,omitempty"`
	WeekStart string        `json:"weekStart"`
	Meals     []PlannedMeal `json:"meals"`
}

// AIMealRequest is the payload of /ai/meal-suggest.
type AIMealRequest struct {
	MealType MealType           `json:"mealType"`
	Pantry   []PantryIngredient `json:"pantry"`
	Targets  *MacroGoals        `json:"targets,omitempty"`
}

type PantryIngredient struct {
	Name string `json:"name"`
	Unit string `json:"unit,omitempty"`
}

// MealSuggestion is a single AI generated meal idea.
type MealSuggestion struct {
	Name        string
	Ingredients []string
	Steps       []string
	Macros      Macros
}

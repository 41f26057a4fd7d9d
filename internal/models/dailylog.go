// internal/models/dailylog.go
package models

// Weight is a single body-weight reading. MeasuredAt is a free-form moment
// such as "morning", "evening" or "night".
type Weight struct {
	Value      float64 `json:"value"`
	MeasuredAt string  `json:"measuredAt,omitempty"`
}

type Activity struct {
	Type     string  `json:"type"`
	Steps    float64 `json:"steps,omitempty"`
	Duration float64 `json:"duration,omitempty"`
}

// Macros are daily nutrition totals. Calories in kcal, the rest in grams.
type Macros struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
}

// Add returns the field-wise sum.
func (m Macros) Add(o Macros) Macros {
	return Macros{
		Calories: m.Calories + o.Calories,
		Protein:  m.Protein + o.Protein,
		Carbs:    m.Carbs + o.Carbs,
		Fat:      m.Fat + o.Fat,
		Fiber:    m.Fiber + o.Fiber,
	}
}

// Get returns the value for key, 0 for unknown keys.
func (m Macros) Get(key MacroKey) float64 {
	switch key {
	case MacroCalories:
		return m.Calories
	case MacroProtein:
		return m.Protein
	case MacroCarbs:
		return m.Carbs
	case MacroFat:
		return m.Fat
	case MacroFiber:
		return m.Fiber
	}
	return 0
}

// DailyLogEntry is one day of a user's log as returned by the backend.
// Date is always the ISO date-only prefix (YYYY-MM-DD).
type DailyLogEntry struct {
	Date     string    `json:"date"`
	Weight   *Weight   `json:"weight,omitempty"`
	Activity *Activity `json:"activity,omitempty"`
	Totals   *Macros   `json:"totals,omitempty"`
}

// MealEntry is a logged meal description for a meal slot.
type MealEntry struct {
	MealType    string `json:"meal_type"`
	Description string `json:"description"`
}

// Meal slots accepted by /daily-log/calculate-macros.
var MealSlots = []string{"breakfast", "lunch", "snacks", "dinner"}

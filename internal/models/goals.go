// internal/models/goals.go
package models

type MacroKey string

const (
	MacroCalories MacroKey = "calories"
	MacroProtein  MacroKey = "protein"
	MacroCarbs    MacroKey = "carbs"
	MacroFat      MacroKey = "fat"
	MacroFiber    MacroKey = "fiber"
)

var MacroKeys = []MacroKey{MacroCalories, MacroProtein, MacroCarbs, MacroFat, MacroFiber}

// Unit returns the display unit of a macro.
func (k MacroKey) Unit() string {
	if k == MacroCalories {
		return "kcal"
	}
	return "g"
}

// Range is a goal band. Either bound may be unset.
type Range struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

func (r *Range) Clone() *Range {
	if r == nil {
		return nil
	}
	return &Range{Min: cloneFloat(r.Min), Max: cloneFloat(r.Max)}
}

type WorkoutMode string

const (
	WorkoutModeTime     WorkoutMode = "time"
	WorkoutModeCalories WorkoutMode = "calories"
)

// WorkoutGoal targets minutes when Mode is time and kcal when Mode is calories.
type WorkoutGoal struct {
	Type   string      `json:"type,omitempty"`
	Mode   WorkoutMode `json:"mode,omitempty"`
	Target *float64    `json:"target,omitempty"`
}

type MacroGoals struct {
	Calories *Range `json:"calories,omitempty"`
	Protein  *Range `json:"protein,omitempty"`
	Carbs    *Range `json:"carbs,omitempty"`
	Fat      *Range `json:"fat,omitempty"`
	Fiber    *Range `json:"fiber,omitempty"`
}

// Get returns the band for key or nil.
func (m *MacroGoals) Get(key MacroKey) *Range {
	if m == nil {
		return nil
	}
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
	return nil
}

// Set replaces the band for key.
func (m *MacroGoals) Set(key MacroKey, r *Range) {
	switch key {
	case MacroCalories:
		m.Calories = r
	case MacroProtein:
		m.Protein = r
	case MacroCarbs:
		m.Carbs = r
	case MacroFat:
		m.Fat = r
	case MacroFiber:
		m.Fiber = r
	}
}

type NonWeightGoals struct {
	SleepHours  *Range `json:"sleepHours,omitempty"`
	WaterLiters *Range `json:"waterLiters,omitempty"`
}

type StreakGoals struct {
	StepsDaysPerWeekMin              *int `json:"stepsDaysPerWeekMin,omitempty"`
	CaloriesWithinGoalDaysPerWeekMin *int `json:"caloriesWithinGoalDaysPerWeekMin,omitempty"`
}

type GoalSet struct {
	Steps         *Range          `json:"steps,omitempty"`
	Workout       *WorkoutGoal    `json:"workout,omitempty"`
	Macros        *MacroGoals     `json:"macros,omitempty"`
	CurrentWeight *float64        `json:"currentWeight,omitempty"`
	GoalWeight    *float64        `json:"goalWeight,omitempty"`
	TargetDate    *string         `json:"targetDate,omitempty"`
	NonWeight     *NonWeightGoals `json:"nonWeight,omitempty"`
	Streaks       *StreakGoals    `json:"streaks,omitempty"`
}

// Clone returns a deep copy so drafts never alias server state.
func (g GoalSet) Clone() GoalSet {
	out := GoalSet{
		Steps:         g.Steps.Clone(),
		CurrentWeight: cloneFloat(g.CurrentWeight),
		GoalWeight:    cloneFloat(g.GoalWeight),
	}
	if g.Workout != nil {
		w := *g.Workout
		w.Target = cloneFloat(g.Workout.Target)
		out.Workout = &w
	}
	if g.Macros != nil {
		out.Macros = &MacroGoals{}
		for _, k := range MacroKeys {
			out.Macros.Set(k, g.Macros.Get(k).Clone())
		}
	}
	if g.TargetDate != nil {
		d := *g.TargetDate
		out.TargetDate = &d
	}
	if g.NonWeight != nil {
		out.NonWeight = &NonWeightGoals{
			SleepHours:  g.NonWeight.SleepHours.Clone(),
			WaterLiters: g.NonWeight.WaterLiters.Clone(),
		}
	}
	if g.Streaks != nil {
		out.Streaks = &StreakGoals{
			StepsDaysPerWeekMin:              cloneInt(g.Streaks.StepsDaysPerWeekMin),
			CaloriesWithinGoalDaysPerWeekMin: cloneInt(g.Streaks.CaloriesWithinGoalDaysPerWeekMin),
		}
	}
	return out
}

// MacroBand returns the macro goal band for key, nil when unset.
func (g GoalSet) MacroBand(key MacroKey) *Range {
	return g.Macros.Get(key)
}

func Float(v float64) *float64 { return &v }

func Int(v int) *int { return &v }

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

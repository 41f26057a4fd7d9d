package goals

import (
	"fmt"
	"time"

	"fittrack-bot/internal/models"
)

// RangePatch sets the bounds that are non-nil and keeps the others.
type RangePatch struct {
	Min *float64
	Max *float64
}

func (p *RangePatch) apply(r *models.Range) *models.Range {
	if p == nil {
		return r
	}
	out := r.Clone()
	if out == nil {
		out = &models.Range{}
	}
	if p.Min != nil {
		out.Min = models.Float(*p.Min)
	}
	if p.Max != nil {
		out.Max = models.Float(*p.Max)
	}
	return out
}

type WorkoutPatch struct {
	Type   *string
	Mode   *models.WorkoutMode
	Target *float64
}

// Patch is a typed partial update of a goal set. Nil fields are left alone.
type Patch struct {
	Steps         *RangePatch
	Workout       *WorkoutPatch
	Macros        map[models.MacroKey]RangePatch
	CurrentWeight *float64
	GoalWeight    *float64
	TargetDate    *string
	SleepHours    *RangePatch
	WaterLiters   *RangePatch

	StepsDaysPerWeekMin              *int
	CaloriesWithinGoalDaysPerWeekMin *int
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return p.Steps == nil && p.Workout == nil && len(p.Macros) == 0 &&
		p.CurrentWeight == nil && p.GoalWeight == nil && p.TargetDate == nil &&
		p.SleepHours == nil && p.WaterLiters == nil &&
		p.StepsDaysPerWeekMin == nil && p.CaloriesWithinGoalDaysPerWeekMin == nil
}

// Validate checks every field of the patch on its own.
func (p Patch) Validate() error {
	checks := []struct {
		field string
		rp    *RangePatch
	}{
		{"steps", p.Steps},
		{"sleepHours", p.SleepHours},
		{"waterLiters", p.WaterLiters},
	}
	for k, rp := range p.Macros {
		if !knownMacro(k) {
			return fmt.Errorf("unknown macro %q", k)
		}
		rp := rp
		checks = append(checks, struct {
			field string
			rp    *RangePatch
		}{"macros." + string(k), &rp})
	}
	for _, c := range checks {
		if c.rp == nil {
			continue
		}
		if err := validateRange(c.field, &models.Range{Min: c.rp.Min, Max: c.rp.Max}); err != nil {
			return err
		}
	}
	if w := p.Workout; w != nil {
		if w.Mode != nil && *w.Mode != models.WorkoutModeTime && *w.Mode != models.WorkoutModeCalories {
			return fmt.Errorf("workout.mode: %w", ErrInvalidMode)
		}
		if err := validateNonNegative("workout.target", w.Target); err != nil {
			return err
		}
	}
	if err := validateNonNegative("currentWeight", p.CurrentWeight); err != nil {
		return err
	}
	if err := validateNonNegative("goalWeight", p.GoalWeight); err != nil {
		return err
	}
	if err := validateStreak("streaks.stepsDaysPerWeekMin", p.StepsDaysPerWeekMin); err != nil {
		return err
	}
	return validateStreak("streaks.caloriesWithinGoalDaysPerWeekMin", p.CaloriesWithinGoalDaysPerWeekMin)
}

// Apply validates p, merges it into a copy of g and validates the sections
// p touched. Sections p leaves alone are not checked, so an invalid band
// elsewhere in g does not block the edit. g itself is never modified.
func Apply(g models.GoalSet, p Patch) (models.GoalSet, error) {
	if err := p.Validate(); err != nil {
		return g, err
	}
	out := g.Clone()

	if p.Steps != nil {
		out.Steps = p.Steps.apply(out.Steps)
	}
	if w := p.Workout; w != nil {
		if out.Workout == nil {
			out.Workout = &models.WorkoutGoal{}
		}
		if w.Type != nil {
			out.Workout.Type = *w.Type
		}
		if w.Mode != nil {
			out.Workout.Mode = *w.Mode
		}
		if w.Target != nil {
			out.Workout.Target = models.Float(*w.Target)
		}
	}
	if len(p.Macros) > 0 {
		if out.Macros == nil {
			out.Macros = &models.MacroGoals{}
		}
		for k, rp := range p.Macros {
			rp := rp
			out.Macros.Set(k, rp.apply(out.Macros.Get(k)))
		}
	}
	if p.CurrentWeight != nil {
		out.CurrentWeight = models.Float(*p.CurrentWeight)
	}
	if p.GoalWeight != nil {
		out.GoalWeight = models.Float(*p.GoalWeight)
	}
	if p.TargetDate != nil {
		d := *p.TargetDate
		out.TargetDate = &d
	}
	if p.SleepHours != nil || p.WaterLiters != nil {
		if out.NonWeight == nil {
			out.NonWeight = &models.NonWeightGoals{}
		}
		out.NonWeight.SleepHours = p.SleepHours.apply(out.NonWeight.SleepHours)
		out.NonWeight.WaterLiters = p.WaterLiters.apply(out.NonWeight.WaterLiters)
	}
	if p.StepsDaysPerWeekMin != nil || p.CaloriesWithinGoalDaysPerWeekMin != nil {
		if out.Streaks == nil {
			out.Streaks = &models.StreakGoals{}
		}
		if p.StepsDaysPerWeekMin != nil {
			out.Streaks.StepsDaysPerWeekMin = models.Int(*p.StepsDaysPerWeekMin)
		}
		if p.CaloriesWithinGoalDaysPerWeekMin != nil {
			out.Streaks.CaloriesWithinGoalDaysPerWeekMin = models.Int(*p.CaloriesWithinGoalDaysPerWeekMin)
		}
	}

	if err := validateTouched(out, p); err != nil {
		return g, err
	}
	return out, nil
}

// validateTouched re-checks the merged sections of out that p changed.
func validateTouched(out models.GoalSet, p Patch) error {
	if p.Steps != nil {
		if err := validateRange("steps", out.Steps); err != nil {
			return err
		}
	}
	for _, k := range models.MacroKeys {
		if _, ok := p.Macros[k]; !ok {
			continue
		}
		if err := validateRange("macros."+string(k), out.Macros.Get(k)); err != nil {
			return err
		}
	}
	if p.SleepHours != nil {
		if err := validateRange("sleepHours", out.NonWeight.SleepHours); err != nil {
			return err
		}
	}
	if p.WaterLiters != nil {
		if err := validateRange("waterLiters", out.NonWeight.WaterLiters); err != nil {
			return err
		}
	}
	if p.TargetDate != nil && *p.TargetDate != "" {
		if _, err := time.Parse(time.DateOnly, *p.TargetDate); err != nil {
			return fmt.Errorf("targetDate: %w", ErrInvalidDate)
		}
	}
	return nil
}

func knownMacro(k models.MacroKey) bool {
	for _, m := range models.MacroKeys {
		if m == k {
			return true
		}
	}
	return false
}

// Package goals owns the goal draft lifecycle: defaults, merging the server
// copy into a draft and applying validated patches.
package goals

import (
	"errors"
	"fmt"
	"time"

	"fittrack-bot/internal/models"
)

var (
	ErrInvalidRange  = errors.New("min must not exceed max")
	ErrNegative      = errors.New("value must not be negative")
	ErrInvalidMode   = errors.New("workout mode must be time or calories")
	ErrInvalidDate   = errors.New("date must be YYYY-MM-DD")
	ErrInvalidStreak = errors.New("streak days must be between 0 and 7")
)

// Defaults is the draft shown before the server copy has been loaded.
func Defaults() models.GoalSet {
	f := models.Float
	return models.GoalSet{
		Steps:   &models.Range{Min: f(8000), Max: f(12000)},
		Workout: &models.WorkoutGoal{Type: "gym", Mode: models.WorkoutModeTime, Target: f(45)},
		Macros: &models.MacroGoals{
			Calories: &models.Range{Min: f(1800), Max: f(2200)},
			Protein:  &models.Range{Min: f(110), Max: f(150)},
			Carbs:    &models.Range{Min: f(150), Max: f(260)},
			Fat:      &models.Range{Min: f(45), Max: f(80)},
			Fiber:    &models.Range{Min: f(25), Max: f(40)},
		},
		NonWeight: &models.NonWeightGoals{
			SleepHours:  &models.Range{Min: f(7), Max: f(8)},
			WaterLiters: &models.Range{Min: f(2.5), Max: f(3)},
		},
		Streaks: &models.StreakGoals{
			StepsDaysPerWeekMin:              models.Int(5),
			CaloriesWithinGoalDaysPerWeekMin: models.Int(5),
		},
	}
}

// MergeServer overlays every top-level section present in server onto base.
// Sections are replaced whole, never merged field by field.
func MergeServer(base, server models.GoalSet) models.GoalSet {
	out := base.Clone()
	s := server.Clone()
	if s.Steps != nil {
		out.Steps = s.Steps
	}
	if s.Workout != nil {
		out.Workout = s.Workout
	}
	if s.Macros != nil {
		out.Macros = s.Macros
	}
	if s.CurrentWeight != nil {
		out.CurrentWeight = s.CurrentWeight
	}
	if s.GoalWeight != nil {
		out.GoalWeight = s.GoalWeight
	}
	if s.TargetDate != nil {
		out.TargetDate = s.TargetDate
	}
	if s.NonWeight != nil {
		out.NonWeight = s.NonWeight
	}
	if s.Streaks != nil {
		out.Streaks = s.Streaks
	}
	return out
}

// Validate checks a goal set as a whole.
func Validate(g models.GoalSet) error {
	if err := validateRange("steps", g.Steps); err != nil {
		return err
	}
	if g.Macros != nil {
		for _, k := range models.MacroKeys {
			if err := validateRange("macros."+string(k), g.Macros.Get(k)); err != nil {
				return err
			}
		}
	}
	if g.NonWeight != nil {
		if err := validateRange("sleepHours", g.NonWeight.SleepHours); err != nil {
			return err
		}
		if err := validateRange("waterLiters", g.NonWeight.WaterLiters); err != nil {
			return err
		}
	}
	if w := g.Workout; w != nil {
		if w.Mode != "" && w.Mode != models.WorkoutModeTime && w.Mode != models.WorkoutModeCalories {
			return fmt.Errorf("workout.mode: %w", ErrInvalidMode)
		}
		if w.Target != nil && *w.Target < 0 {
			return fmt.Errorf("workout.target: %w", ErrNegative)
		}
	}
	if err := validateNonNegative("currentWeight", g.CurrentWeight); err != nil {
		return err
	}
	if err := validateNonNegative("goalWeight", g.GoalWeight); err != nil {
		return err
	}
	if g.TargetDate != nil && *g.TargetDate != "" {
		if _, err := time.Parse("2006-01-02", *g.TargetDate); err != nil {
			return fmt.Errorf("targetDate: %w", ErrInvalidDate)
		}
	}
	if s := g.Streaks; s != nil {
		if err := validateStreak("streaks.stepsDaysPerWeekMin", s.StepsDaysPerWeekMin); err != nil {
			return err
		}
		if err := validateStreak("streaks.caloriesWithinGoalDaysPerWeekMin", s.CaloriesWithinGoalDaysPerWeekMin); err != nil {
			return err
		}
	}
	return nil
}

func validateRange(field string, r *models.Range) error {
	if r == nil {
		return nil
	}
	if err := validateNonNegative(field+".min", r.Min); err != nil {
		return err
	}
	if err := validateNonNegative(field+".max", r.Max); err != nil {
		return err
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return fmt.Errorf("%s: %w", field, ErrInvalidRange)
	}
	return nil
}

func validateNonNegative(field string, v *float64) error {
	if v != nil && *v < 0 {
		return fmt.Errorf("%s: %w", field, ErrNegative)
	}
	return nil
}

func validateStreak(field string, v *int) error {
	if v != nil && (*v < 0 || *v > 7) {
		return fmt.Errorf("%s: %w", field, ErrInvalidStreak)
	}
	return nil
}

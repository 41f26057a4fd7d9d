package goals

import (
	"fmt"
	"strconv"
	"strings"

	"fittrack-bot/internal/models"
)

// ParsePatch turns a "field args..." command into a patch. A "-" bound keeps
// the current value. Supported forms:
//
//	steps MIN MAX
//	calories|protein|carbs|fat|fiber MIN MAX
//	sleep MIN MAX
//	water MIN MAX
//	workout TYPE time|calories TARGET
//	weight CURRENT GOAL
//	targetdate YYYY-MM-DD
//	streak steps|calories DAYS
func ParsePatch(field string, args []string) (Patch, error) {
	field = strings.ToLower(strings.TrimSpace(field))
	switch field {
	case "steps":
		rp, err := parseRangeArgs(args)
		if err != nil {
			return Patch{}, fmt.Errorf("steps: %w", err)
		}
		return Patch{Steps: rp}, nil
	case "calories", "protein", "carbs", "fat", "fiber":
		rp, err := parseRangeArgs(args)
		if err != nil {
			return Patch{}, fmt.Errorf("%s: %w", field, err)
		}
		return Patch{Macros: map[models.MacroKey]RangePatch{models.MacroKey(field): *rp}}, nil
	case "sleep":
		rp, err := parseRangeArgs(args)
		if err != nil {
			return Patch{}, fmt.Errorf("sleep: %w", err)
		}
		return Patch{SleepHours: rp}, nil
	case "water":
		rp, err := parseRangeArgs(args)
		if err != nil {
			return Patch{}, fmt.Errorf("water: %w", err)
		}
		return Patch{WaterLiters: rp}, nil
	case "workout":
		if len(args) != 3 {
			return Patch{}, fmt.Errorf("workout: expected TYPE MODE TARGET")
		}
		wp := &WorkoutPatch{}
		if args[0] != "-" {
			wp.Type = &args[0]
		}
		if args[1] != "-" {
			mode := models.WorkoutMode(strings.ToLower(args[1]))
			wp.Mode = &mode
		}
		target, err := parseOptional(args[2])
		if err != nil {
			return Patch{}, fmt.Errorf("workout target: %w", err)
		}
		wp.Target = target
		return Patch{Workout: wp}, nil
	case "weight":
		if len(args) != 2 {
			return Patch{}, fmt.Errorf("weight: expected CURRENT GOAL")
		}
		current, err := parseOptional(args[0])
		if err != nil {
			return Patch{}, fmt.Errorf("current weight: %w", err)
		}
		goal, err := parseOptional(args[1])
		if err != nil {
			return Patch{}, fmt.Errorf("goal weight: %w", err)
		}
		return Patch{CurrentWeight: current, GoalWeight: goal}, nil
	case "targetdate":
		if len(args) != 1 {
			return Patch{}, fmt.Errorf("targetdate: expected YYYY-MM-DD")
		}
		d := args[0]
		return Patch{TargetDate: &d}, nil
	case "streak":
		if len(args) != 2 {
			return Patch{}, fmt.Errorf("streak: expected steps|calories DAYS")
		}
		days, err := strconv.Atoi(args[1])
		if err != nil {
			return Patch{}, fmt.Errorf("streak days: %w", err)
		}
		switch strings.ToLower(args[0]) {
		case "steps":
			return Patch{StepsDaysPerWeekMin: &days}, nil
		case "calories":
			return Patch{CaloriesWithinGoalDaysPerWeekMin: &days}, nil
		}
		return Patch{}, fmt.Errorf("streak: unknown kind %q", args[0])
	}
	return Patch{}, fmt.Errorf("unknown goal field %q", field)
}

func parseRangeArgs(args []string) (*RangePatch, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("expected MIN MAX")
	}
	lo, err := parseOptional(args[0])
	if err != nil {
		return nil, err
	}
	hi, err := parseOptional(args[1])
	if err != nil {
		return nil, err
	}
	return &RangePatch{Min: lo, Max: hi}, nil
}

func parseOptional(s string) (*float64, error) {
	if s == "-" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid number %q", s)
	}
	return &v, nil
}

package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fittrack-bot/internal/models"
)

var measuredAtValues = map[string]bool{"morning": true, "evening": true, "night": true}

// parseWeight reads "VALUE [morning|evening|night]".
func parseWeight(args string) (models.Weight, error) {
	f := strings.Fields(args)
	if len(f) == 0 || len(f) > 2 {
		return models.Weight{}, errors.New("usage: /weight 80.5 [morning|evening|night]")
	}
	v, err := parsePositive(f[0])
	if err != nil {
		return models.Weight{}, fmt.Errorf("weight: %w", err)
	}
	w := models.Weight{Value: v, MeasuredAt: "morning"}
	if len(f) == 2 {
		at := strings.ToLower(f[1])
		if !measuredAtValues[at] {
			return models.Weight{}, fmt.Errorf("measured at must be morning, evening or night")
		}
		w.MeasuredAt = at
	}
	return w, nil
}

// parseActivity reads "TYPE STEPS MINUTES".
func parseActivity(args string) (models.Activity, error) {
	f := strings.Fields(args)
	if len(f) != 3 {
		return models.Activity{}, errors.New("usage: /activity walk 9000 45")
	}
	steps, err := parseNonNegative(f[1])
	if err != nil {
		return models.Activity{}, fmt.Errorf("steps: %w", err)
	}
	minutes, err := parseNonNegative(f[2])
	if err != nil {
		return models.Activity{}, fmt.Errorf("duration: %w", err)
	}
	return models.Activity{Type: f[0], Steps: steps, Duration: minutes}, nil
}

// parseMeals reads "slot: description" pairs separated by ";" or new lines.
func parseMeals(args string) (map[string]string, error) {
	known := make(map[string]bool, len(models.MealSlots))
	for _, s := range models.MealSlots {
		known[s] = true
	}

	out := make(map[string]string)
	parts := strings.FieldsFunc(args, func(r rune) bool { return r == ';' || r == '\n' })
	for _, p := range parts {
		slot, desc, ok := strings.Cut(p, ":")
		if !ok {
			return nil, fmt.Errorf("expected slot: description, got %q", strings.TrimSpace(p))
		}
		slot = strings.ToLower(strings.TrimSpace(slot))
		if slot == "snack" {
			slot = "snacks"
		}
		if !known[slot] {
			return nil, fmt.Errorf("unknown meal %q, use breakfast, lunch, snacks or dinner", slot)
		}
		if desc = strings.TrimSpace(desc); desc != "" {
			out[slot] = desc
		}
	}
	if len(out) == 0 {
		return nil, errors.New("usage: /meals breakfast: oats; lunch: salad; dinner: fish")
	}
	return out, nil
}

// parsePantryAdd reads "[instock|tobuy] NAME...". The status defaults to to_buy.
func parsePantryAdd(args string) (string, models.PantryStatus) {
	f := strings.Fields(args)
	status := models.StatusToBuy
	if len(f) > 0 {
		switch strings.ToLower(f[0]) {
		case "instock", "in_stock", "have":
			status, f = models.StatusInStock, f[1:]
		case "tobuy", "to_buy", "buy":
			status, f = models.StatusToBuy, f[1:]
		}
	}
	return strings.Join(f, " "), status
}

// parsePlanAdd reads "YYYY-MM-DD MEALTYPE NAME...".
func parsePlanAdd(args string) (models.PlannedMeal, error) {
	f := strings.Fields(args)
	if len(f) < 3 {
		return models.PlannedMeal{}, errors.New("usage: /planadd 2024-01-02 lunch Chicken salad")
	}
	if _, err := time.Parse(time.DateOnly, f[0]); err != nil {
		return models.PlannedMeal{}, fmt.Errorf("date must be YYYY-MM-DD")
	}
	mt := models.MealType(strings.ToLower(f[1]))
	if !mt.Valid() {
		return models.PlannedMeal{}, fmt.Errorf("meal type must be breakfast, lunch, dinner or snack")
	}
	return models.PlannedMeal{Date: f[0], MealType: mt, Name: strings.Join(f[2:], " ")}, nil
}

// parseDateOr returns the date in args or fallback when args is blank.
func parseDateOr(args string, fallback time.Time) (time.Time, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return fallback, nil
	}
	d, err := time.ParseInLocation(time.DateOnly, args, fallback.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("date must be YYYY-MM-DD")
	}
	return d, nil
}

func parseLimit(args string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func parsePositive(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%q is not a positive number", s)
	}
	return v, nil
}

func parseNonNegative(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%q is not a number >= 0", s)
	}
	return v, nil
}

package api

import (
	"strings"

	"github.com/tidwall/gjson"

	"fittrack-bot/internal/models"
)

// The backend shapes are loose: numbers may arrive as strings, weight may be
// a bare number or an object, totals may be called macros. Everything below
// reads fields permissively and defaults to zero values.

// detail extracts a readable message from an error body.
func detail(body []byte) string {
	if gjson.ValidBytes(body) {
		if d := gjson.GetBytes(body, "detail"); d.Exists() {
			if d.Type == gjson.String {
				return d.String()
			}
			return d.Raw
		}
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}

// datePrefix keeps the YYYY-MM-DD part of an ISO date or timestamp.
func datePrefix(s string) string {
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}

func parseMacros(v gjson.Result) models.Macros {
	fiber := v.Get("fiber")
	if !fiber.Exists() {
		fiber = v.Get("fibre")
	}
	return models.Macros{
		Calories: v.Get("calories").Float(),
		Protein:  v.Get("protein").Float(),
		Carbs:    v.Get("carbs").Float(),
		Fat:      v.Get("fat").Float(),
		Fiber:    fiber.Float(),
	}
}

func parseWeight(v gjson.Result) *models.Weight {
	switch {
	case v.Type == gjson.Number:
		return &models.Weight{Value: v.Float()}
	case v.IsObject():
		val := v.Get("value")
		if val.Type != gjson.Number {
			return nil
		}
		return &models.Weight{Value: val.Float(), MeasuredAt: v.Get("measuredAt").String()}
	}
	return nil
}

func parseDailyLog(v gjson.Result) models.DailyLogEntry {
	e := models.DailyLogEntry{
		Date:   datePrefix(v.Get("date").String()),
		Weight: parseWeight(v.Get("weight")),
	}
	if a := v.Get("activity"); a.IsObject() {
		e.Activity = &models.Activity{
			Type:     a.Get("type").String(),
			Steps:    a.Get("steps").Float(),
			Duration: a.Get("duration").Float(),
		}
	}
	m := v.Get("totals")
	if !m.IsObject() {
		m = v.Get("macros")
	}
	if m.IsObject() {
		totals := parseMacros(m)
		e.Totals = &totals
	}
	return e
}

func parseDailyLogs(body []byte) []models.DailyLogEntry {
	out := []models.DailyLogEntry{}
	res := gjson.ParseBytes(body)
	if !res.IsArray() {
		return out
	}
	res.ForEach(func(_, v gjson.Result) bool {
		if v.IsObject() {
			out = append(out, parseDailyLog(v))
		}
		return true
	})
	return out
}

func idOf(v gjson.Result) string {
	if id := v.Get("_id"); id.Exists() {
		return id.String()
	}
	return v.Get("id").String()
}

func parsePantryItem(v gjson.Result) models.PantryItem {
	return models.PantryItem{
		ID:     idOf(v),
		Name:   v.Get("name").String(),
		Status: models.PantryStatus(v.Get("status").String()),
		Unit:   v.Get("unit").String(),
		Qty:    v.Get("qty").Float(),
	}
}

func parsePantryItems(body []byte) []models.PantryItem {
	out := []models.PantryItem{}
	res := gjson.ParseBytes(body)
	if !res.IsArray() {
		return out
	}
	res.ForEach(func(_, v gjson.Result) bool {
		out = append(out, parsePantryItem(v))
		return true
	})
	return out
}

func parseMealPlan(body []byte) *models.MealPlan {
	res := gjson.ParseBytes(body)
	if !res.IsObject() {
		return nil
	}
	plan := &models.MealPlan{
		ID:        idOf(res),
		WeekStart: datePrefix(res.Get("weekStart").String()),
		Meals:     []models.PlannedMeal{},
	}
	res.Get("meals").ForEach(func(_, m gjson.Result) bool {
		plan.Meals = append(plan.Meals, models.PlannedMeal{
			Date:     datePrefix(m.Get("date").String()),
			MealType: models.MealType(m.Get("mealType").String()),
			Name:     m.Get("name").String(),
			Macros:   parseMacros(m.Get("macros")),
		})
		return true
	})
	return plan
}

func stringList(v gjson.Result) []string {
	var out []string
	v.ForEach(func(_, it gjson.Result) bool {
		switch {
		case it.Type == gjson.String:
			out = append(out, it.String())
		case it.IsObject() && it.Get("name").Exists():
			out = append(out, strings.Join(strings.Fields(
				it.Get("qty").String()+" "+it.Get("unit").String()+" "+it.Get("name").String(),
			), " "))
		}
		return true
	})
	return out
}

func firstOf(v gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if r := v.Get(p); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}

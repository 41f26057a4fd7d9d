package api

import (
	"context"
	"net/http"

	"github.com/tidwall/gjson"

	"fittrack-bot/internal/models"
)

// LogWeight records a weight reading for today.
func (c *Client) LogWeight(ctx context.Context, w models.Weight) (models.Weight, error) {
	req := map[string]any{"weight": w.Value, "measuredAt": w.MeasuredAt}
	body, err := c.do(ctx, "weights", http.MethodPost, "/weights", nil, req)
	if err != nil {
		return models.Weight{}, err
	}

	res := gjson.ParseBytes(body)
	out := w
	if v := firstOf(res, "weight", "value"); v.Type == gjson.Number {
		out.Value = v.Float()
	}
	if m := res.Get("measuredAt"); m.Exists() {
		out.MeasuredAt = m.String()
	}
	return out, nil
}

// LogActivity records today's activity.
func (c *Client) LogActivity(ctx context.Context, a models.Activity) (models.Activity, error) {
	body, err := c.do(ctx, "activity", http.MethodPost, "/activity", nil, a)
	if err != nil {
		return models.Activity{}, err
	}

	res := gjson.ParseBytes(body)
	if !res.IsObject() {
		return a, nil
	}
	out := a
	if t := res.Get("type"); t.Exists() {
		out.Type = t.String()
	}
	if s := res.Get("steps"); s.Exists() {
		out.Steps = s.Float()
	}
	if d := res.Get("duration"); d.Exists() {
		out.Duration = d.Float()
	}
	return out, nil
}

// CalculateMacros sends meal descriptions keyed by slot and returns today's totals.
func (c *Client) CalculateMacros(ctx context.Context, meals map[string]string) (models.Macros, error) {
	req := map[string]any{"meals": meals}
	body, err := c.do(ctx, "calculate_macros", http.MethodPost, "/daily-log/calculate-macros", nil, req)
	if err != nil {
		return models.Macros{}, err
	}

	res := gjson.ParseBytes(body)
	m := firstOf(res, "totals", "macros")
	if !m.IsObject() {
		m = res
	}
	return parseMacros(m), nil
}

// DailyLogs returns all of the user's daily logs in backend order.
func (c *Client) DailyLogs(ctx context.Context) ([]models.DailyLogEntry, error) {
	body, err := c.do(ctx, "daily_log", http.MethodGet, "/daily-log", nil, nil)
	if err != nil {
		return nil, err
	}
	return parseDailyLogs(body), nil
}

// TodaysMeals returns the meal descriptions logged today.
func (c *Client) TodaysMeals(ctx context.Context) ([]models.MealEntry, error) {
	body, err := c.do(ctx, "meals_today", http.MethodGet, "/meals/today", nil, nil)
	if err != nil {
		return nil, err
	}

	out := []models.MealEntry{}
	gjson.ParseBytes(body).ForEach(func(_, v gjson.Result) bool {
		out = append(out, models.MealEntry{
			MealType:    firstOf(v, "meal_type", "mealType").String(),
			Description: v.Get("description").String(),
		})
		return true
	})
	return out, nil
}

// SuggestDay asks the backend for a full day of meal descriptions keyed by slot.
func (c *Client) SuggestDay(ctx context.Context) (map[string]string, error) {
	body, err := c.do(ctx, "meals_suggest_day", http.MethodPost, "/meals/suggest-day", nil, map[string]any{})
	if err != nil {
		return nil, err
	}

	out := make(map[string]string)
	res := gjson.ParseBytes(body)
	if m := res.Get("meals"); m.IsObject() {
		res = m
	}
	res.ForEach(func(k, v gjson.Result) bool {
		if v.Type == gjson.String && v.String() != "" {
			out[k.String()] = v.String()
		}
		return true
	})
	return out, nil
}

package api

import (
	"context"
	"net/http"
	"net/url"

	"fittrack-bot/internal/models"
)

// MealPlan returns the plan for the week starting at weekStart (YYYY-MM-DD).
// A week without a plan yields nil and no error.
func (c *Client) MealPlan(ctx context.Context, weekStart string) (*models.MealPlan, error) {
	body, err := c.do(ctx, "meal_plan", http.MethodGet, "/meal-plans/"+url.PathEscape(weekStart), nil, nil)
	if err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return parseMealPlan(body), nil
}

// GenerateMealPlan lets the backend fill a plan for the week.
func (c *Client) GenerateMealPlan(ctx context.Context, weekStart string) (*models.MealPlan, error) {
	req := map[string]string{"weekStart": weekStart}
	body, err := c.do(ctx, "meal_plan_generate", http.MethodPost, "/meal-plans/generate", nil, req)
	if err != nil {
		return nil, err
	}
	return parseMealPlan(body), nil
}

// SaveMealPlan sends the whole plan document and returns the stored copy.
func (c *Client) SaveMealPlan(ctx context.Context, plan models.MealPlan) (*models.MealPlan, error) {
	body, err := c.do(ctx, "meal_plan_save", http.MethodPost, "/meal-plans", nil, plan)
	if err != nil {
		return nil, err
	}
	return parseMealPlan(body), nil
}

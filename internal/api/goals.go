package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"fittrack-bot/internal/models"
)

// Goals fetches the stored goal set. An empty body yields an empty set.
func (c *Client) Goals(ctx context.Context) (models.GoalSet, error) {
	body, err := c.do(ctx, "goals", http.MethodGet, "/goals", nil, nil)
	if err != nil {
		return models.GoalSet{}, err
	}
	return decodeGoals(body)
}

// UpdateGoals stores the full goal set and returns the server copy.
func (c *Client) UpdateGoals(ctx context.Context, g models.GoalSet) (models.GoalSet, error) {
	body, err := c.do(ctx, "goals_update", http.MethodPut, "/goals", nil, g)
	if err != nil {
		return models.GoalSet{}, err
	}
	return decodeGoals(body)
}

func decodeGoals(body []byte) (models.GoalSet, error) {
	var g models.GoalSet
	if len(body) == 0 || string(body) == "null" {
		return g, nil
	}
	if err := json.Unmarshal(body, &g); err != nil {
		return models.GoalSet{}, fmt.Errorf("decode goals: %w", err)
	}
	return g, nil
}

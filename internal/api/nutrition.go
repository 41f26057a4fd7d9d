package api

import (
	"context"
	"net/http"

	"github.com/tidwall/gjson"

	"fittrack-bot/internal/models"
)

// FoodFacts is one food line of a nutrition lookup.
type FoodFacts struct {
	Name    string
	Serving string
	Macros  models.Macros
}

type NutritionAnalysis struct {
	Foods  []FoodFacts
	Totals models.Macros
}

// AnalyzeNutrition looks up the macros of a free-text food query. Totals come
// from the response when present, otherwise they are summed over the foods.
func (c *Client) AnalyzeNutrition(ctx context.Context, query string) (NutritionAnalysis, error) {
	req := map[string]string{"query": query}
	body, err := c.do(ctx, "nutrition_analyze", http.MethodPost, "/nutritionix/analyze", nil, req)
	if err != nil {
		return NutritionAnalysis{}, err
	}

	res := gjson.ParseBytes(body)
	out := NutritionAnalysis{Foods: []FoodFacts{}}
	var sum models.Macros
	res.Get("foods").ForEach(func(_, f gjson.Result) bool {
		facts := FoodFacts{
			Name:   firstOf(f, "food_name", "name").String(),
			Macros: foodMacros(f),
		}
		if q := f.Get("serving_qty"); q.Exists() {
			facts.Serving = q.String() + " " + f.Get("serving_unit").String()
		}
		out.Foods = append(out.Foods, facts)
		sum = sum.Add(facts.Macros)
		return true
	})

	if t := res.Get("totals"); t.IsObject() {
		out.Totals = parseMacros(t)
	} else {
		out.Totals = sum
	}
	return out, nil
}

// foodMacros reads Nutritionix nf_* fields, falling back to plain names.
func foodMacros(f gjson.Result) models.Macros {
	if f.Get("nf_calories").Exists() {
		return models.Macros{
			Calories: f.Get("nf_calories").Float(),
			Protein:  f.Get("nf_protein").Float(),
			Carbs:    f.Get("nf_total_carbohydrate").Float(),
			Fat:      f.Get("nf_total_fat").Float(),
			Fiber:    f.Get("nf_dietary_fiber").Float(),
		}
	}
	return parseMacros(f)
}

// SuggestMeal asks the backend AI for a meal idea built from pantry items.
func (c *Client) SuggestMeal(ctx context.Context, r models.AIMealRequest) (models.MealSuggestion, error) {
	if r.Pantry == nil {
		r.Pantry = []models.PantryIngredient{}
	}
	body, err := c.do(ctx, "ai_meal_suggest", http.MethodPost, "/ai/meal-suggest", nil, r)
	if err != nil {
		return models.MealSuggestion{}, err
	}

	res := gjson.ParseBytes(body)
	if s := res.Get("suggestion"); s.IsObject() {
		res = s
	}
	return models.MealSuggestion{
		Name:        firstOf(res, "name", "title").String(),
		Ingredients: stringList(res.Get("ingredients")),
		Steps:       stringList(firstOf(res, "steps", "instructions")),
		Macros:      parseMacros(firstOf(res, "macros", "nutrition")),
	}, nil
}

package bot

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"fittrack-bot/internal/api"
	"fittrack-bot/internal/dashboard"
	"fittrack-bot/internal/goals"
	"fittrack-bot/internal/models"
	"fittrack-bot/internal/store"
	"fittrack-bot/internal/trends"
)

func TestFmtNum(t *testing.T) {
	assert.Equal(t, "80", fmtNum(80))
	assert.Equal(t, "80.5", fmtNum(80.5))
	assert.Equal(t, "n/a", fmtNum(math.NaN()))
	assert.Equal(t, "+1.2", fmtSigned(1.2))
	assert.Equal(t, "-0.4", fmtSigned(-0.4))
}

func TestRenderToday(t *testing.T) {
	out := renderToday(dashboard.TodayView{Date: "2024-01-10", Meals: map[string]string{}})
	assert.Contains(t, out, "Nothing logged yet.")

	out = renderToday(dashboard.TodayView{
		Date: "2024-01-10",
		Entry: &models.DailyLogEntry{
			Date:   "2024-01-10",
			Weight: &models.Weight{Value: 80.2, MeasuredAt: "morning"},
			Totals: &models.Macros{Calories: 1500},
		},
		Meals:    map[string]string{"dinner": "fish", "breakfast": "oats"},
		HasMeals: true,
	})
	assert.Contains(t, out, "80.2 kg (morning)")
	assert.Contains(t, out, "1500 kcal")
	assert.Less(t, strings.Index(out, "breakfast"), strings.Index(out, "dinner"))
}

func TestRenderLogBookLimit(t *testing.T) {
	logs := []models.DailyLogEntry{{Date: "2024-01-03"}, {Date: "2024-01-02"}, {Date: "2024-01-01"}}
	out := renderLogBook(logs, 2)
	assert.Contains(t, out, "2024-01-03")
	assert.NotContains(t, out, "2024-01-01")
	assert.Equal(t, "Your log book is empty.", renderLogBook(nil, 7))
}

func TestRenderTrends(t *testing.T) {
	logs := []models.DailyLogEntry{
		{Date: "2024-01-01", Weight: &models.Weight{Value: 80}, Totals: &models.Macros{Calories: 2000, Protein: 100, Carbs: 200, Fat: 50}},
		{Date: "2024-01-02", Weight: &models.Weight{Value: 79}, Totals: &models.Macros{Calories: 2000, Protein: 100, Carbs: 200, Fat: 50}},
	}
	s := trends.BuildSeries(logs, trends.RangeAll)
	g := goals.Defaults()
	v := dashboard.TrendsView{
		Range:   trends.RangeAll,
		Series:  s,
		Summary: trends.Summarize(s),
		Bands:   map[models.MacroKey]trends.Band{models.MacroCalories: trends.GoalBand(g, models.MacroCalories)},
		Streaks: trends.WeeklyStreaks(s, g),
	}

	out := renderTrends(v)
	assert.Contains(t, out, "Weight change: -1 kg")
	assert.Contains(t, out, "Avg calories: 2000 kcal")
	// 400 + 800 + 450 kcal
	assert.Contains(t, out, "protein 24% · carbs 48% · fat 27%")
	assert.Contains(t, out, "calories: 2000 kcal (goal 1800–2200)")
	assert.Contains(t, out, "calories in range 2/5 days")

	empty := renderTrends(dashboard.TrendsView{Range: trends.Range7D})
	assert.Contains(t, empty, "No logs in this range yet.")
}

func TestRenderGoals(t *testing.T) {
	g := goals.Defaults()
	out := renderGoals(store.GoalState{Server: g, Draft: g, Dirty: true})
	assert.Contains(t, out, "unsaved changes")
	assert.Contains(t, out, "Steps: 8000–12000 steps")
	assert.Contains(t, out, "Workout: gym, 45 min")
	assert.Contains(t, out, "Water: 2.5–3 L")
	assert.Contains(t, out, "Streaks: steps 5 days/week")
}

func TestRenderPlanOrdersMeals(t *testing.T) {
	plan := &models.MealPlan{
		WeekStart: "2024-01-01",
		Meals: []models.PlannedMeal{
			{Date: "2024-01-02", MealType: models.MealDinner, Name: "Pasta"},
			{Date: "2024-01-01", MealType: models.MealLunch, Name: "Soup"},
			{Date: "2024-01-02", MealType: models.MealBreakfast, Name: "Oats"},
		},
	}
	out := renderPlan("2024-01-01", plan)
	assert.Less(t, strings.Index(out, "Soup"), strings.Index(out, "Oats"))
	assert.Less(t, strings.Index(out, "Oats"), strings.Index(out, "Pasta"))

	assert.Contains(t, renderPlan("2024-01-08", nil), "No meals planned for the week of 2024-01-08")
}

func TestRenderNutrition(t *testing.T) {
	out := renderNutrition(api.NutritionAnalysis{
		Foods:  []api.FoodFacts{{Name: "egg", Serving: "2 large", Macros: models.Macros{Calories: 143}}},
		Totals: models.Macros{Calories: 143, Protein: 12.6},
	})
	assert.Contains(t, out, "egg (2 large): 143 kcal")
	assert.Contains(t, out, "P 12.6g")
}

package bot

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"fittrack-bot/internal/api"
	"fittrack-bot/internal/dashboard"
	"fittrack-bot/internal/models"
	"fittrack-bot/internal/store"
	"fittrack-bot/internal/suggest"
)

func fmtNum(v float64) string {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return "n/a"
	case v == math.Trunc(v):
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}

func fmtSigned(v float64) string {
	if v > 0 {
		return "+" + fmtNum(v)
	}
	return fmtNum(v)
}

func fmtBound(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmtNum(*v)
}

func fmtRange(r *models.Range, unit string) string {
	if r == nil {
		return "not set"
	}
	return fmt.Sprintf("%s–%s %s", fmtBound(r.Min), fmtBound(r.Max), unit)
}

func renderMacros(m models.Macros) string {
	return fmt.Sprintf("🔥 %s kcal · P %sg · C %sg · F %sg · Fib %sg",
		fmtNum(m.Calories), fmtNum(m.Protein), fmtNum(m.Carbs), fmtNum(m.Fat), fmtNum(m.Fiber))
}

func renderToday(v dashboard.TodayView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📅 Today (%s)\n", v.Date)

	if v.Entry == nil {
		b.WriteString("Nothing logged yet.\n")
	} else {
		if w := v.Entry.Weight; w != nil {
			fmt.Fprintf(&b, "⚖️ %s kg", fmtNum(w.Value))
			if w.MeasuredAt != "" {
				fmt.Fprintf(&b, " (%s)", w.MeasuredAt)
			}
			b.WriteString("\n")
		}
		if a := v.Entry.Activity; a != nil {
			fmt.Fprintf(&b, "🏃 %s: %s steps, %s min\n", a.Type, fmtNum(a.Steps), fmtNum(a.Duration))
		}
		if m := v.Entry.Totals; m != nil {
			b.WriteString(renderMacros(*m) + "\n")
		}
	}

	if v.HasMeals {
		b.WriteString("\n🍽 Meals\n")
		for _, slot := range models.MealSlots {
			if d, ok := v.Meals[slot]; ok {
				fmt.Fprintf(&b, "• %s: %s\n", slot, d)
			}
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderLogBook(logs []models.DailyLogEntry, limit int) string {
	if len(logs) == 0 {
		return "Your log book is empty."
	}
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}

	var b strings.Builder
	b.WriteString("📒 Log book\n")
	for _, e := range logs {
		fmt.Fprintf(&b, "\n%s", e.Date)
		if e.Weight != nil {
			fmt.Fprintf(&b, " · %s kg", fmtNum(e.Weight.Value))
		}
		if e.Activity != nil && e.Activity.Type != "" {
			fmt.Fprintf(&b, " · %s (%s steps, %s min)", e.Activity.Type, fmtNum(e.Activity.Steps), fmtNum(e.Activity.Duration))
		}
		if e.Totals != nil {
			fmt.Fprintf(&b, " · %s kcal", fmtNum(e.Totals.Calories))
		}
	}
	return b.String()
}

func renderTrends(v dashboard.TrendsView) string {
	s := v.Summary
	if s.Days == 0 {
		return fmt.Sprintf("📈 Trends (%s)\nNo logs in this range yet.", v.Range)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📈 Trends (%s, %d days)\n", v.Range, s.Days)
	fmt.Fprintf(&b, "Weight change: %s kg\n", fmtSigned(s.WeightDelta))
	if n := len(v.Series.WeightMA); n > 0 {
		fmt.Fprintf(&b, "Weight 7-day avg: %s kg\n", fmtNum(v.Series.WeightMA[n-1]))
	}
	fmt.Fprintf(&b, "Avg calories: %s kcal\n", fmtNum(s.AvgCalories))
	fmt.Fprintf(&b, "Avg active: %s min\n", fmtNum(s.AvgActiveMinutes))
	fmt.Fprintf(&b, "Avg steps: %s\n", fmtNum(s.AvgSteps))

	if total := s.EnergySplit.Total(); total > 0 {
		fmt.Fprintf(&b, "\nEnergy split: protein %s%% · carbs %s%% · fat %s%%\n",
			fmtNum(math.Round(s.EnergySplit.Protein/total*100)),
			fmtNum(math.Round(s.EnergySplit.Carbs/total*100)),
			fmtNum(math.Round(s.EnergySplit.Fat/total*100)))
	}

	b.WriteString("\nMacros vs goal\n")
	for _, k := range models.MacroKeys {
		band := v.Bands[k]
		fmt.Fprintf(&b, "• %s: %s %s (goal %s–%s)\n",
			k, fmtNum(s.MacroAvg.Get(k)), k.Unit(), fmtBound(band.Min), fmtBound(band.Max))
	}

	st := v.Streaks
	fmt.Fprintf(&b, "\nThis week: steps goal met %d/%d days, calories in range %d/%d days",
		st.StepsDays, st.StepsTarget, st.CaloriesWithinDays, st.CaloriesWithinTarget)
	return b.String()
}

func renderGoals(st store.GoalState) string {
	g := st.Draft

	var b strings.Builder
	b.WriteString("🎯 Goals")
	if st.Dirty {
		b.WriteString(" (unsaved changes, /savegoals to keep them)")
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "Steps: %s\n", fmtRange(g.Steps, "steps"))
	if w := g.Workout; w != nil {
		unit := "min"
		if w.Mode == models.WorkoutModeCalories {
			unit = "kcal"
		}
		fmt.Fprintf(&b, "Workout: %s, %s %s\n", w.Type, fmtBound(w.Target), unit)
	}
	for _, k := range models.MacroKeys {
		fmt.Fprintf(&b, "%s: %s\n", k, fmtRange(g.MacroBand(k), k.Unit()))
	}
	if g.CurrentWeight != nil || g.GoalWeight != nil {
		fmt.Fprintf(&b, "Weight: %s → %s kg", fmtBound(g.CurrentWeight), fmtBound(g.GoalWeight))
		if g.TargetDate != nil {
			fmt.Fprintf(&b, " by %s", *g.TargetDate)
		}
		b.WriteString("\n")
	}
	if nw := g.NonWeight; nw != nil {
		fmt.Fprintf(&b, "Sleep: %s\n", fmtRange(nw.SleepHours, "h"))
		fmt.Fprintf(&b, "Water: %s\n", fmtRange(nw.WaterLiters, "L"))
	}
	if s := g.Streaks; s != nil {
		fmt.Fprintf(&b, "Streaks: steps %s days/week, calories %s days/week\n",
			fmtInt(s.StepsDaysPerWeekMin), fmtInt(s.CaloriesWithinGoalDaysPerWeekMin))
	}
	return strings.TrimRight(b.String(), "\n")
}

func fmtInt(v *int) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *v)
}

func renderSuggestions(list []suggest.Suggestion) string {
	if len(list) == 0 {
		return "👍 Your goals match your recent averages. Nothing to adjust."
	}
	var b strings.Builder
	b.WriteString("💡 Suggestions\n")
	for _, s := range list {
		fmt.Fprintf(&b, "\n• %s\n  /apply %s", s.Message, s.Key)
	}
	return b.String()
}

func renderPantry(p models.Pantry) string {
	var b strings.Builder
	b.WriteString("🧺 Pantry\n\nIn stock:\n")
	writeItems(&b, p.InStock)
	b.WriteString("\nTo buy:\n")
	writeItems(&b, p.ToBuy)
	return strings.TrimRight(b.String(), "\n")
}

func writeItems(b *strings.Builder, items []models.PantryItem) {
	if len(items) == 0 {
		b.WriteString("  (empty)\n")
		return
	}
	for _, it := range items {
		fmt.Fprintf(b, "• %s", it.Name)
		if it.Qty > 0 {
			fmt.Fprintf(b, " (%s %s)", fmtNum(it.Qty), it.Unit)
		}
		fmt.Fprintf(b, " [%s]\n", it.ID)
	}
}

func renderPlan(weekStart string, plan *models.MealPlan) string {
	if plan == nil || len(plan.Meals) == 0 {
		return fmt.Sprintf("🗓 No meals planned for the week of %s yet. Try /plangen or /planadd.", weekStart)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🗓 Week of %s\n", plan.WeekStart)
	day := ""
	for _, m := range sortedMeals(plan.Meals) {
		if m.Date != day {
			day = m.Date
			fmt.Fprintf(&b, "\n%s\n", day)
		}
		fmt.Fprintf(&b, "• %s: %s", m.MealType, m.Name)
		if m.Macros.Calories > 0 {
			fmt.Fprintf(&b, " (%s kcal)", fmtNum(m.Macros.Calories))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// sortedMeals orders by date and then by the usual meal order of a day.
func sortedMeals(meals []models.PlannedMeal) []models.PlannedMeal {
	order := make(map[models.MealType]int, len(models.MealTypes))
	for i, t := range models.MealTypes {
		order[t] = i
	}
	out := make([]models.PlannedMeal, len(meals))
	copy(out, meals)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return order[out[i].MealType] < order[out[j].MealType]
	})
	return out
}

func renderMealIdea(s models.MealSuggestion) string {
	if s.Name == "" {
		return "🤔 No idea this time. Try again with more items in stock."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🍳 %s\n", s.Name)
	if len(s.Ingredients) > 0 {
		b.WriteString("\nIngredients:\n")
		for _, it := range s.Ingredients {
			fmt.Fprintf(&b, "• %s\n", it)
		}
	}
	if len(s.Steps) > 0 {
		b.WriteString("\nSteps:\n")
		for i, st := range s.Steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, st)
		}
	}
	if s.Macros.Calories > 0 {
		b.WriteString("\n" + renderMacros(s.Macros))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderDay(day map[string]string) string {
	if len(day) == 0 {
		return "🤔 No suggestion for today."
	}
	var b strings.Builder
	b.WriteString("✨ Suggested for today\n")
	for _, slot := range models.MealSlots {
		if d, ok := day[slot]; ok {
			fmt.Fprintf(&b, "• %s: %s\n", slot, d)
		}
	}
	if d, ok := day["snack"]; ok {
		fmt.Fprintf(&b, "• snack: %s\n", d)
	}
	b.WriteString("\nLog them with /meals.")
	return b.String()
}

func renderNutrition(a api.NutritionAnalysis) string {
	if len(a.Foods) == 0 {
		return "🤷 No foods recognised."
	}
	var b strings.Builder
	for _, f := range a.Foods {
		fmt.Fprintf(&b, "• %s", f.Name)
		if f.Serving != "" {
			fmt.Fprintf(&b, " (%s)", f.Serving)
		}
		fmt.Fprintf(&b, ": %s kcal\n", fmtNum(f.Macros.Calories))
	}
	b.WriteString("\nTotal: " + renderMacros(a.Totals))
	return b.String()
}

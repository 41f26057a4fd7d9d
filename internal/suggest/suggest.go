// Package suggest proposes small goal adjustments from recent averages.
package suggest

import (
	"fmt"
	"math"

	"fittrack-bot/internal/goals"
	"fittrack-bot/internal/models"
	"fittrack-bot/internal/trends"
)

// MaxSuggestions caps how many nudges are offered at once.
const MaxSuggestions = 4

const (
	calorieTolerance = 100
	calorieStep      = 100
	calorieFloor     = 100
	proteinTolerance = 10
	proteinStep      = 10
	stepsTolerance   = 1000
	stepsStep        = 1000
)

const (
	KeyCaloriesDown = "calories-down"
	KeyCaloriesUp   = "calories-up"
	KeyProteinUp    = "protein-up"
	KeyStepsUp      = "steps-up"
	KeyStepsDown    = "steps-down"
)

// Averages are the recent daily averages the engine compares against.
type Averages struct {
	Calories float64
	Protein  float64
	Steps    float64
}

// FromSummary picks the engine inputs out of a trends summary.
func FromSummary(s trends.Summary) Averages {
	return Averages{
		Calories: s.MacroAvg.Calories,
		Protein:  s.MacroAvg.Protein,
		Steps:    s.AvgSteps,
	}
}

// Suggestion is one proposed change. Patch holds absolute target values, so
// applying the same suggestion twice gives the same goal set.
type Suggestion struct {
	Key     string
	Message string
	Patch   goals.Patch
}

// Apply merges the suggestion into draft and returns the new draft.
func (s Suggestion) Apply(draft models.GoalSet) (models.GoalSet, error) {
	return goals.Apply(draft, s.Patch)
}

// Compute returns the suggestions for avg against draft. The result is a
// snapshot: applying one suggestion does not change the others.
func Compute(avg Averages, draft models.GoalSet) []Suggestion {
	var out []Suggestion

	if cal := draft.MacroBand(models.MacroCalories); cal != nil {
		if isSet(cal.Max) && avg.Calories > *cal.Max+calorieTolerance {
			newMax := math.Max(calorieFloor, *cal.Max-calorieStep)
			out = append(out, Suggestion{
				Key: KeyCaloriesDown,
				Message: fmt.Sprintf("You're averaging %s kcal; your max is %s. Reduce calorie max by %d?",
					num(avg.Calories), num(*cal.Max), calorieStep),
				Patch: macroPatch(models.MacroCalories, withMax(cal, newMax)),
			})
		}
		if isSet(cal.Min) && avg.Calories < *cal.Min-calorieTolerance {
			newMin := *cal.Min + calorieStep
			out = append(out, Suggestion{
				Key: KeyCaloriesUp,
				Message: fmt.Sprintf("You're averaging %s kcal; your min is %s. Increase calorie min by %d?",
					num(avg.Calories), num(*cal.Min), calorieStep),
				Patch: macroPatch(models.MacroCalories, withMin(cal, newMin)),
			})
		}
	}

	if prot := draft.MacroBand(models.MacroProtein); prot != nil {
		if isSet(prot.Min) && avg.Protein < *prot.Min-proteinTolerance {
			newMin := *prot.Min + proteinStep
			out = append(out, Suggestion{
				Key: KeyProteinUp,
				Message: fmt.Sprintf("Avg protein %sg; min is %sg. Increase protein min by %dg?",
					num(avg.Protein), num(*prot.Min), proteinStep),
				Patch: macroPatch(models.MacroProtein, withMin(prot, newMin)),
			})
		}
	}

	if st := draft.Steps; st != nil {
		if isSet(st.Max) && avg.Steps > *st.Max+stepsTolerance {
			newMax := *st.Max + stepsStep
			out = append(out, Suggestion{
				Key: KeyStepsUp,
				Message: fmt.Sprintf("Avg steps %s; max is %s. Increase steps max by %d?",
					num(avg.Steps), num(*st.Max), stepsStep),
				Patch: goals.Patch{Steps: ptr(withMax(st, newMax))},
			})
		}
		if isSet(st.Min) && avg.Steps < *st.Min-stepsTolerance {
			newMin := math.Max(0, *st.Min-stepsStep)
			out = append(out, Suggestion{
				Key: KeyStepsDown,
				Message: fmt.Sprintf("Avg steps %s; min is %s. Decrease steps min by %d?",
					num(avg.Steps), num(*st.Min), stepsStep),
				Patch: goals.Patch{Steps: ptr(withMin(st, newMin))},
			})
		}
	}

	applicable := out[:0]
	for _, s := range out {
		if _, err := s.Apply(draft); err == nil {
			applicable = append(applicable, s)
		}
	}
	if len(applicable) > MaxSuggestions {
		applicable = applicable[:MaxSuggestions]
	}
	return applicable
}

// withMax sets max and moves min down to it when the band would invert.
func withMax(r *models.Range, newMax float64) goals.RangePatch {
	rp := goals.RangePatch{Max: &newMax}
	if r.Min != nil && *r.Min > newMax {
		rp.Min = &newMax
	}
	return rp
}

// withMin sets min and moves max up to it when the band would invert.
func withMin(r *models.Range, newMin float64) goals.RangePatch {
	rp := goals.RangePatch{Min: &newMin}
	if r.Max != nil && *r.Max < newMin {
		rp.Max = &newMin
	}
	return rp
}

func ptr(rp goals.RangePatch) *goals.RangePatch { return &rp }

func macroPatch(key models.MacroKey, rp goals.RangePatch) goals.Patch {
	return goals.Patch{Macros: map[models.MacroKey]goals.RangePatch{key: rp}}
}

// isSet treats a zero bound like an unset one.
func isSet(v *float64) bool {
	return v != nil && *v != 0
}

func num(v float64) string {
	return fmt.Sprintf("%g", math.Round(v*10)/10)
}

package trends

import (
	"math"

	"fittrack-bot/internal/models"
)

// Series holds one value per day, aligned with Dates.
type Series struct {
	Dates  []string
	Labels []string

	Steps    []float64
	Minutes  []float64
	Weight   []float64 // NaN where no weight was logged
	WeightMA []float64

	Calories []float64
	Protein  []float64
	Carbs    []float64
	Fat      []float64
	Fiber    []float64
}

// Len returns the number of days in the series.
func (s Series) Len() int { return len(s.Dates) }

// Macro returns the series for key.
func (s Series) Macro(key models.MacroKey) []float64 {
	switch key {
	case models.MacroCalories:
		return s.Calories
	case models.MacroProtein:
		return s.Protein
	case models.MacroCarbs:
		return s.Carbs
	case models.MacroFat:
		return s.Fat
	case models.MacroFiber:
		return s.Fiber
	}
	return nil
}

// BuildSeries sorts logs by date, clamps to r and extracts every metric.
// The weight moving average is computed over the clamped weights.
func BuildSeries(logs []models.DailyLogEntry, r Range) Series {
	sorted := Clamp(SortByDate(logs), r)
	n := len(sorted)

	s := Series{
		Dates:    make([]string, n),
		Labels:   make([]string, n),
		Steps:    make([]float64, n),
		Minutes:  make([]float64, n),
		Weight:   make([]float64, n),
		Calories: make([]float64, n),
		Protein:  make([]float64, n),
		Carbs:    make([]float64, n),
		Fat:      make([]float64, n),
		Fiber:    make([]float64, n),
	}
	for i, e := range sorted {
		s.Dates[i] = e.Date
		s.Labels[i] = ShortLabel(e.Date)
		s.Weight[i] = math.NaN()
		if e.Weight != nil {
			s.Weight[i] = e.Weight.Value
		}
		if e.Activity != nil {
			s.Steps[i] = e.Activity.Steps
			s.Minutes[i] = e.Activity.Duration
		}
		if e.Totals != nil {
			s.Calories[i] = e.Totals.Calories
			s.Protein[i] = e.Totals.Protein
			s.Carbs[i] = e.Totals.Carbs
			s.Fat[i] = e.Totals.Fat
			s.Fiber[i] = e.Totals.Fiber
		}
	}
	s.WeightMA = MovingAverage(s.Weight, MovingAverageWindow)
	return s
}

// Summary is the KPI strip for a series.
type Summary struct {
	Days             int
	WeightDelta      float64
	AvgCalories      float64 // rounded
	AvgActiveMinutes float64 // rounded
	AvgSteps         float64 // rounded
	MacroAvg         models.Macros
	EnergySplit      EnergySplit
}

func Summarize(s Series) Summary {
	protein := Average(s.Protein)
	carbs := Average(s.Carbs)
	fat := Average(s.Fat)

	return Summary{
		Days:             s.Len(),
		WeightDelta:      WeightDelta(s.Weight),
		AvgCalories:      math.Round(Average(s.Calories)),
		AvgActiveMinutes: math.Round(Average(s.Minutes)),
		AvgSteps:         math.Round(Average(s.Steps)),
		MacroAvg: models.Macros{
			Calories: math.Round(Average(s.Calories)),
			Protein:  math.Round(protein),
			Carbs:    math.Round(carbs),
			Fat:      math.Round(fat),
			Fiber:    math.Round(Average(s.Fiber)),
		},
		EnergySplit: MacroEnergySplit(protein, carbs, fat),
	}
}

// Band is a goal band with its midpoint for reference lines.
type Band struct {
	Min *float64
	Max *float64
	Mid *float64
}

// GoalBand returns the band for a macro. Mid is the rounded midpoint when both
// bounds are set, otherwise whichever bound exists.
func GoalBand(g models.GoalSet, key models.MacroKey) Band {
	r := g.MacroBand(key)
	if r == nil {
		return Band{}
	}
	b := Band{Min: r.Min, Max: r.Max}
	switch {
	case r.Min != nil && r.Max != nil:
		mid := math.Round((*r.Min + *r.Max) / 2)
		b.Mid = &mid
	case r.Max != nil:
		b.Mid = r.Max
	case r.Min != nil:
		b.Mid = r.Min
	}
	return b
}

// StreakProgress counts, over the last seven entries of s, the days that met
// the steps minimum and the days whose calories sat inside the calorie band.
type StreakProgress struct {
	StepsDays            int
	StepsTarget          int
	CaloriesWithinDays   int
	CaloriesWithinTarget int
}

func WeeklyStreaks(s Series, g models.GoalSet) StreakProgress {
	steps := Clamp(s.Steps, Range7D)
	calories := Clamp(s.Calories, Range7D)

	var p StreakProgress
	if g.Streaks != nil {
		if g.Streaks.StepsDaysPerWeekMin != nil {
			p.StepsTarget = *g.Streaks.StepsDaysPerWeekMin
		}
		if g.Streaks.CaloriesWithinGoalDaysPerWeekMin != nil {
			p.CaloriesWithinTarget = *g.Streaks.CaloriesWithinGoalDaysPerWeekMin
		}
	}

	if g.Steps != nil && g.Steps.Min != nil {
		for _, v := range steps {
			if v >= *g.Steps.Min {
				p.StepsDays++
			}
		}
	}
	if band := g.MacroBand(models.MacroCalories); band != nil && (band.Min != nil || band.Max != nil) {
		for _, v := range calories {
			if v == 0 {
				// nothing logged that day
				continue
			}
			if band.Min != nil && v < *band.Min {
				continue
			}
			if band.Max != nil && v > *band.Max {
				continue
			}
			p.CaloriesWithinDays++
		}
	}
	return p
}

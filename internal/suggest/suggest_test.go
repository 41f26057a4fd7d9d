package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fittrack-bot/internal/models"
	"fittrack-bot/internal/trends"
)

func band(min, max float64) *models.Range {
	return &models.Range{Min: models.Float(min), Max: models.Float(max)}
}

func keys(ss []Suggestion) []string {
	var out []string
	for _, s := range ss {
		out = append(out, s.Key)
	}
	return out
}

func TestCompute_CaloriesOverMax(t *testing.T) {
	draft := models.GoalSet{Macros: &models.MacroGoals{Calories: band(1800, 2200)}}

	ss := Compute(Averages{Calories: 2350}, draft)
	require.Len(t, ss, 1)
	assert.Equal(t, KeyCaloriesDown, ss[0].Key)
	assert.Contains(t, ss[0].Message, "Reduce calorie max by 100")

	out, err := ss[0].Apply(draft)
	require.NoError(t, err)
	assert.Equal(t, 2100.0, *out.Macros.Calories.Max)
	assert.Equal(t, 1800.0, *out.Macros.Calories.Min)

	// idempotent
	again, err := ss[0].Apply(out)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestCompute_CalorieMaxFloor(t *testing.T) {
	draft := models.GoalSet{Macros: &models.MacroGoals{Calories: &models.Range{Max: models.Float(150)}}}

	ss := Compute(Averages{Calories: 400}, draft)
	require.Len(t, ss, 1)
	out, err := ss[0].Apply(draft)
	require.NoError(t, err)
	assert.Equal(t, 100.0, *out.Macros.Calories.Max)
}

func TestCompute_ThresholdsAreStrict(t *testing.T) {
	draft := models.GoalSet{
		Steps:  band(8000, 12000),
		Macros: &models.MacroGoals{Calories: band(1800, 2200), Protein: band(110, 150)},
	}

	// exactly on the tolerance edge: nothing fires
	assert.Empty(t, Compute(Averages{Calories: 2300, Protein: 100, Steps: 13000}, draft))
	assert.Empty(t, Compute(Averages{Calories: 1700, Protein: 100, Steps: 7000}, draft))
}

func TestCompute_BelowMinimums(t *testing.T) {
	draft := models.GoalSet{
		Steps:  band(10000, 15000),
		Macros: &models.MacroGoals{Calories: band(1800, 2200), Protein: band(110, 150)},
	}

	ss := Compute(Averages{Calories: 1600, Protein: 90, Steps: 8500}, draft)
	assert.Equal(t, []string{KeyCaloriesUp, KeyProteinUp, KeyStepsDown}, keys(ss))

	out, err := ss[0].Apply(draft)
	require.NoError(t, err)
	assert.Equal(t, 1900.0, *out.Macros.Calories.Min)

	out, err = ss[1].Apply(draft)
	require.NoError(t, err)
	assert.Equal(t, 120.0, *out.Macros.Protein.Min)

	out, err = ss[2].Apply(draft)
	require.NoError(t, err)
	assert.Equal(t, 9000.0, *out.Steps.Min)
	assert.Equal(t, 15000.0, *out.Steps.Max)
}

func TestCompute_StepsMinFloor(t *testing.T) {
	draft := models.GoalSet{Steps: &models.Range{Min: models.Float(500)}}

	ss := Compute(Averages{Steps: -600}, draft)
	require.Len(t, ss, 1)
	out, err := ss[0].Apply(draft)
	require.NoError(t, err)
	assert.Equal(t, 0.0, *out.Steps.Min)
}

func TestCompute_StepsOverMax(t *testing.T) {
	draft := models.GoalSet{Steps: band(8000, 12000)}

	ss := Compute(Averages{Steps: 14000}, draft)
	require.Len(t, ss, 1)
	assert.Equal(t, KeyStepsUp, ss[0].Key)
	out, err := ss[0].Apply(draft)
	require.NoError(t, err)
	assert.Equal(t, 13000.0, *out.Steps.Max)
}

func TestCompute_SnapshotIndependence(t *testing.T) {
	draft := models.GoalSet{
		Steps:  band(10000, 15000),
		Macros: &models.MacroGoals{Calories: band(1800, 2200), Protein: band(110, 150)},
	}
	ss := Compute(Averages{Calories: 1600, Protein: 90, Steps: 8500}, draft)
	require.Len(t, ss, 3)

	// applying them in sequence keeps every precondition snapshot valid
	cur := draft
	for _, s := range ss {
		var err error
		cur, err = s.Apply(cur)
		require.NoError(t, err)
	}
	assert.Equal(t, 1900.0, *cur.Macros.Calories.Min)
	assert.Equal(t, 120.0, *cur.Macros.Protein.Min)
	assert.Equal(t, 9000.0, *cur.Steps.Min)
}

func TestCompute_UnsetOrZeroBoundsIgnored(t *testing.T) {
	draft := models.GoalSet{
		Steps:  &models.Range{Min: models.Float(0)},
		Macros: &models.MacroGoals{Calories: &models.Range{}},
	}
	assert.Empty(t, Compute(Averages{Calories: 5000, Steps: 0}, draft))
	assert.Empty(t, Compute(Averages{Calories: 5000}, models.GoalSet{}))
}

func TestCompute_AtMostFour(t *testing.T) {
	// inverted bands make both calorie rules fire at once
	draft := models.GoalSet{
		Steps: &models.Range{Min: models.Float(20000), Max: models.Float(1000)},
		Macros: &models.MacroGoals{
			Calories: &models.Range{Min: models.Float(3000), Max: models.Float(1000)},
			Protein:  &models.Range{Min: models.Float(200)},
		},
	}

	ss := Compute(Averages{Calories: 2000, Protein: 10, Steps: 5000}, draft)
	assert.Len(t, ss, MaxSuggestions)
	assert.Equal(t, []string{KeyCaloriesDown, KeyCaloriesUp, KeyProteinUp, KeyStepsUp}, keys(ss))
}

func TestFromSummary(t *testing.T) {
	avg := FromSummary(trends.Summary{AvgSteps: 9000, MacroAvg: models.Macros{Calories: 2100, Protein: 120}})
	assert.Equal(t, Averages{Calories: 2100, Protein: 120, Steps: 9000}, avg)
}

func TestCompute_NarrowBandsStayApplicable(t *testing.T) {
	tests := []struct {
		name    string
		draft   models.GoalSet
		avg     Averages
		key     string
		wantMin float64
		wantMax float64
		band    func(models.GoalSet) *models.Range
	}{
		{
			name:    "calories down drags min",
			draft:   models.GoalSet{Macros: &models.MacroGoals{Calories: band(1800, 1850)}},
			avg:     Averages{Calories: 2000},
			key:     KeyCaloriesDown,
			wantMin: 1750, wantMax: 1750,
			band: func(g models.GoalSet) *models.Range { return g.Macros.Calories },
		},
		{
			name:    "calories up pushes max",
			draft:   models.GoalSet{Macros: &models.MacroGoals{Calories: band(1800, 1850)}},
			avg:     Averages{Calories: 1600},
			key:     KeyCaloriesUp,
			wantMin: 1900, wantMax: 1900,
			band: func(g models.GoalSet) *models.Range { return g.Macros.Calories },
		},
		{
			name:    "protein up pushes max",
			draft:   models.GoalSet{Macros: &models.MacroGoals{Protein: band(110, 115)}},
			avg:     Averages{Protein: 90},
			key:     KeyProteinUp,
			wantMin: 120, wantMax: 120,
			band: func(g models.GoalSet) *models.Range { return g.Macros.Protein },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ss := Compute(tt.avg, tt.draft)
			require.Equal(t, []string{tt.key}, keys(ss))

			out, err := ss[0].Apply(tt.draft)
			require.NoError(t, err)
			assert.Equal(t, tt.wantMin, *tt.band(out).Min)
			assert.Equal(t, tt.wantMax, *tt.band(out).Max)
		})
	}
}

func TestCompute_UnrelatedInvalidBandDoesNotBlock(t *testing.T) {
	draft := models.GoalSet{
		Steps:  band(8000, 12000),
		Macros: &models.MacroGoals{Fat: band(90, 80)},
	}

	ss := Compute(Averages{Steps: 5000}, draft)
	require.Equal(t, []string{KeyStepsDown}, keys(ss))

	out, err := ss[0].Apply(draft)
	require.NoError(t, err)
	assert.Equal(t, 7000.0, *out.Steps.Min)
	assert.Equal(t, 90.0, *out.Macros.Fat.Min)
}

func TestCompute_EveryEmittedSuggestionApplies(t *testing.T) {
	draft := models.GoalSet{
		Steps: band(3000, 3200),
		Macros: &models.MacroGoals{
			Calories: band(1500, 1550),
			Protein:  band(150, 155),
			Fat:      band(90, 80),
		},
	}
	for _, avg := range []Averages{
		{Calories: 3000, Protein: 20, Steps: 9000},
		{Calories: 100, Protein: 20, Steps: 100},
	} {
		for _, s := range Compute(avg, draft) {
			_, err := s.Apply(draft)
			assert.NoError(t, err, s.Key)
		}
	}
}

package dashboard

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"fittrack-bot/internal/goals"
	"fittrack-bot/internal/models"
	"fittrack-bot/internal/session"
	"fittrack-bot/internal/store"
	"fittrack-bot/internal/suggest"
	"fittrack-bot/internal/trends"
	"fittrack-bot/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeBackend struct {
	mu        sync.Mutex
	logs      []models.DailyLogEntry
	logsErr   error
	logCalls  atomic.Int32
	meals     []models.MealEntry
	mealsErr  error
	goals     models.GoalSet
	goalsErr  error
	savedGoal *models.GoalSet
	macroReq  map[string]string
}

func (f *fakeBackend) DailyLogs(context.Context) ([]models.DailyLogEntry, error) {
	f.logCalls.Add(1)
	if f.logsErr != nil {
		return nil, f.logsErr
	}
	return f.logs, nil
}

func (f *fakeBackend) TodaysMeals(context.Context) ([]models.MealEntry, error) {
	return f.meals, f.mealsErr
}

func (f *fakeBackend) LogWeight(_ context.Context, w models.Weight) (models.Weight, error) {
	return w, nil
}

func (f *fakeBackend) LogActivity(_ context.Context, a models.Activity) (models.Activity, error) {
	return a, nil
}

func (f *fakeBackend) CalculateMacros(_ context.Context, meals map[string]string) (models.Macros, error) {
	f.mu.Lock()
	f.macroReq = meals
	f.mu.Unlock()
	return models.Macros{Calories: 500}, nil
}

func (f *fakeBackend) Goals(context.Context) (models.GoalSet, error) {
	return f.goals, f.goalsErr
}

func (f *fakeBackend) UpdateGoals(_ context.Context, g models.GoalSet) (models.GoalSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	saved := g.Clone()
	f.savedGoal = &saved
	return saved, nil
}

func newTestDashboard(t *testing.T, f *fakeBackend) (*Dashboard, context.Context) {
	t.Helper()
	l := logger.NewNop()
	c := store.NewCache(4, time.Minute, l)
	d := New(f, store.NewLogStore(c), store.NewGoalStore(c), time.UTC, l)
	d.now = func() time.Time { return time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC) }
	ctx := session.NewContext(context.Background(), &models.Session{TelegramID: 42, Token: "t"})
	return d, ctx
}

func dayLog(date string, calories, protein, steps float64) models.DailyLogEntry {
	return models.DailyLogEntry{
		Date:     date,
		Activity: &models.Activity{Type: "walk", Steps: steps, Duration: 30},
		Totals:   &models.Macros{Calories: calories, Protein: protein},
	}
}

func TestNoSession(t *testing.T) {
	d, _ := newTestDashboard(t, &fakeBackend{})

	_, err := d.Logs(context.Background())
	assert.ErrorIs(t, err, session.ErrNoSession)
	assert.ErrorIs(t, d.Refresh(context.Background()), session.ErrNoSession)
}

func TestLogs_CachedAfterFirstFetch(t *testing.T) {
	f := &fakeBackend{logs: []models.DailyLogEntry{dayLog("2024-01-01", 2000, 120, 9000)}}
	d, ctx := newTestDashboard(t, f)

	for i := 0; i < 3; i++ {
		logs, err := d.Logs(ctx)
		require.NoError(t, err)
		assert.Len(t, logs, 1)
	}
	assert.Equal(t, int32(1), f.logCalls.Load())

	_, err := d.LogWeight(ctx, models.Weight{Value: 80})
	require.NoError(t, err)
	_, err = d.Logs(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), f.logCalls.Load())
}

func TestLogs_FailureDegradesToEmpty(t *testing.T) {
	f := &fakeBackend{logsErr: errors.New("down")}
	d, ctx := newTestDashboard(t, f)

	logs, err := d.Logs(ctx)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestGoals_MergedWithDefaults(t *testing.T) {
	f := &fakeBackend{goals: models.GoalSet{
		Steps: &models.Range{Min: models.Float(6000)},
	}}
	d, ctx := newTestDashboard(t, f)

	st, err := d.Goals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 6000.0, *st.Server.Steps.Min)
	assert.Nil(t, st.Server.Steps.Max)
	assert.Equal(t, 1800.0, *st.Server.Macros.Calories.Min)
	assert.False(t, st.Dirty)
}

func TestGoals_FailureUsesDefaults(t *testing.T) {
	f := &fakeBackend{goalsErr: errors.New("down")}
	d, ctx := newTestDashboard(t, f)

	st, err := d.Goals(ctx)
	require.NoError(t, err)
	assert.Equal(t, goals.Defaults(), st.Draft)
}

func TestEditDraftAndSave(t *testing.T) {
	f := &fakeBackend{}
	d, ctx := newTestDashboard(t, f)

	st, err := d.EditDraft(ctx, goals.Patch{Steps: &goals.RangePatch{Min: models.Float(9000)}})
	require.NoError(t, err)
	assert.True(t, st.Dirty)
	assert.Equal(t, 9000.0, *st.Draft.Steps.Min)
	assert.Equal(t, 8000.0, *st.Server.Steps.Min)

	_, err = d.EditDraft(ctx, goals.Patch{Steps: &goals.RangePatch{Min: models.Float(20000)}})
	assert.ErrorIs(t, err, goals.ErrInvalidRange)

	require.NoError(t, d.Refresh(ctx))
	st, err = d.Goals(ctx)
	require.NoError(t, err)
	assert.True(t, st.Dirty, "refresh keeps unsaved draft")
	assert.Equal(t, 9000.0, *st.Draft.Steps.Min)

	st, err = d.SaveGoals(ctx)
	require.NoError(t, err)
	require.NotNil(t, f.savedGoal)
	assert.Equal(t, 9000.0, *f.savedGoal.Steps.Min)
	assert.False(t, st.Dirty)
	assert.Equal(t, 9000.0, *st.Server.Steps.Min)
}

func TestResetDraft(t *testing.T) {
	d, ctx := newTestDashboard(t, &fakeBackend{})

	_, err := d.EditDraft(ctx, goals.Patch{SleepHours: &goals.RangePatch{Min: models.Float(6)}})
	require.NoError(t, err)

	st, err := d.ResetDraft(ctx)
	require.NoError(t, err)
	assert.False(t, st.Dirty)
	assert.Equal(t, 7.0, *st.Draft.NonWeight.SleepHours.Min)
}

func TestSuggestionsAndApply(t *testing.T) {
	f := &fakeBackend{logs: []models.DailyLogEntry{
		dayLog("2024-01-01", 2400, 90, 6000),
		dayLog("2024-01-02", 2400, 90, 6000),
	}}
	d, ctx := newTestDashboard(t, f)

	list, err := d.Suggestions(ctx)
	require.NoError(t, err)
	keys := make([]string, 0, len(list))
	for _, s := range list {
		keys = append(keys, s.Key)
	}
	assert.Equal(t, []string{suggest.KeyCaloriesDown, suggest.KeyProteinUp, suggest.KeyStepsDown}, keys)

	st, applied, err := d.ApplySuggestion(ctx, suggest.KeyCaloriesDown)
	require.NoError(t, err)
	assert.Equal(t, suggest.KeyCaloriesDown, applied.Key)
	assert.Equal(t, 2100.0, *st.Draft.Macros.Calories.Max)

	_, _, err = d.ApplySuggestion(ctx, suggest.KeyStepsUp)
	assert.ErrorIs(t, err, ErrUnknownSuggestion)
}

func TestTrends(t *testing.T) {
	f := &fakeBackend{logs: []models.DailyLogEntry{
		dayLog("2024-01-02", 2000, 120, 10000),
		dayLog("2024-01-01", 1000, 100, 5000),
	}}
	d, ctx := newTestDashboard(t, f)

	v, err := d.Trends(ctx, trends.Range7D)
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-01-02"}, v.Series.Dates)
	assert.Equal(t, 2, v.Summary.Days)
	assert.Equal(t, 1500.0, v.Summary.AvgCalories)
	require.NotNil(t, v.Bands[models.MacroCalories].Mid)
	assert.Equal(t, 2000.0, *v.Bands[models.MacroCalories].Mid)
	assert.Equal(t, 1, v.Streaks.StepsDays)
	assert.Equal(t, 5, v.Streaks.StepsTarget)
}

func TestToday(t *testing.T) {
	f := &fakeBackend{
		logs: []models.DailyLogEntry{
			dayLog("2024-01-09", 1800, 100, 7000),
			dayLog("2024-01-10", 900, 50, 2000),
		},
		meals: []models.MealEntry{
			{MealType: "breakfast", Description: "oats"},
			{MealType: "lunch", Description: ""},
		},
	}
	d, ctx := newTestDashboard(t, f)

	v, err := d.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", v.Date)
	require.NotNil(t, v.Entry)
	assert.Equal(t, 900.0, v.Entry.Totals.Calories)
	assert.True(t, v.HasMeals)
	assert.Equal(t, map[string]string{"breakfast": "oats"}, v.Meals)
}

func TestToday_UsesLocation(t *testing.T) {
	f := &fakeBackend{logs: []models.DailyLogEntry{dayLog("2024-01-11", 900, 50, 2000)}}
	d, ctx := newTestDashboard(t, f)
	d.now = func() time.Time { return time.Date(2024, 1, 10, 23, 30, 0, 0, time.UTC) }
	d.loc = time.FixedZone("UTC+2", 2*60*60)

	v, err := d.Today(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-11", v.Date)
	assert.NotNil(t, v.Entry)
}

func TestToday_MealsFailureDegrades(t *testing.T) {
	f := &fakeBackend{mealsErr: errors.New("down")}
	d, ctx := newTestDashboard(t, f)

	v, err := d.Today(ctx)
	require.NoError(t, err)
	assert.Nil(t, v.Entry)
	assert.False(t, v.HasMeals)
}

func TestCalculateMacros(t *testing.T) {
	f := &fakeBackend{}
	d, ctx := newTestDashboard(t, f)

	_, err := d.CalculateMacros(ctx, map[string]string{"breakfast": "  ", "dinner": ""})
	assert.ErrorIs(t, err, ErrNoMeals)
	assert.Nil(t, f.macroReq)

	m, err := d.CalculateMacros(ctx, map[string]string{"breakfast": " eggs ", "lunch": "", "brunch": "cake"})
	require.NoError(t, err)
	assert.Equal(t, 500.0, m.Calories)
	assert.Equal(t, map[string]string{"breakfast": "eggs"}, f.macroReq)
}

func TestLogBookNewestFirst(t *testing.T) {
	f := &fakeBackend{logs: []models.DailyLogEntry{
		dayLog("2024-01-01", 1, 1, 1),
		dayLog("2024-01-03", 1, 1, 1),
		dayLog("2024-01-02", 1, 1, 1),
	}}
	d, ctx := newTestDashboard(t, f)

	logs, err := d.LogBook(ctx)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "2024-01-03", logs[0].Date)
	assert.Equal(t, "2024-01-01", logs[2].Date)
	assert.Equal(t, "2024-01-01", f.logs[0].Date)
}

func TestWriteCSV(t *testing.T) {
	logs := []models.DailyLogEntry{
		{
			Date:     "2024-01-02",
			Weight:   &models.Weight{Value: 80.5, MeasuredAt: "morning"},
			Activity: &models.Activity{Type: "run", Steps: 12000, Duration: 45},
			Totals:   &models.Macros{Calories: 2100, Carbs: 200, Protein: 130, Fat: 60, Fiber: 30},
		},
		{Date: "2024-01-01"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, logs))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"2024-01-02", "80.5", "morning", "run", "12000", "45", "2100", "200", "130", "60", "30"}, rows[1])
	assert.Equal(t, []string{"2024-01-01", "", "", "", "", "", "", "", "", "", ""}, rows[2])
}

func TestEditDraft_ConcurrentEditsAllLand(t *testing.T) {
	d, ctx := newTestDashboard(t, &fakeBackend{})

	f := models.Float
	patches := []goals.Patch{
		{Macros: map[models.MacroKey]goals.RangePatch{models.MacroCalories: {Max: f(2100)}}},
		{Macros: map[models.MacroKey]goals.RangePatch{models.MacroProtein: {Min: f(120)}}},
		{Macros: map[models.MacroKey]goals.RangePatch{models.MacroFat: {Max: f(70)}}},
		{Macros: map[models.MacroKey]goals.RangePatch{models.MacroFiber: {Min: f(30)}}},
		{Steps: &goals.RangePatch{Min: f(7000)}},
		{SleepHours: &goals.RangePatch{Max: f(9)}},
	}

	var wg sync.WaitGroup
	for _, p := range patches {
		wg.Add(1)
		go func(p goals.Patch) {
			defer wg.Done()
			_, err := d.EditDraft(ctx, p)
			assert.NoError(t, err)
		}(p)
	}
	wg.Wait()

	st, err := d.Goals(ctx)
	require.NoError(t, err)
	assert.True(t, st.Dirty)
	assert.Equal(t, 2100.0, *st.Draft.Macros.Calories.Max)
	assert.Equal(t, 120.0, *st.Draft.Macros.Protein.Min)
	assert.Equal(t, 70.0, *st.Draft.Macros.Fat.Max)
	assert.Equal(t, 30.0, *st.Draft.Macros.Fiber.Min)
	assert.Equal(t, 7000.0, *st.Draft.Steps.Min)
	assert.Equal(t, 9.0, *st.Draft.NonWeight.SleepHours.Max)
}

func TestUserLocks_SerializeAndRelease(t *testing.T) {
	var u userLocks
	var inside, maxInside atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := u.lock("7")
			n := inside.Add(1)
			if n > maxInside.Load() {
				maxInside.Store(n)
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
	assert.Empty(t, u.m)
}

package dashboard

import (
	"context"
	"sort"

	"fittrack-bot/internal/models"
	"fittrack-bot/internal/trends"
)

// TrendsView is everything the trends screen shows for one range.
type TrendsView struct {
	Range   trends.Range
	Series  trends.Series
	Summary trends.Summary
	Bands   map[models.MacroKey]trends.Band
	Streaks trends.StreakProgress
}

func (d *Dashboard) Trends(ctx context.Context, r trends.Range) (TrendsView, error) {
	logs, err := d.Logs(ctx)
	if err != nil {
		return TrendsView{}, err
	}
	_, st, err := d.goalState(ctx)
	if err != nil {
		return TrendsView{}, err
	}

	series := trends.BuildSeries(logs, r)
	v := TrendsView{
		Range:   r,
		Series:  series,
		Summary: trends.Summarize(series),
		Bands:   make(map[models.MacroKey]trends.Band, len(models.MacroKeys)),
		Streaks: trends.WeeklyStreaks(trends.BuildSeries(logs, trends.RangeAll), st.Server),
	}
	for _, k := range models.MacroKeys {
		v.Bands[k] = trends.GoalBand(st.Server, k)
	}
	return v, nil
}

// LogBook returns the logs newest first.
func (d *Dashboard) LogBook(ctx context.Context) ([]models.DailyLogEntry, error) {
	logs, err := d.Logs(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.DailyLogEntry, len(logs))
	copy(out, logs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

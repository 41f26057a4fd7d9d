package dashboard

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"fittrack-bot/internal/models"
)

// TodayView is today's log totals next to the meal descriptions logged today.
type TodayView struct {
	Date     string
	Entry    *models.DailyLogEntry
	Meals    map[string]string
	HasMeals bool
}

// Today loads logs and today's meals in parallel. "Today" is the current
// date in the configured location.
func (d *Dashboard) Today(ctx context.Context) (TodayView, error) {
	key, err := userKey(ctx)
	if err != nil {
		return TodayView{}, err
	}

	var (
		logs  []models.DailyLogEntry
		meals []models.MealEntry
	)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		logs = d.fetchLogs(egCtx, key)
		return nil
	})
	eg.Go(func() error {
		m, err := d.backend.TodaysMeals(egCtx)
		if err != nil {
			d.logger.Errorw("failed to fetch today's meals", "user", key, "error", err)
			return nil
		}
		meals = m
		return nil
	})
	_ = eg.Wait()

	v := TodayView{Date: d.today(), Meals: make(map[string]string)}
	for i := range logs {
		if strings.HasPrefix(logs[i].Date, v.Date) {
			entry := logs[i]
			v.Entry = &entry
			break
		}
	}
	for _, m := range meals {
		if m.MealType == "" || m.Description == "" {
			continue
		}
		v.Meals[m.MealType] = m.Description
		v.HasMeals = true
	}
	return v, nil
}

// LogWeight records a weight and drops the cached logs.
func (d *Dashboard) LogWeight(ctx context.Context, w models.Weight) (models.Weight, error) {
	key, err := userKey(ctx)
	if err != nil {
		return models.Weight{}, err
	}
	out, err := d.backend.LogWeight(ctx, w)
	if err != nil {
		return models.Weight{}, wrap("log weight", err)
	}
	d.logs.Clear(key)
	return out, nil
}

func (d *Dashboard) LogActivity(ctx context.Context, a models.Activity) (models.Activity, error) {
	key, err := userKey(ctx)
	if err != nil {
		return models.Activity{}, err
	}
	out, err := d.backend.LogActivity(ctx, a)
	if err != nil {
		return models.Activity{}, wrap("log activity", err)
	}
	d.logs.Clear(key)
	return out, nil
}

// CalculateMacros sends the non-blank meal descriptions. With nothing to
// send it returns ErrNoMeals without calling the backend.
func (d *Dashboard) CalculateMacros(ctx context.Context, meals map[string]string) (models.Macros, error) {
	key, err := userKey(ctx)
	if err != nil {
		return models.Macros{}, err
	}

	prepared := make(map[string]string)
	for _, slot := range models.MealSlots {
		if s := strings.TrimSpace(meals[slot]); s != "" {
			prepared[slot] = s
		}
	}
	if len(prepared) == 0 {
		return models.Macros{}, ErrNoMeals
	}

	totals, err := d.backend.CalculateMacros(ctx, prepared)
	if err != nil {
		return models.Macros{}, wrap("calculate macros", err)
	}
	d.logs.Clear(key)
	return totals, nil
}

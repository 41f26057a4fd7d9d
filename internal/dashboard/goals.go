package dashboard

import (
	"context"
	"fmt"

	"fittrack-bot/internal/goals"
	"fittrack-bot/internal/models"
	"fittrack-bot/internal/store"
	"fittrack-bot/internal/suggest"
	"fittrack-bot/internal/trends"
)

// Goals returns the server copy and the working draft.
func (d *Dashboard) Goals(ctx context.Context) (store.GoalState, error) {
	_, st, err := d.goalState(ctx)
	return st, err
}

// EditDraft validates p against the draft and stores the result.
func (d *Dashboard) EditDraft(ctx context.Context, p goals.Patch) (store.GoalState, error) {
	key, st, unlock, err := d.lockedGoalState(ctx)
	if err != nil {
		return store.GoalState{}, err
	}
	defer unlock()

	draft, err := goals.Apply(st.Draft, p)
	if err != nil {
		return st, err
	}
	return d.putDraft(key, st, draft)
}

// ResetDraft throws away unsaved edits.
func (d *Dashboard) ResetDraft(ctx context.Context) (store.GoalState, error) {
	key, st, unlock, err := d.lockedGoalState(ctx)
	if err != nil {
		return store.GoalState{}, err
	}
	defer unlock()

	st.Draft = st.Server.Clone()
	st.Dirty = false
	if err := d.goals.Put(key, st); err != nil {
		return st, fmt.Errorf("store goals: %w", err)
	}
	return st, nil
}

func (d *Dashboard) putDraft(key string, st store.GoalState, draft models.GoalSet) (store.GoalState, error) {
	st.Draft = draft
	st.Dirty = true
	if err := d.goals.Put(key, st); err != nil {
		return st, fmt.Errorf("store goals: %w", err)
	}
	return st, nil
}

// SaveGoals sends the draft and adopts the server response as both the
// server copy and the new draft.
func (d *Dashboard) SaveGoals(ctx context.Context) (store.GoalState, error) {
	key, st, unlock, err := d.lockedGoalState(ctx)
	if err != nil {
		return store.GoalState{}, err
	}
	defer unlock()

	if err := goals.Validate(st.Draft); err != nil {
		return st, err
	}

	saved, err := d.backend.UpdateGoals(ctx, st.Draft)
	if err != nil {
		return st, wrap("save goals", err)
	}

	merged := goals.MergeServer(goals.Defaults(), saved)
	next := store.GoalState{Server: merged, Draft: merged.Clone()}
	if err := d.goals.Put(key, next); err != nil {
		d.logger.Errorw("failed to cache goals", "user", key, "error", err)
	}
	d.logger.Infow("goals saved", "user", key)
	return next, nil
}

// Suggestions compares the averages over all logs with the current draft.
func (d *Dashboard) Suggestions(ctx context.Context) ([]suggest.Suggestion, error) {
	logs, err := d.Logs(ctx)
	if err != nil {
		return nil, err
	}
	_, st, err := d.goalState(ctx)
	if err != nil {
		return nil, err
	}
	summary := trends.Summarize(trends.BuildSeries(logs, trends.RangeAll))
	return suggest.Compute(suggest.FromSummary(summary), st.Draft), nil
}

// ApplySuggestion recomputes the suggestions and applies the one with key to
// the draft. A key that is no longer suggested is rejected.
func (d *Dashboard) ApplySuggestion(ctx context.Context, key string) (store.GoalState, suggest.Suggestion, error) {
	list, err := d.Suggestions(ctx)
	if err != nil {
		return store.GoalState{}, suggest.Suggestion{}, err
	}
	for _, s := range list {
		if s.Key != key {
			continue
		}
		st, err := d.EditDraft(ctx, s.Patch)
		return st, s, err
	}
	return store.GoalState{}, suggest.Suggestion{}, ErrUnknownSuggestion
}

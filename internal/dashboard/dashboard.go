// Package dashboard assembles what a signed-in user looks at: today's log,
// the log book, trends, goals and the adaptive suggestions. Fetched logs and
// goals are cached per user and replaced whole on every successful fetch.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"fittrack-bot/internal/goals"
	"fittrack-bot/internal/models"
	"fittrack-bot/internal/session"
	"fittrack-bot/internal/store"
	"fittrack-bot/pkg/logger"
)

var (
	ErrNoMeals           = errors.New("no meals to calculate")
	ErrUnknownSuggestion = errors.New("suggestion no longer applies")
)

// Backend is the part of the API client the dashboard needs.
type Backend interface {
	DailyLogs(ctx context.Context) ([]models.DailyLogEntry, error)
	TodaysMeals(ctx context.Context) ([]models.MealEntry, error)
	LogWeight(ctx context.Context, w models.Weight) (models.Weight, error)
	LogActivity(ctx context.Context, a models.Activity) (models.Activity, error)
	CalculateMacros(ctx context.Context, meals map[string]string) (models.Macros, error)

	Goals(ctx context.Context) (models.GoalSet, error)
	UpdateGoals(ctx context.Context, g models.GoalSet) (models.GoalSet, error)
}

type Dashboard struct {
	backend Backend
	logs    *store.LogStore
	goals   *store.GoalStore
	logger  *logger.Logger
	loc     *time.Location
	now     func() time.Time

	// goal state read-modify-write runs under the user's lock
	locks userLocks
}

func New(backend Backend, logs *store.LogStore, goalStore *store.GoalStore, loc *time.Location, l *logger.Logger) *Dashboard {
	if loc == nil {
		loc = time.UTC
	}
	return &Dashboard{
		backend: backend,
		logs:    logs,
		goals:   goalStore,
		logger:  l,
		loc:     loc,
		now:     time.Now,
	}
}

func userKey(ctx context.Context) (string, error) {
	s, ok := session.FromContext(ctx)
	if !ok {
		return "", session.ErrNoSession
	}
	return s.Key(), nil
}

// Refresh reloads logs and goals in parallel. A failing fetch is logged and
// leaves the cached copy untouched. An unsaved goal draft survives.
func (d *Dashboard) Refresh(ctx context.Context) error {
	key, err := userKey(ctx)
	if err != nil {
		return err
	}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		d.fetchLogs(egCtx, key)
		return nil
	})
	eg.Go(func() error {
		unlock := d.locks.lock(key)
		defer unlock()
		d.fetchGoals(egCtx, key)
		return nil
	})
	return eg.Wait()
}

// Logs returns the user's daily logs, fetching them on a cache miss. When the
// backend fails the result is empty.
func (d *Dashboard) Logs(ctx context.Context) ([]models.DailyLogEntry, error) {
	key, err := userKey(ctx)
	if err != nil {
		return nil, err
	}
	logs, err := d.logs.Get(key)
	if err == nil {
		return logs, nil
	}
	if !errors.Is(err, store.ErrMiss) {
		d.logger.Errorw("failed to read cached logs", "user", key, "error", err)
	}
	return d.fetchLogs(ctx, key), nil
}

func (d *Dashboard) fetchLogs(ctx context.Context, key string) []models.DailyLogEntry {
	logs, err := d.backend.DailyLogs(ctx)
	if err != nil {
		d.logger.Errorw("failed to fetch daily logs", "user", key, "error", err)
		return []models.DailyLogEntry{}
	}
	if err := d.logs.Replace(key, logs); err != nil {
		d.logger.Errorw("failed to cache daily logs", "user", key, "error", err)
	}
	return logs
}

// goalState returns the cached goal state, fetching it on a miss. A failed
// fetch yields the defaults and is not cached.
func (d *Dashboard) goalState(ctx context.Context) (string, store.GoalState, error) {
	key, st, unlock, err := d.lockedGoalState(ctx)
	if err != nil {
		return "", store.GoalState{}, err
	}
	unlock()
	return key, st, nil
}

// lockedGoalState is goalState for read-modify-write callers. The user's lock
// is held until unlock is called.
func (d *Dashboard) lockedGoalState(ctx context.Context) (string, store.GoalState, func(), error) {
	key, err := userKey(ctx)
	if err != nil {
		return "", store.GoalState{}, nil, err
	}
	unlock := d.locks.lock(key)
	return key, d.loadGoals(ctx, key), unlock, nil
}

func (d *Dashboard) loadGoals(ctx context.Context, key string) store.GoalState {
	st, err := d.goals.Get(key)
	if err == nil {
		return st
	}
	if !errors.Is(err, store.ErrMiss) {
		d.logger.Errorw("failed to read cached goals", "user", key, "error", err)
	}
	return d.fetchGoals(ctx, key)
}

func (d *Dashboard) fetchGoals(ctx context.Context, key string) store.GoalState {
	server, err := d.backend.Goals(ctx)
	if err != nil {
		d.logger.Errorw("failed to fetch goals", "user", key, "error", err)
		defaults := goals.Defaults()
		return store.GoalState{Server: defaults, Draft: defaults.Clone()}
	}

	merged := goals.MergeServer(goals.Defaults(), server)
	st := store.GoalState{Server: merged, Draft: merged.Clone()}
	if prev, err := d.goals.Get(key); err == nil && prev.Dirty {
		st.Draft = prev.Draft
		st.Dirty = true
	}
	if err := d.goals.Put(key, st); err != nil {
		d.logger.Errorw("failed to cache goals", "user", key, "error", err)
	}
	return st
}

// Invalidate drops everything cached for the user in ctx.
func (d *Dashboard) Invalidate(ctx context.Context) {
	key, err := userKey(ctx)
	if err != nil {
		return
	}
	d.logs.Clear(key)
	d.goals.Clear(key)
}

// userLocks hands out one mutex per user key. Entries are dropped once no
// caller holds or waits for them.
type userLocks struct {
	mu sync.Mutex
	m  map[string]*userLock
}

type userLock struct {
	sync.Mutex
	refs int
}

func (u *userLocks) lock(key string) (unlock func()) {
	u.mu.Lock()
	if u.m == nil {
		u.m = make(map[string]*userLock)
	}
	l, ok := u.m[key]
	if !ok {
		l = &userLock{}
		u.m[key] = l
	}
	l.refs++
	u.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		u.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(u.m, key)
		}
		u.mu.Unlock()
	}
}

func (d *Dashboard) today() string {
	return d.now().In(d.loc).Format(time.DateOnly)
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}

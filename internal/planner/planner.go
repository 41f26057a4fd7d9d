// Package planner keeps the pantry and the weekly meal plan in step with the
// backend. Every mutation is written first and then read back; nothing is
// changed locally ahead of the server.
package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"fittrack-bot/internal/models"
	"fittrack-bot/pkg/logger"
)

var (
	ErrEmptyName    = errors.New("item name is empty")
	ErrItemNotFound = errors.New("pantry item not found")
	ErrInvalidMeal  = errors.New("planned meal needs a date, a meal type and a name")
)

// Backend is the part of the API client the planner needs.
type Backend interface {
	GroceryItems(ctx context.Context, status models.PantryStatus) ([]models.PantryItem, error)
	AddGroceryItem(ctx context.Context, name string, status models.PantryStatus) (models.PantryItem, error)
	UpdateGroceryStatus(ctx context.Context, id string, status models.PantryStatus) (models.PantryItem, error)
	DeleteGroceryItem(ctx context.Context, id string) error

	MealPlan(ctx context.Context, weekStart string) (*models.MealPlan, error)
	GenerateMealPlan(ctx context.Context, weekStart string) (*models.MealPlan, error)
	SaveMealPlan(ctx context.Context, plan models.MealPlan) (*models.MealPlan, error)

	SuggestMeal(ctx context.Context, r models.AIMealRequest) (models.MealSuggestion, error)
	SuggestDay(ctx context.Context) (map[string]string, error)
}

type Planner struct {
	backend Backend
	logger  *logger.Logger
}

func New(backend Backend, l *logger.Logger) *Planner {
	return &Planner{backend: backend, logger: l}
}

// Pantry loads both status lists in parallel. A list that fails to load is
// logged and shown as empty.
func (p *Planner) Pantry(ctx context.Context) models.Pantry {
	var inStock, toBuy []models.PantryItem

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		inStock = p.list(egCtx, models.StatusInStock)
		return nil
	})
	eg.Go(func() error {
		toBuy = p.list(egCtx, models.StatusToBuy)
		return nil
	})
	_ = eg.Wait()

	items := make([]models.PantryItem, 0, len(inStock)+len(toBuy))
	items = append(items, inStock...)
	return models.Partition(append(items, toBuy...))
}

func (p *Planner) list(ctx context.Context, status models.PantryStatus) []models.PantryItem {
	items, err := p.backend.GroceryItems(ctx, status)
	if err != nil {
		p.logger.Errorw("failed to load pantry items", "status", status, "error", err)
		return nil
	}
	return items
}

// AddItem adds a named item with the given status and returns the refreshed pantry.
func (p *Planner) AddItem(ctx context.Context, name string, status models.PantryStatus) (models.Pantry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Pantry{}, ErrEmptyName
	}
	if !status.Valid() {
		status = models.StatusToBuy
	}
	if _, err := p.backend.AddGroceryItem(ctx, name, status); err != nil {
		return models.Pantry{}, fmt.Errorf("add pantry item: %w", err)
	}
	return p.Pantry(ctx), nil
}

// Toggle flips an item between in stock and to buy.
func (p *Planner) Toggle(ctx context.Context, id string) (models.Pantry, error) {
	item, ok := p.Pantry(ctx).Find(id)
	if !ok {
		return models.Pantry{}, ErrItemNotFound
	}
	if _, err := p.backend.UpdateGroceryStatus(ctx, id, item.Status.Toggle()); err != nil {
		return models.Pantry{}, fmt.Errorf("toggle pantry item: %w", err)
	}
	return p.Pantry(ctx), nil
}

func (p *Planner) Delete(ctx context.Context, id string) (models.Pantry, error) {
	if err := p.backend.DeleteGroceryItem(ctx, id); err != nil {
		return models.Pantry{}, fmt.Errorf("delete pantry item: %w", err)
	}
	return p.Pantry(ctx), nil
}

// WeekStart returns the Monday of t's week as YYYY-MM-DD.
func WeekStart(t time.Time) string {
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format(time.DateOnly)
}

// Week returns the plan for the week, nil when none exists yet.
func (p *Planner) Week(ctx context.Context, weekStart string) (*models.MealPlan, error) {
	plan, err := p.backend.MealPlan(ctx, weekStart)
	if err != nil {
		return nil, fmt.Errorf("load meal plan: %w", err)
	}
	return plan, nil
}

func (p *Planner) Generate(ctx context.Context, weekStart string) (*models.MealPlan, error) {
	plan, err := p.backend.GenerateMealPlan(ctx, weekStart)
	if err != nil {
		return nil, fmt.Errorf("generate meal plan: %w", err)
	}
	return plan, nil
}

// UpsertMeal returns a copy of meals where meal replaces any entry in the
// same (date, meal type) slot.
func UpsertMeal(meals []models.PlannedMeal, meal models.PlannedMeal) []models.PlannedMeal {
	out := make([]models.PlannedMeal, 0, len(meals)+1)
	for _, m := range meals {
		if !m.SameSlot(meal) {
			out = append(out, m)
		}
	}
	return append(out, meal)
}

// SaveMeal puts meal into the week's plan, sends the whole plan and returns
// what the backend stored.
func (p *Planner) SaveMeal(ctx context.Context, weekStart string, meal models.PlannedMeal) (*models.MealPlan, error) {
	meal.Name = strings.TrimSpace(meal.Name)
	if meal.Date == "" || meal.Name == "" || !meal.MealType.Valid() {
		return nil, ErrInvalidMeal
	}

	plan, err := p.backend.MealPlan(ctx, weekStart)
	if err != nil {
		return nil, fmt.Errorf("load meal plan: %w", err)
	}
	if plan == nil {
		plan = &models.MealPlan{WeekStart: weekStart}
	}

	next := *plan
	next.Meals = UpsertMeal(plan.Meals, meal)

	saved, err := p.backend.SaveMealPlan(ctx, next)
	if err != nil {
		return nil, fmt.Errorf("save meal plan: %w", err)
	}
	if saved == nil {
		p.logger.Warnw("meal plan save returned no document", "week_start", weekStart)
		return &next, nil
	}
	return saved, nil
}

// MealIdea asks for a meal built from what is in stock, aimed at targets.
func (p *Planner) MealIdea(ctx context.Context, mealType models.MealType, targets *models.MacroGoals) (models.MealSuggestion, error) {
	if !mealType.Valid() {
		return models.MealSuggestion{}, fmt.Errorf("unknown meal type %q", mealType)
	}

	req := models.AIMealRequest{
		MealType: mealType,
		Pantry:   []models.PantryIngredient{},
		Targets:  targets,
	}
	for _, it := range p.list(ctx, models.StatusInStock) {
		req.Pantry = append(req.Pantry, models.PantryIngredient{Name: it.Name, Unit: it.Unit})
	}

	s, err := p.backend.SuggestMeal(ctx, req)
	if err != nil {
		return models.MealSuggestion{}, fmt.Errorf("suggest meal: %w", err)
	}
	return s, nil
}

// SuggestDay asks for a day of meals. The backend may add missing
// ingredients to the shopping list, so the pantry is reloaded afterwards.
func (p *Planner) SuggestDay(ctx context.Context) (map[string]string, models.Pantry, error) {
	day, err := p.backend.SuggestDay(ctx)
	if err != nil {
		return nil, models.Pantry{}, fmt.Errorf("suggest day: %w", err)
	}
	return day, p.Pantry(ctx), nil
}

package bot

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fittrack-bot/internal/models"
	"fittrack-bot/internal/planner"
)

// Telegram caps inline keyboards; only the first items get buttons.
const maxPantryButtons = 20

func (t *TelegramBot) handlePantry(ctx context.Context, message *tgbotapi.Message) {
	t.sendPantry(message.Chat.ID, t.planner.Pantry(ctx))
}

func (t *TelegramBot) sendPantry(chatID int64, p models.Pantry) {
	msg := tgbotapi.NewMessage(chatID, renderPantry(p))
	if kb, ok := pantryKeyboard(p); ok {
		msg.ReplyMarkup = kb
	}
	t.send(msg)
}

func pantryKeyboard(p models.Pantry) (tgbotapi.InlineKeyboardMarkup, bool) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, list := range [][]models.PantryItem{p.InStock, p.ToBuy} {
		for _, it := range list {
			if len(rows) == maxPantryButtons {
				break
			}
			label := "🛒 " + it.Name
			if it.Status == models.StatusToBuy {
				label = "✅ " + it.Name
			}
			rows = append(rows, tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(label, "toggle:"+it.ID),
				tgbotapi.NewInlineKeyboardButtonData("🗑", "remove:"+it.ID),
			))
		}
	}
	if len(rows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}

func (t *TelegramBot) handlePantryAdd(ctx context.Context, message *tgbotapi.Message) {
	name, status := parsePantryAdd(message.CommandArguments())
	p, err := t.planner.AddItem(ctx, name, status)
	if err != nil {
		if errors.Is(err, planner.ErrEmptyName) {
			t.reply(message.Chat.ID, "usage: /add [instock|tobuy] NAME")
			return
		}
		t.fail(ctx, message.Chat.ID, "add the item. It might already be on your list", err)
		return
	}
	t.sendPantry(message.Chat.ID, p)
}

func (t *TelegramBot) handlePantryToggle(ctx context.Context, message *tgbotapi.Message) {
	t.togglePantryItem(ctx, message.Chat.ID, strings.TrimSpace(message.CommandArguments()))
}

func (t *TelegramBot) togglePantryItem(ctx context.Context, chatID int64, id string) {
	if id == "" {
		t.reply(chatID, "usage: /toggle ID (ids are shown by /pantry)")
		return
	}
	p, err := t.planner.Toggle(ctx, id)
	if err != nil {
		if errors.Is(err, planner.ErrItemNotFound) {
			t.reply(chatID, "No pantry item with that id.")
			return
		}
		t.fail(ctx, chatID, "update the item", err)
		return
	}
	t.sendPantry(chatID, p)
}

func (t *TelegramBot) handlePantryRemove(ctx context.Context, message *tgbotapi.Message) {
	t.removePantryItem(ctx, message.Chat.ID, strings.TrimSpace(message.CommandArguments()))
}

func (t *TelegramBot) removePantryItem(ctx context.Context, chatID int64, id string) {
	if id == "" {
		t.reply(chatID, "usage: /remove ID (ids are shown by /pantry)")
		return
	}
	p, err := t.planner.Delete(ctx, id)
	if err != nil {
		t.fail(ctx, chatID, "delete the item", err)
		return
	}
	t.sendPantry(chatID, p)
}

func (t *TelegramBot) handlePlan(ctx context.Context, message *tgbotapi.Message) {
	weekStart, ok := t.weekFromArgs(message)
	if !ok {
		return
	}
	plan, err := t.planner.Week(ctx, weekStart)
	if err != nil {
		t.fail(ctx, message.Chat.ID, "load the meal plan", err)
		return
	}
	t.reply(message.Chat.ID, renderPlan(weekStart, plan))
}

func (t *TelegramBot) handlePlanGenerate(ctx context.Context, message *tgbotapi.Message) {
	weekStart, ok := t.weekFromArgs(message)
	if !ok {
		return
	}
	plan, err := t.planner.Generate(ctx, weekStart)
	if err != nil {
		t.fail(ctx, message.Chat.ID, "generate a meal plan", err)
		return
	}
	t.reply(message.Chat.ID, renderPlan(weekStart, plan))
}

func (t *TelegramBot) weekFromArgs(message *tgbotapi.Message) (string, bool) {
	day, err := parseDateOr(message.CommandArguments(), t.now().In(t.loc))
	if err != nil {
		t.reply(message.Chat.ID, err.Error())
		return "", false
	}
	return planner.WeekStart(day), true
}

func (t *TelegramBot) handlePlanAdd(ctx context.Context, message *tgbotapi.Message) {
	meal, err := parsePlanAdd(message.CommandArguments())
	if err != nil {
		t.reply(message.Chat.ID, err.Error())
		return
	}
	day, err := parseDateOr(meal.Date, t.now().In(t.loc))
	if err != nil {
		t.reply(message.Chat.ID, err.Error())
		return
	}
	weekStart := planner.WeekStart(day)

	plan, err := t.planner.SaveMeal(ctx, weekStart, meal)
	if err != nil {
		if errors.Is(err, planner.ErrInvalidMeal) {
			t.reply(message.Chat.ID, err.Error())
			return
		}
		t.fail(ctx, message.Chat.ID, "save the meal", err)
		return
	}
	t.reply(message.Chat.ID, renderPlan(weekStart, plan))
}

func (t *TelegramBot) handleMealIdea(ctx context.Context, message *tgbotapi.Message) {
	mt := models.MealType(strings.ToLower(strings.TrimSpace(message.CommandArguments())))
	if mt == "" {
		mt = models.MealDinner
	}
	if !mt.Valid() {
		t.reply(message.Chat.ID, "usage: /mealidea [breakfast|lunch|dinner|snack]")
		return
	}

	var targets *models.MacroGoals
	if st, err := t.dash.Goals(ctx); err == nil {
		targets = st.Draft.Macros
	}

	idea, err := t.planner.MealIdea(ctx, mt, targets)
	if err != nil {
		t.fail(ctx, message.Chat.ID, "come up with a meal", err)
		return
	}
	t.reply(message.Chat.ID, renderMealIdea(idea))
}

func (t *TelegramBot) handleSuggestDay(ctx context.Context, message *tgbotapi.Message) {
	day, p, err := t.planner.SuggestDay(ctx)
	if err != nil {
		t.fail(ctx, message.Chat.ID, "suggest meals", err)
		return
	}
	t.reply(message.Chat.ID, renderDay(day))
	if len(p.ToBuy) > 0 {
		t.reply(message.Chat.ID, renderPantry(p))
	}
}

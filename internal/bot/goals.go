package bot

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fittrack-bot/internal/dashboard"
	"fittrack-bot/internal/goals"
	"fittrack-bot/internal/suggest"
	"fittrack-bot/internal/trends"
)

const setGoalUsage = `usage: /setgoal FIELD VALUES ("-" keeps a value)
/setgoal steps 8000 12000
/setgoal calories|protein|carbs|fat|fiber MIN MAX
/setgoal sleep 7 8
/setgoal water 2.5 3
/setgoal workout gym time 45
/setgoal weight 82 75
/setgoal targetdate 2025-06-01
/setgoal streak steps|calories 5`

func (t *TelegramBot) handleTrends(ctx context.Context, message *tgbotapi.Message) {
	r := trends.Range30D
	if arg := strings.TrimSpace(message.CommandArguments()); arg != "" {
		parsed, err := trends.ParseRange(arg)
		if err != nil {
			t.reply(message.Chat.ID, err.Error())
			return
		}
		r = parsed
	}

	v, err := t.dash.Trends(ctx, r)
	if err != nil {
		t.fail(ctx, message.Chat.ID, "load your trends", err)
		return
	}
	t.reply(message.Chat.ID, renderTrends(v))
}

func (t *TelegramBot) handleGoals(ctx context.Context, message *tgbotapi.Message) {
	st, err := t.dash.Goals(ctx)
	if err != nil {
		t.fail(ctx, message.Chat.ID, "load your goals", err)
		return
	}
	t.reply(message.Chat.ID, renderGoals(st))
}

func (t *TelegramBot) handleSetGoal(ctx context.Context, message *tgbotapi.Message) {
	f := strings.Fields(message.CommandArguments())
	if len(f) == 0 {
		t.reply(message.Chat.ID, setGoalUsage)
		return
	}
	p, err := goals.ParsePatch(f[0], f[1:])
	if err != nil {
		t.reply(message.Chat.ID, err.Error()+"\n\n"+setGoalUsage)
		return
	}

	st, err := t.dash.EditDraft(ctx, p)
	if err != nil {
		if isGoalValidation(err) {
			t.reply(message.Chat.ID, "Not changed: "+err.Error())
			return
		}
		t.fail(ctx, message.Chat.ID, "update your goals", err)
		return
	}
	t.reply(message.Chat.ID, renderGoals(st))
}

func (t *TelegramBot) handleSuggest(ctx context.Context, message *tgbotapi.Message) {
	list, err := t.dash.Suggestions(ctx)
	if err != nil {
		t.fail(ctx, message.Chat.ID, "compute suggestions", err)
		return
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, renderSuggestions(list))
	if len(list) > 0 {
		msg.ReplyMarkup = suggestionKeyboard(list)
	}
	t.send(msg)
}

func suggestionKeyboard(list []suggest.Suggestion) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(list))
	for _, s := range list {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Apply "+s.Key, "apply:"+s.Key),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (t *TelegramBot) handleApply(ctx context.Context, message *tgbotapi.Message) {
	key := strings.TrimSpace(message.CommandArguments())
	if key == "" {
		t.reply(message.Chat.ID, "usage: /apply KEY (see /suggest)")
		return
	}
	t.applySuggestion(ctx, message.Chat.ID, key)
}

func (t *TelegramBot) applySuggestion(ctx context.Context, chatID int64, key string) {
	st, s, err := t.dash.ApplySuggestion(ctx, key)
	switch {
	case errors.Is(err, dashboard.ErrUnknownSuggestion):
		t.reply(chatID, "That suggestion no longer applies. Send /suggest for the current ones.")
		return
	case isGoalValidation(err):
		t.reply(chatID, "Not changed: "+err.Error())
		return
	case err != nil:
		t.fail(ctx, chatID, "apply the suggestion", err)
		return
	}
	t.reply(chatID, "✅ Applied: "+s.Message+"\n\n"+renderGoals(st))
}

func (t *TelegramBot) handleSaveGoals(ctx context.Context, message *tgbotapi.Message) {
	st, err := t.dash.SaveGoals(ctx)
	if err != nil {
		if isGoalValidation(err) {
			t.reply(message.Chat.ID, "Not saved: "+err.Error())
			return
		}
		t.fail(ctx, message.Chat.ID, "save your goals", err)
		return
	}
	t.reply(message.Chat.ID, "💾 Goals saved.\n\n"+renderGoals(st))
}

func (t *TelegramBot) handleResetGoals(ctx context.Context, message *tgbotapi.Message) {
	st, err := t.dash.ResetDraft(ctx)
	if err != nil {
		t.fail(ctx, message.Chat.ID, "reset your goals", err)
		return
	}
	t.reply(message.Chat.ID, "↩️ Unsaved changes discarded.\n\n"+renderGoals(st))
}

func isGoalValidation(err error) bool {
	for _, target := range []error{
		goals.ErrInvalidRange,
		goals.ErrNegative,
		goals.ErrInvalidMode,
		goals.ErrInvalidDate,
		goals.ErrInvalidStreak,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

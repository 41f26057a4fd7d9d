package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fittrack-bot/internal/dashboard"
)

const defaultLogLimit = 7

func (t *TelegramBot) handleToday(ctx context.Context, message *tgbotapi.Message) {
	v, err := t.dash.Today(ctx)
	if err != nil {
		t.fail(ctx, message.Chat.ID, "load today", err)
		return
	}
	t.reply(message.Chat.ID, renderToday(v))
}

func (t *TelegramBot) handleWeight(ctx context.Context, message *tgbotapi.Message) {
	w, err := parseWeight(message.CommandArguments())
	if err != nil {
		t.reply(message.Chat.ID, err.Error())
		return
	}
	saved, err := t.dash.LogWeight(ctx, w)
	if err != nil {
		t.fail(ctx, message.Chat.ID, "log your weight", err)
		return
	}
	t.reply(message.Chat.ID, fmt.Sprintf("⚖️ Logged %s kg (%s).", fmtNum(saved.Value), saved.MeasuredAt))
}

func (t *TelegramBot) handleActivity(ctx context.Context, message *tgbotapi.Message) {
	a, err := parseActivity(message.CommandArguments())
	if err != nil {
		t.reply(message.Chat.ID, err.Error())
		return
	}
	saved, err := t.dash.LogActivity(ctx, a)
	if err != nil {
		t.fail(ctx, message.Chat.ID, "log your activity", err)
		return
	}
	t.reply(message.Chat.ID, fmt.Sprintf("🏃 Logged %s: %s steps, %s min.",
		saved.Type, fmtNum(saved.Steps), fmtNum(saved.Duration)))
}

func (t *TelegramBot) handleMeals(ctx context.Context, message *tgbotapi.Message) {
	meals, err := parseMeals(message.CommandArguments())
	if err != nil {
		t.reply(message.Chat.ID, err.Error())
		return
	}
	totals, err := t.dash.CalculateMacros(ctx, meals)
	if err != nil {
		if errors.Is(err, dashboard.ErrNoMeals) {
			t.reply(message.Chat.ID, "Describe at least one meal.")
			return
		}
		t.fail(ctx, message.Chat.ID, "calculate your macros", err)
		return
	}
	t.reply(message.Chat.ID, "🍽 Today's totals\n"+renderMacros(totals))
}

func (t *TelegramBot) handleLogBook(ctx context.Context, message *tgbotapi.Message) {
	logs, err := t.dash.LogBook(ctx)
	if err != nil {
		t.fail(ctx, message.Chat.ID, "load your log book", err)
		return
	}
	t.reply(message.Chat.ID, renderLogBook(logs, parseLimit(message.CommandArguments(), defaultLogLimit)))
}

func (t *TelegramBot) handleExport(ctx context.Context, message *tgbotapi.Message) {
	logs, err := t.dash.LogBook(ctx)
	if err != nil {
		t.fail(ctx, message.Chat.ID, "load your log book", err)
		return
	}
	if len(logs) == 0 {
		t.reply(message.Chat.ID, "Your log book is empty.")
		return
	}

	var buf bytes.Buffer
	if err := dashboard.WriteCSV(&buf, logs); err != nil {
		t.fail(ctx, message.Chat.ID, "export your logs", err)
		return
	}

	doc := tgbotapi.NewDocument(message.Chat.ID, tgbotapi.FileBytes{
		Name:  "fittrack-logs.csv",
		Bytes: buf.Bytes(),
	})
	doc.Caption = fmt.Sprintf("%d days", len(logs))
	t.send(doc)
}

func (t *TelegramBot) handleRefresh(ctx context.Context, message *tgbotapi.Message) {
	if err := t.dash.Refresh(ctx); err != nil {
		t.fail(ctx, message.Chat.ID, "refresh", err)
		return
	}
	t.reply(message.Chat.ID, "🔄 Refreshed.")
}

func (t *TelegramBot) handleNutrition(ctx context.Context, message *tgbotapi.Message) {
	query := strings.TrimSpace(message.CommandArguments())
	if query == "" {
		t.reply(message.Chat.ID, "usage: /nutrition 2 eggs and a slice of toast")
		return
	}
	res, err := t.nutrition.AnalyzeNutrition(ctx, query)
	if err != nil {
		t.fail(ctx, message.Chat.ID, "look that up", err)
		return
	}
	t.reply(message.Chat.ID, renderNutrition(res))
}

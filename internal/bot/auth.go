package bot

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fittrack-bot/internal/api"
	"fittrack-bot/internal/models"
	"fittrack-bot/internal/session"
)

func (t *TelegramBot) handleRegister(_ context.Context, message *tgbotapi.Message) {
	t.setState(models.UserState{TelegramID: message.From.ID, CurrentState: StateRegisterEmail})
	t.reply(message.Chat.ID, "Let's create your account. What is your email?")
}

func (t *TelegramBot) handleLogin(_ context.Context, message *tgbotapi.Message) {
	t.setState(models.UserState{TelegramID: message.From.ID, CurrentState: StateLoginEmail})
	t.reply(message.Chat.ID, "What is your email?")
}

func (t *TelegramBot) handleLogout(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	if s, err := t.sessions.Get(ctx, userID); err == nil {
		t.dash.Invalidate(session.NewContext(ctx, s))
	}
	if err := t.sessions.SignOut(ctx, userID); err != nil {
		t.logger.Errorw("Failed to sign out", "user_id", userID, "error", err)
		t.reply(message.Chat.ID, "Sorry, could not sign you out. Please try again later.")
		return
	}
	t.reply(message.Chat.ID, "👋 Signed out.")
}

func (t *TelegramBot) continueRegister(ctx context.Context, message *tgbotapi.Message, state models.UserState) {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	switch state.CurrentState {
	case StateRegisterEmail:
		if !looksLikeEmail(text) {
			t.reply(chatID, "That does not look like an email. Please try again.")
			return
		}
		state.Registration.Email = text
		state.CurrentState = StateRegisterPassword
		t.setState(state)
		t.reply(chatID, "Choose a password.")

	case StateRegisterPassword:
		t.forget(message)
		if text == "" {
			t.reply(chatID, "The password cannot be empty.")
			return
		}
		state.Registration.Password = text
		state.CurrentState = StateRegisterWeights
		t.setState(state)
		t.reply(chatID, "Send your current and goal weight in kg (for example: 82 75), or \"skip\".")

	case StateRegisterWeights:
		if !strings.EqualFold(text, "skip") {
			f := strings.Fields(text)
			if len(f) != 2 {
				t.reply(chatID, "Please send two numbers, for example: 82 75, or \"skip\".")
				return
			}
			current, err1 := parsePositive(f[0])
			goal, err2 := parsePositive(f[1])
			if err1 != nil || err2 != nil {
				t.reply(chatID, "Please send two positive numbers, for example: 82 75.")
				return
			}
			state.Registration.CurrentWeight = &current
			state.Registration.GoalWeight = &goal
		}
		t.clearState(message.From.ID)

		token, err := t.auth.Register(ctx, state.Registration)
		if err != nil {
			t.authFailed(chatID, "register", err)
			return
		}
		t.signIn(ctx, message, state.Registration.Email, token, "🎉 Account created and signed in. Send /help to get started.")
	}
}

func (t *TelegramBot) continueLogin(ctx context.Context, message *tgbotapi.Message, state models.UserState) {
	chatID := message.Chat.ID
	text := strings.TrimSpace(message.Text)

	switch state.CurrentState {
	case StateLoginEmail:
		if !looksLikeEmail(text) {
			t.reply(chatID, "That does not look like an email. Please try again.")
			return
		}
		state.Registration.Email = text
		state.CurrentState = StateLoginPassword
		t.setState(state)
		t.reply(chatID, "Password?")

	case StateLoginPassword:
		t.forget(message)
		t.clearState(message.From.ID)

		token, err := t.auth.Login(ctx, state.Registration.Email, text)
		if err != nil {
			t.authFailed(chatID, "login", err)
			return
		}
		t.signIn(ctx, message, state.Registration.Email, token, "✅ Signed in. Send /today to see your day.")
	}
}

func (t *TelegramBot) signIn(ctx context.Context, message *tgbotapi.Message, email, token, greeting string) {
	s, err := t.sessions.SignIn(ctx, message.From.ID, message.Chat.ID, message.From.UserName, email, token)
	if err != nil {
		t.logger.Errorw("Failed to store session", "user_id", message.From.ID, "error", err)
		t.reply(message.Chat.ID, "Sorry, could not sign you in. Please try again later.")
		return
	}
	t.dash.Invalidate(session.NewContext(ctx, s))
	t.reply(message.Chat.ID, greeting)
}

func (t *TelegramBot) authFailed(chatID int64, op string, err error) {
	t.logger.Warnw("Authentication failed", "op", op, "chat_id", chatID, "error", err)

	var apiErr *api.Error
	switch {
	case api.IsUnauthorized(err):
		t.reply(chatID, "Wrong email or password. Send /login to try again.")
	case errors.As(err, &apiErr) && apiErr.StatusCode < 500 && apiErr.Body != "":
		t.reply(chatID, "Could not "+op+": "+apiErr.Body)
	default:
		t.reply(chatID, "Sorry, could not "+op+". Please try again later.")
	}
}

// forget deletes a message holding a password from the chat.
func (t *TelegramBot) forget(message *tgbotapi.Message) {
	if _, err := t.sender.Request(tgbotapi.NewDeleteMessage(message.Chat.ID, message.MessageID)); err != nil {
		t.logger.Debugw("Could not delete password message", "error", err)
	}
}

func looksLikeEmail(s string) bool {
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t")
}

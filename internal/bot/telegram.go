package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"fittrack-bot/internal/api"
	"fittrack-bot/internal/dashboard"
	"fittrack-bot/internal/metrics"
	"fittrack-bot/internal/models"
	"fittrack-bot/internal/planner"
	"fittrack-bot/internal/session"
	"fittrack-bot/pkg/logger"
)

const (
	StateIdle             = ""
	StateRegisterEmail    = "register_email"
	StateRegisterPassword = "register_password"
	StateRegisterWeights  = "register_weights"
	StateLoginEmail       = "login_email"
	StateLoginPassword    = "login_password"
)

const (
	msgNotSignedIn = "Please /login or /register first."
	msgExpired     = "Your session has expired. Please /login again."
	msgUnknown     = "Unknown command. Send /help to see what I can do."
)

// sender is the part of the Telegram API used to answer users.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Authenticator interface {
	Register(ctx context.Context, r models.Registration) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
}

type NutritionLookup interface {
	AnalyzeNutrition(ctx context.Context, query string) (api.NutritionAnalysis, error)
}

// Services are the application components the bot drives.
type Services struct {
	Auth      Authenticator
	Sessions  *session.Manager
	Dashboard *dashboard.Dashboard
	Planner   *planner.Planner
	Nutrition NutritionLookup
	Metrics   *metrics.Manager
	Location  *time.Location
}

type commandHandler func(ctx context.Context, message *tgbotapi.Message)

type TelegramBot struct {
	bot       *tgbotapi.BotAPI
	sender    sender
	auth      Authenticator
	sessions  *session.Manager
	dash      *dashboard.Dashboard
	planner   *planner.Planner
	nutrition NutritionLookup
	metrics   *metrics.Manager
	logger    *logger.Logger
	loc       *time.Location
	now       func() time.Time

	userStates map[int64]*models.UserState
	stateMutex sync.RWMutex

	handlers       map[string]commandHandler
	requestTimeout time.Duration

	// inflight counts the dispatch loop and every running update handler
	inflight sync.WaitGroup
	quit     chan struct{}
	stopOnce sync.Once
}

func NewTelegramBot(token string, debug bool, svc Services, logger *logger.Logger) (*TelegramBot, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	bot.Debug = debug

	logger.Infow("Authorized on Telegram", "username", bot.Self.UserName)

	t := newTelegramBot(bot, svc, logger)
	t.bot = bot
	return t, nil
}

func newTelegramBot(s sender, svc Services, logger *logger.Logger) *TelegramBot {
	loc := svc.Location
	if loc == nil {
		loc = time.UTC
	}
	t := &TelegramBot{
		sender:         s,
		auth:           svc.Auth,
		sessions:       svc.Sessions,
		dash:           svc.Dashboard,
		planner:        svc.Planner,
		nutrition:      svc.Nutrition,
		metrics:        svc.Metrics,
		logger:         logger,
		loc:            loc,
		now:            time.Now,
		userStates:     make(map[int64]*models.UserState),
		requestTimeout: 30 * time.Second,
		quit:           make(chan struct{}),
	}
	t.registerHandlers()
	return t
}

func (t *TelegramBot) registerHandlers() {
	t.handlers = map[string]commandHandler{
		"start":    t.handleHelp,
		"help":     t.handleHelp,
		"register": t.handleRegister,
		"login":    t.handleLogin,
		"logout":   t.handleLogout,

		"today":    t.authed(t.handleToday),
		"weight":   t.authed(t.handleWeight),
		"activity": t.authed(t.handleActivity),
		"meals":    t.authed(t.handleMeals),
		"log":      t.authed(t.handleLogBook),
		"export":   t.authed(t.handleExport),
		"refresh":  t.authed(t.handleRefresh),

		"trends":     t.authed(t.handleTrends),
		"goals":      t.authed(t.handleGoals),
		"setgoal":    t.authed(t.handleSetGoal),
		"suggest":    t.authed(t.handleSuggest),
		"apply":      t.authed(t.handleApply),
		"savegoals":  t.authed(t.handleSaveGoals),
		"resetgoals": t.authed(t.handleResetGoals),

		"pantry":     t.authed(t.handlePantry),
		"add":        t.authed(t.handlePantryAdd),
		"toggle":     t.authed(t.handlePantryToggle),
		"remove":     t.authed(t.handlePantryRemove),
		"plan":       t.authed(t.handlePlan),
		"plangen":    t.authed(t.handlePlanGenerate),
		"planadd":    t.authed(t.handlePlanAdd),
		"mealidea":   t.authed(t.handleMealIdea),
		"suggestday": t.authed(t.handleSuggestDay),
		"nutrition":  t.authed(t.handleNutrition),
	}
}

// Start begins receiving updates from Telegram via polling
func (t *TelegramBot) Start(ctx context.Context) error {
	// Polling and webhooks are exclusive
	t.logger.Info("Removing any existing webhook")
	_, err := t.bot.Request(tgbotapi.DeleteWebhookConfig{
		DropPendingUpdates: true,
	})
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := t.bot.GetUpdatesChan(updateConfig)

	t.logger.Info("Started receiving Telegram updates")
	if t.metrics != nil {
		t.metrics.GaugeLifeSignal.Set(1)
	}

	t.run(ctx, updates)

	return nil
}

// run starts the dispatch loop. Stop waits for it and its handlers.
func (t *TelegramBot) run(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	t.inflight.Add(1)
	go t.handleUpdates(ctx, updates)
}

// handleUpdates processes incoming updates from Telegram until Stop, ctx
// cancellation or the channel closing.
func (t *TelegramBot) handleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	defer t.inflight.Done()
	for {
		select {
		case <-t.quit:
			return
		case <-ctx.Done():
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			t.inflight.Add(1)
			go func() {
				defer t.inflight.Done()
				t.handleUpdate(ctx, update)
			}()
		}
	}
}

func (t *TelegramBot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			if t.metrics != nil {
				t.metrics.CounterPanics.Inc()
			}
			t.logger.Errorw("Recovered from panic while processing update", "update_id", update.UpdateID, "error", r)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, t.requestTimeout)
	defer cancel()

	switch {
	case update.Message != nil && update.Message.From != nil:
		t.logger.Debugw("Received message",
			"chat_id", update.Message.Chat.ID,
			"from", update.Message.From.UserName)

		if update.Message.IsCommand() {
			t.handleCommand(ctx, update.Message)
		} else {
			t.handleMessage(ctx, update.Message)
		}
	case update.CallbackQuery != nil:
		t.handleCallbackQuery(ctx, update.CallbackQuery)
	}
}

// handleCommand dispatches bot commands. Any command ends a pending conversation.
func (t *TelegramBot) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	command := strings.ToLower(message.Command())

	h, ok := t.handlers[command]
	if !ok {
		t.reply(message.Chat.ID, msgUnknown)
		return
	}

	t.logger.Infow("Handling command", "command", command, "user_id", message.From.ID)
	if t.metrics != nil {
		t.metrics.CounterCommands.WithLabelValues(command).Inc()
	}

	t.clearState(message.From.ID)
	h(ctx, message)
}

// authed runs h with the user's session in the context.
func (t *TelegramBot) authed(h commandHandler) commandHandler {
	return func(ctx context.Context, message *tgbotapi.Message) {
		sctx, ok := t.sessionContext(ctx, message.From.ID, message.Chat.ID)
		if !ok {
			return
		}
		h(sctx, message)
	}
}

func (t *TelegramBot) sessionContext(ctx context.Context, userID, chatID int64) (context.Context, bool) {
	s, err := t.sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			t.reply(chatID, msgNotSignedIn)
			return nil, false
		}
		t.logger.Errorw("Failed to load session", "user_id", userID, "error", err)
		t.reply(chatID, "Sorry, something went wrong. Please try again later.")
		return nil, false
	}
	return session.NewContext(ctx, s), true
}

// fail logs err and tells the user what did not work. A rejected token
// signs the user out.
func (t *TelegramBot) fail(ctx context.Context, chatID int64, what string, err error) {
	if api.IsUnauthorized(err) {
		if s, ok := session.FromContext(ctx); ok {
			t.dash.Invalidate(ctx)
			if err := t.sessions.SignOut(ctx, s.TelegramID); err != nil {
				t.logger.Errorw("Failed to drop expired session", "user_id", s.TelegramID, "error", err)
			}
		}
		t.reply(chatID, msgExpired)
		return
	}

	t.logger.Errorw("Request failed", "what", what, "chat_id", chatID, "error", err)
	t.reply(chatID, fmt.Sprintf("Sorry, could not %s. Please try again later.", what))
}

func (t *TelegramBot) reply(chatID int64, text string) {
	t.send(tgbotapi.NewMessage(chatID, text))
}

func (t *TelegramBot) send(c tgbotapi.Chattable) {
	if _, err := t.sender.Send(c); err != nil {
		t.logger.Errorw("Failed to send message", "error", err)
	}
}

func (t *TelegramBot) getState(userID int64) (models.UserState, bool) {
	t.stateMutex.RLock()
	defer t.stateMutex.RUnlock()
	st, ok := t.userStates[userID]
	if !ok {
		return models.UserState{}, false
	}
	return *st, true
}

func (t *TelegramBot) setState(st models.UserState) {
	t.stateMutex.Lock()
	t.userStates[st.TelegramID] = &st
	t.stateMutex.Unlock()
}

func (t *TelegramBot) clearState(userID int64) {
	t.stateMutex.Lock()
	delete(t.userStates, userID)
	t.stateMutex.Unlock()
}

// handleMessage continues a pending conversation
func (t *TelegramBot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	state, exists := t.getState(message.From.ID)
	if !exists {
		t.reply(message.Chat.ID, "Send /help to see what I can do.")
		return
	}

	t.logger.Debugw("Processing message based on state",
		"user_id", message.From.ID,
		"state", state.CurrentState)

	switch state.CurrentState {
	case StateRegisterEmail, StateRegisterPassword, StateRegisterWeights:
		t.continueRegister(ctx, message, state)
	case StateLoginEmail, StateLoginPassword:
		t.continueLogin(ctx, message, state)
	default:
		t.clearState(message.From.ID)
		t.reply(message.Chat.ID, "Sorry, I lost track. Please start again.")
	}
}

// handleCallbackQuery processes inline keyboard presses
func (t *TelegramBot) handleCallbackQuery(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	if _, err := t.sender.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
		t.logger.Errorw("Failed to acknowledge callback", "error", err)
	}
	if cq.Message == nil || cq.From == nil {
		return
	}

	chatID := cq.Message.Chat.ID
	sctx, ok := t.sessionContext(ctx, cq.From.ID, chatID)
	if !ok {
		return
	}

	action, arg, _ := strings.Cut(cq.Data, ":")
	t.logger.Infow("Received callback query", "user_id", cq.From.ID, "action", action)

	switch action {
	case "apply":
		t.applySuggestion(sctx, chatID, arg)
	case "toggle":
		t.togglePantryItem(sctx, chatID, arg)
	case "remove":
		t.removePantryItem(sctx, chatID, arg)
	default:
		t.logger.Warnw("Unknown callback action", "data", cq.Data)
	}
}

// Stop stops polling and waits for running handlers until ctx is done.
func (t *TelegramBot) Stop(ctx context.Context) error {
	t.stopOnce.Do(func() {
		if t.bot != nil {
			t.bot.StopReceivingUpdates()
		}
		close(t.quit)
	})
	if t.metrics != nil {
		t.metrics.GaugeLifeSignal.Set(0)
	}

	done := make(chan struct{})
	go func() {
		t.inflight.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (t *TelegramBot) handleHelp(_ context.Context, message *tgbotapi.Message) {
	t.reply(message.Chat.ID, helpText)
}

const helpText = `👋 I track your weight, activity, meals and goals.

Account: /register /login /logout
Today: /today /weight /activity /meals /suggestday /nutrition
History: /log /export /trends [7d|30d|90d|all] /refresh
Goals: /goals /setgoal /suggest /apply /savegoals /resetgoals
Planner: /pantry /add /toggle /remove /plan /plangen /planadd /mealidea`

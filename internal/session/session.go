// Package session manages the sign-in state of chat users. A session is
// created at sign-in, travels with requests in the context and is cleared
// at sign-out.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"fittrack-bot/internal/models"
	"fittrack-bot/pkg/logger"
)

var ErrNoSession = errors.New("not signed in")

// Repository persists sessions across bot restarts.
type Repository interface {
	SaveSession(ctx context.Context, s *models.Session) error
	GetSession(ctx context.Context, telegramID int64) (*models.Session, error)
	DeleteSession(ctx context.Context, telegramID int64) error
}

// Manager fronts a Repository with an in-process cache.
type Manager struct {
	repo   Repository
	logger *logger.Logger
	now    func() time.Time

	mu       sync.RWMutex
	sessions map[int64]*models.Session
}

func NewManager(repo Repository, l *logger.Logger) *Manager {
	return &Manager{
		repo:     repo,
		logger:   l,
		now:      time.Now,
		sessions: make(map[int64]*models.Session),
	}
}

// SignIn stores a fresh session for the user, replacing any previous one.
func (m *Manager) SignIn(ctx context.Context, telegramID, chatID int64, username, email, token string) (*models.Session, error) {
	if token == "" {
		return nil, fmt.Errorf("sign in: empty token")
	}
	now := m.now()
	s := &models.Session{
		TelegramID: telegramID,
		ChatID:     chatID,
		Username:   username,
		Email:      email,
		Token:      token,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := m.repo.SaveSession(ctx, s); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	m.mu.Lock()
	m.sessions[telegramID] = s
	m.mu.Unlock()

	m.logger.Infow("user signed in", "telegram_id", telegramID, "email", email)
	return s, nil
}

// SignOut removes the session. Signing out twice is not an error.
func (m *Manager) SignOut(ctx context.Context, telegramID int64) error {
	m.mu.Lock()
	delete(m.sessions, telegramID)
	m.mu.Unlock()

	if err := m.repo.DeleteSession(ctx, telegramID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	m.logger.Infow("user signed out", "telegram_id", telegramID)
	return nil
}

// Get returns the user's session or ErrNoSession.
func (m *Manager) Get(ctx context.Context, telegramID int64) (*models.Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[telegramID]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}

	s, err := m.repo.GetSession(ctx, telegramID)
	if err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	m.mu.Lock()
	m.sessions[telegramID] = s
	m.mu.Unlock()
	return s, nil
}

type ctxKey struct{}

// NewContext returns a context carrying s.
func NewContext(ctx context.Context, s *models.Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session carried by ctx, if any.
func FromContext(ctx context.Context) (*models.Session, bool) {
	s, ok := ctx.Value(ctxKey{}).(*models.Session)
	return s, ok && s != nil
}

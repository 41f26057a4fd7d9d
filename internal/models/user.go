// internal/models/user.go
package models

import (
	"fmt"
	"time"
)

// Session is the authenticated link between a chat user and the backend.
// It is created at sign-in and removed at sign-out.
type Session struct {
	TelegramID int64     `json:"telegram_id"`
	ChatID     int64     `json:"chat_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Token      string    `json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Key identifies the session owner in per-user caches.
func (s *Session) Key() string {
	return fmt.Sprintf("%d", s.TelegramID)
}

// Registration collects the sign-up fields sent to /auth/register.
type Registration struct {
	Email         string   `json:"email"`
	Password      string   `json:"password"`
	Age           *int     `json:"age,omitempty"`
	Height        *float64 `json:"height,omitempty"`
	CurrentWeight *float64 `json:"currentWeight,omitempty"`
	GoalWeight    *float64 `json:"goalWeight,omitempty"`
	Goal          string   `json:"goal,omitempty"`
}

// UserState tracks a multi-step chat conversation.
type UserState struct {
	TelegramID   int64        `json:"telegram_id"`
	CurrentState string       `json:"current_state"`
	Registration Registration `json:"registration"`
}

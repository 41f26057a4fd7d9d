package session

import (
	"context"
	"sync"

	"fittrack-bot/internal/models"
)

// MemoryRepository keeps sessions in process memory. Sessions do not survive
// a restart.
type MemoryRepository struct {
	mu       sync.Mutex
	sessions map[int64]models.Session
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[int64]models.Session)}
}

func (r *MemoryRepository) SaveSession(_ context.Context, s *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.TelegramID] = *s
	return nil
}

func (r *MemoryRepository) GetSession(_ context.Context, telegramID int64) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[telegramID]
	if !ok {
		return nil, ErrNoSession
	}
	return &s, nil
}

func (r *MemoryRepository) DeleteSession(_ context.Context, telegramID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, telegramID)
	return nil
}

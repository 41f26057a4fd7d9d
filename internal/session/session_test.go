package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fittrack-bot/internal/models"
	"fittrack-bot/pkg/logger"
)

type failingRepo struct {
	*MemoryRepository
	err error
}

func (r failingRepo) GetSession(context.Context, int64) (*models.Session, error) {
	return nil, r.err
}

func TestManager_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	m := NewManager(repo, logger.NewNop())

	_, err := m.Get(ctx, 1)
	require.ErrorIs(t, err, ErrNoSession)

	s, err := m.SignIn(ctx, 1, 100, "serj", "a@b.c", "tok")
	require.NoError(t, err)
	assert.Equal(t, "tok", s.Token)

	got, err := m.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "a@b.c", got.Email)

	require.NoError(t, m.SignOut(ctx, 1))
	_, err = m.Get(ctx, 1)
	assert.ErrorIs(t, err, ErrNoSession)

	// second sign out is harmless
	assert.NoError(t, m.SignOut(ctx, 1))
}

func TestManager_LoadsFromRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepository()
	require.NoError(t, repo.SaveSession(ctx, &models.Session{TelegramID: 5, Token: "persisted"}))

	m := NewManager(repo, logger.NewNop())
	s, err := m.Get(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, "persisted", s.Token)
}

func TestManager_RejectsEmptyToken(t *testing.T) {
	m := NewManager(NewMemoryRepository(), logger.NewNop())
	_, err := m.SignIn(context.Background(), 1, 1, "", "", "")
	assert.Error(t, err)
}

func TestManager_WrapsRepositoryErrors(t *testing.T) {
	boom := errors.New("db down")
	m := NewManager(failingRepo{NewMemoryRepository(), boom}, logger.NewNop())

	_, err := m.Get(context.Background(), 9)
	require.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrNoSession)
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := NewContext(context.Background(), &models.Session{Token: "t"})
	s, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "t", s.Token)
}

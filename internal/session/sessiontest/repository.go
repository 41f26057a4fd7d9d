// Package sessiontest holds the behaviour every session.Repository must show.
package sessiontest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fittrack-bot/internal/models"
	"fittrack-bot/internal/session"
)

// RunRepository exercises repo. Telegram IDs used are 9001 to 9003; callers
// sharing a database must leave them free.
func RunRepository(t *testing.T, repo session.Repository) {
	t.Helper()
	ctx := context.Background()

	t.Run("missing session", func(t *testing.T) {
		_, err := repo.GetSession(ctx, 9001)
		assert.ErrorIs(t, err, session.ErrNoSession)
	})

	t.Run("save and get", func(t *testing.T) {
		in := &models.Session{TelegramID: 9002, ChatID: 77, Username: "runner", Email: "run@fit.io", Token: "tok-a"}
		require.NoError(t, repo.SaveSession(ctx, in))
		t.Cleanup(func() { _ = repo.DeleteSession(ctx, 9002) })

		got, err := repo.GetSession(ctx, 9002)
		require.NoError(t, err)
		assert.Equal(t, int64(77), got.ChatID)
		assert.Equal(t, "runner", got.Username)
		assert.Equal(t, "run@fit.io", got.Email)
		assert.Equal(t, "tok-a", got.Token)

		// the caller's copy is not the stored one
		got.Token = "changed"
		again, err := repo.GetSession(ctx, 9002)
		require.NoError(t, err)
		assert.Equal(t, "tok-a", again.Token)
	})

	t.Run("save replaces", func(t *testing.T) {
		require.NoError(t, repo.SaveSession(ctx, &models.Session{TelegramID: 9003, ChatID: 1, Token: "old"}))
		t.Cleanup(func() { _ = repo.DeleteSession(ctx, 9003) })
		require.NoError(t, repo.SaveSession(ctx, &models.Session{TelegramID: 9003, ChatID: 2, Email: "new@fit.io", Token: "new"}))

		got, err := repo.GetSession(ctx, 9003)
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.ChatID)
		assert.Equal(t, "new@fit.io", got.Email)
		assert.Equal(t, "new", got.Token)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.SaveSession(ctx, &models.Session{TelegramID: 9001, ChatID: 1, Token: "t"}))
		require.NoError(t, repo.DeleteSession(ctx, 9001))

		_, err := repo.GetSession(ctx, 9001)
		assert.ErrorIs(t, err, session.ErrNoSession)

		// deleting twice is fine
		assert.NoError(t, repo.DeleteSession(ctx, 9001))
	})
}

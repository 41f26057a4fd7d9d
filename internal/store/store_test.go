package store

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fittrack-bot/internal/models"
	"fittrack-bot/pkg/logger"
)

func newTestCache() *Cache {
	return NewCache(1, time.Minute, logger.NewNop())
}

func TestLogStore_ReplaceIsWholesale(t *testing.T) {
	s := NewLogStore(newTestCache())

	_, err := s.Get("42")
	require.ErrorIs(t, err, ErrMiss)

	require.NoError(t, s.Replace("42", []models.DailyLogEntry{
		{Date: "2025-01-01"}, {Date: "2025-01-02"},
	}))
	require.NoError(t, s.Replace("42", []models.DailyLogEntry{
		{Date: "2025-01-03", Weight: &models.Weight{Value: 80.5, MeasuredAt: "morning"}},
	}))

	logs, err := s.Get("42")
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "2025-01-03", logs[0].Date)
	assert.Equal(t, 80.5, logs[0].Weight.Value)

	// other users are isolated
	_, err = s.Get("43")
	assert.ErrorIs(t, err, ErrMiss)

	s.Clear("42")
	_, err = s.Get("42")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestLogStore_NilBecomesEmpty(t *testing.T) {
	s := NewLogStore(newTestCache())
	require.NoError(t, s.Replace("1", nil))

	logs, err := s.Get("1")
	require.NoError(t, err)
	assert.NotNil(t, logs)
	assert.Empty(t, logs)
}

func TestGoalStore_RoundTrip(t *testing.T) {
	s := NewGoalStore(newTestCache())

	st := GoalState{
		Server: models.GoalSet{Steps: &models.Range{Min: models.Float(8000)}},
		Draft:  models.GoalSet{Steps: &models.Range{Min: models.Float(7000)}},
		Dirty:  true,
	}
	require.NoError(t, s.Put("7", st))

	got, err := s.Get("7")
	require.NoError(t, err)
	assert.Equal(t, st, got)

	s.Clear("7")
	_, err = s.Get("7")
	assert.ErrorIs(t, err, ErrMiss)
}

func yearOfLogs() []models.DailyLogEntry {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	logs := make([]models.DailyLogEntry, 0, 365)
	for i := 0; i < 365; i++ {
		logs = append(logs, models.DailyLogEntry{
			Date:     start.AddDate(0, 0, i).Format(time.DateOnly),
			Weight:   &models.Weight{Value: 80 - float64(i)/100, MeasuredAt: "morning"},
			Activity: &models.Activity{Type: "strength training", Steps: 9000 + float64(i), Duration: 55},
			Totals:   &models.Macros{Calories: 2150.5, Protein: 131.2, Carbs: 221.7, Fat: 68.4, Fiber: 31.9},
		})
	}
	return logs
}

func TestLogStore_YearOfLogs(t *testing.T) {
	for _, sizeMB := range []int{4, 32} {
		s := NewLogStore(NewCache(sizeMB, time.Minute, logger.NewNop()))
		logs := yearOfLogs()

		require.NoError(t, s.Replace("42", logs), "size %d", sizeMB)
		got, err := s.Get("42")
		require.NoError(t, err, "size %d", sizeMB)
		assert.Equal(t, logs, got, "size %d", sizeMB)
	}
}

func TestLogStore_ReplaceDropsOldChunks(t *testing.T) {
	c := NewCache(4, time.Minute, logger.NewNop())
	s := NewLogStore(c)

	require.NoError(t, s.Replace("42", yearOfLogs()))
	old, err := s.index("42")
	require.NoError(t, err)
	require.Greater(t, old.Chunks, 1)

	require.NoError(t, s.Replace("42", []models.DailyLogEntry{{Date: "2025-01-01"}}))
	got, err := s.Get("42")
	require.NoError(t, err)
	assert.Equal(t, []models.DailyLogEntry{{Date: "2025-01-01"}}, got)

	for i := 0; i < old.Chunks; i++ {
		_, err := c.cache.Get([]byte(chunkKey("42", old.Gen, i)))
		assert.Error(t, err)
	}
}

func TestLogStore_MissingChunkIsAMiss(t *testing.T) {
	c := NewCache(4, time.Minute, logger.NewNop())
	s := NewLogStore(c)
	require.NoError(t, s.Replace("42", yearOfLogs()))

	idx, err := s.index("42")
	require.NoError(t, err)
	c.del(chunkKey("42", idx.Gen, 1))

	_, err = s.Get("42")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = s.index("42")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestLogStore_EntryTooLarge(t *testing.T) {
	s := NewLogStore(newTestCache())

	huge := models.DailyLogEntry{Date: "2025-01-01", Activity: &models.Activity{Type: strings.Repeat("x", 2048)}}
	err := s.Replace("42", []models.DailyLogEntry{huge})
	assert.ErrorIs(t, err, ErrEntryTooLarge)
	_, err = s.Get("42")
	assert.ErrorIs(t, err, ErrMiss)
}

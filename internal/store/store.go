// internal/store/store.go
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coocood/freecache"
	"github.com/google/uuid"

	"fittrack-bot/internal/models"
	"fittrack-bot/pkg/logger"
)

const (
	megabyte = 1024 * 1024
	// freecache refuses entries above 1/1024 of its size, header and key included
	entryHeader = 24
)

var (
	// ErrMiss is returned when nothing is cached for a user.
	ErrMiss = errors.New("not cached")
	// ErrEntryTooLarge is returned for a single record the cache cannot hold.
	ErrEntryTooLarge = errors.New("entry larger than the cache entry limit")
)

// Cache is the byte cache shared by the log and goal stores. Entries are
// written whole and replaced whole.
type Cache struct {
	cache    *freecache.Cache
	ttl      time.Duration
	maxEntry int
	logger   *logger.Logger
}

func NewCache(sizeMB int, ttl time.Duration, l *logger.Logger) *Cache {
	if sizeMB <= 0 {
		sizeMB = 1
	}
	return &Cache{
		cache:    freecache.NewCache(sizeMB * megabyte),
		ttl:      ttl,
		maxEntry: sizeMB * megabyte / 1024,
		logger:   l,
	}
}

// valueLimit is the largest value that can be stored under key.
func (c *Cache) valueLimit(key string) int {
	return c.maxEntry - entryHeader - len(key)
}

func (c *Cache) put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return c.putRaw(key, data)
}

func (c *Cache) putRaw(key string, data []byte) error {
	if err := c.cache.Set([]byte(key), data, int(c.ttl.Seconds())); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *Cache) get(key string, v any) error {
	data, err := c.cache.Get([]byte(key))
	if err != nil {
		if errors.Is(err, freecache.ErrNotFound) {
			return ErrMiss
		}
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		c.logger.Errorw("dropping unreadable cache entry", "key", key, "error", err)
		c.cache.Del([]byte(key))
		return ErrMiss
	}
	return nil
}

func (c *Cache) del(key string) {
	c.cache.Del([]byte(key))
}

// LogStore holds the last fetched daily logs per user. A list is split into
// chunks that fit the cache entry limit; an index entry names the generation
// and chunk count, so a reader never mixes chunks of two writes.
type LogStore struct {
	c *Cache
}

func NewLogStore(c *Cache) *LogStore {
	return &LogStore{c: c}
}

type logIndex struct {
	Gen    string `json:"gen"`
	Chunks int    `json:"chunks"`
}

func logsKey(userKey string) string { return "logs::" + userKey }

func chunkKey(userKey, gen string, i int) string {
	return fmt.Sprintf("logs::%s::%s::%d", userKey, gen, i)
}

// Replace swaps the cached list for logs.
func (s *LogStore) Replace(userKey string, logs []models.DailyLogEntry) error {
	gen := uuid.NewString()
	limit := s.c.valueLimit(chunkKey(userKey, gen, len(logs)))

	chunks, err := chunkLogs(logs, limit)
	if err != nil {
		return err
	}
	for i, chunk := range chunks {
		if err := s.c.putRaw(chunkKey(userKey, gen, i), chunk); err != nil {
			s.dropChunks(userKey, logIndex{Gen: gen, Chunks: i})
			return err
		}
	}

	prev, prevErr := s.index(userKey)
	if err := s.c.put(logsKey(userKey), logIndex{Gen: gen, Chunks: len(chunks)}); err != nil {
		s.dropChunks(userKey, logIndex{Gen: gen, Chunks: len(chunks)})
		return err
	}
	if prevErr == nil {
		s.dropChunks(userKey, prev)
	}
	return nil
}

// chunkLogs encodes logs as JSON arrays of whole entries, each at most limit
// bytes long. An empty list is one empty chunk.
func chunkLogs(logs []models.DailyLogEntry, limit int) ([][]byte, error) {
	chunks := [][]byte{}
	cur := []byte{'['}
	for _, e := range logs {
		raw, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("marshal daily log %s: %w", e.Date, err)
		}
		if len(raw)+2 > limit {
			return nil, fmt.Errorf("daily log %s: %w", e.Date, ErrEntryTooLarge)
		}
		if len(cur) > 1 && len(cur)+1+len(raw)+1 > limit {
			chunks = append(chunks, append(cur, ']'))
			cur = []byte{'['}
		}
		if len(cur) > 1 {
			cur = append(cur, ',')
		}
		cur = append(cur, raw...)
	}
	if len(cur) > 1 || len(chunks) == 0 {
		chunks = append(chunks, append(cur, ']'))
	}
	return chunks, nil
}

func (s *LogStore) Get(userKey string) ([]models.DailyLogEntry, error) {
	idx, err := s.index(userKey)
	if err != nil {
		return nil, err
	}
	logs := []models.DailyLogEntry{}
	for i := 0; i < idx.Chunks; i++ {
		var chunk []models.DailyLogEntry
		if err := s.c.get(chunkKey(userKey, idx.Gen, i), &chunk); err != nil {
			// a chunk was evicted: the list is incomplete
			if cur, err := s.index(userKey); err == nil && cur.Gen == idx.Gen {
				s.Clear(userKey)
			}
			return nil, ErrMiss
		}
		logs = append(logs, chunk...)
	}
	return logs, nil
}

func (s *LogStore) Clear(userKey string) {
	if idx, err := s.index(userKey); err == nil {
		s.dropChunks(userKey, idx)
	}
	s.c.del(logsKey(userKey))
}

func (s *LogStore) index(userKey string) (logIndex, error) {
	var idx logIndex
	err := s.c.get(logsKey(userKey), &idx)
	return idx, err
}

func (s *LogStore) dropChunks(userKey string, idx logIndex) {
	for i := 0; i < idx.Chunks; i++ {
		s.c.del(chunkKey(userKey, idx.Gen, i))
	}
}

// GoalState is the server copy of the goals plus the local draft.
type GoalState struct {
	Server models.GoalSet `json:"server"`
	Draft  models.GoalSet `json:"draft"`
	// Dirty is set when the draft diverged from the server copy.
	Dirty bool `json:"dirty"`
}

// GoalStore holds the goal state per user.
type GoalStore struct {
	c *Cache
}

func NewGoalStore(c *Cache) *GoalStore {
	return &GoalStore{c: c}
}

func goalsKey(userKey string) string { return "goals::" + userKey }

func (s *GoalStore) Put(userKey string, st GoalState) error {
	return s.c.put(goalsKey(userKey), st)
}

func (s *GoalStore) Get(userKey string) (GoalState, error) {
	var st GoalState
	if err := s.c.get(goalsKey(userKey), &st); err != nil {
		return GoalState{}, err
	}
	return st, nil
}

func (s *GoalStore) Clear(userKey string) {
	s.c.del(goalsKey(userKey))
}

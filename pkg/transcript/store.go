package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Entry is one relayed message of a session transcript.
type Entry struct {
	Role string    `json:"role"` // "user" or "model"
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Recorder persists session transcripts.
type Recorder interface {
	Append(ctx context.Context, sessionID string, entry Entry) error
	History(ctx context.Context, sessionID string, limit int64) ([]Entry, error)
}

// RedisStore keeps transcripts as Redis lists, one list per session,
// expiring after the retention window.
type RedisStore struct {
	rdb       *redis.Client
	retention time.Duration
}

func NewRedisStore(rdb *redis.Client, retention time.Duration) *RedisStore {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &RedisStore{
		rdb:       rdb,
		retention: retention,
	}
}

func key(sessionID string) string {
	return "transcript:" + sessionID
}

func (s *RedisStore) Append(ctx context.Context, sessionID string, entry Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript entry: %w", err)
	}

	k := key(sessionID)
	pipe := s.rdb.TxPipeline()
	pipe.RPush(ctx, k, data)
	pipe.Expire(ctx, k, s.retention)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append transcript entry: %w", err)
	}
	return nil
}

func (s *RedisStore) History(ctx context.Context, sessionID string, limit int64) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}

	raw, err := s.rdb.LRange(ctx, key(sessionID), -limit, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	entries := make([]Entry, 0, len(raw))
	for _, item := range raw {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			continue // skip malformed entries rather than failing the read
		}
		entries = append(entries, e)
	}
	return entries, nil
}

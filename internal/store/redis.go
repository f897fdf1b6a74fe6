package store

import (
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"golang.org/x/net/context"
)

// RedisStore keeps records in a Redis list, one JSON document per entry.
type RedisStore struct {
	rdb *redis.Client
	key string
}

// NewRedisStore connects to the Redis instance at redisURL.
func NewRedisStore(redisURL, project string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}
	return &RedisStore{rdb: redis.NewClient(opts), key: RedisKey(project)}, nil
}

// RedisKey returns the list key holding the records of a project.
func RedisKey(project string) string {
	return "zjm:migrated:" + project
}

func (s *RedisStore) Append(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	if err := s.rdb.RPush(ctx, s.key, data).Err(); err != nil {
		return fmt.Errorf("append record: %w", err)
	}
	return nil
}

func (s *RedisStore) ReadAll(ctx context.Context) ([]Record, error) {
	raw, err := s.rdb.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	records := make([]Record, 0, len(raw))
	for i, entry := range raw {
		var rec Record
		if err := json.Unmarshal([]byte(entry), &rec); err != nil {
			return records, fmt.Errorf("read record %d: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

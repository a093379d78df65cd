// Package redisstore keeps the simulation history log in a Redis list.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Simplici0/logicalc/internal/history"
)

// Options configures the Redis connection.
type Options struct {
	Address  string
	Password string
	DB       int
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, opts Options) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Address,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// HistoryStore is a history.Store on a capped Redis list, newest entry at index 0.
type HistoryStore struct {
	client redis.UniversalClient
	key    string
}

var _ history.Store = (*HistoryStore)(nil)

func NewHistoryStore(client redis.UniversalClient, key string) *HistoryStore {
	return &HistoryStore{client: client, key: key}
}

func (s *HistoryStore) Load(ctx context.Context) ([]history.Entry, error) {
	raw, err := s.client.LRange(ctx, s.key, 0, history.MaxEntries-1).Result()
	if err != nil {
		return nil, fmt.Errorf("read history list: %w", err)
	}
	return decode(raw)
}

// Append pushes e and trims the list in a single MULTI/EXEC.
func (s *HistoryStore) Append(ctx context.Context, e history.Entry) ([]history.Entry, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode history entry: %w", err)
	}

	var rng *redis.StringSliceCmd
	if _, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, s.key, data)
		p.LTrim(ctx, s.key, 0, history.MaxEntries-1)
		rng = p.LRange(ctx, s.key, 0, -1)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("append history entry: %w", err)
	}
	return decode(rng.Val())
}

func decode(raw []string) ([]history.Entry, error) {
	entries := make([]history.Entry, 0, len(raw))
	for _, item := range raw {
		var e history.Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("decode history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/go-redis/redis/v8"

	"github.com/verte-zerg/edgeplay/internal/model"
)

// DefaultRedisPrefix namespaces every key written by the Redis backend.
const DefaultRedisPrefix = "edgeplay:"

const historyKey = "sessions"

// RedisOptions configures the Redis backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// Redis stores blobs as plain string keys and history as a list of JSON records.
type Redis struct {
	client *redis.Client
	prefix string
}

// OpenRedis connects to Redis and verifies the connection.
func OpenRedis(ctx context.Context, opts RedisOptions) (*Redis, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		if cerr := client.Close(); cerr != nil {
			// Best-effort close on failed ping.
			_ = cerr
		}
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}
	return NewRedis(client, opts.Prefix), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) key(k string) string {
	return r.prefix + k
}

// Get returns the blob stored under key.
func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	blob, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return blob, true, nil
}

// Set stores blob under key without expiry.
func (r *Redis) Set(ctx context.Context, key string, blob []byte) error {
	return r.client.Set(ctx, r.key(key), blob, 0).Err()
}

// Remove deletes key.
func (r *Redis) Remove(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

// AppendSession pushes a JSON encoded record onto the history list.
func (r *Redis) AppendSession(ctx context.Context, rec model.SessionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return r.client.RPush(ctx, r.key(historyKey), data).Err()
}

// ListSessions reads the history list and applies filter.
func (r *Redis) ListSessions(ctx context.Context, filter model.HistoryFilter) ([]model.SessionRecord, error) {
	items, err := r.client.LRange(ctx, r.key(historyKey), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	records := make([]model.SessionRecord, 0, len(items))
	for _, item := range items {
		var rec model.SessionRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session: %w", err)
		}
		records = append(records, rec)
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].EndedAt.Before(records[j].EndedAt)
	})
	return filterSessions(records, filter), nil
}

// ClearSessions drops the history list.
func (r *Redis) ClearSessions(ctx context.Context) error {
	return r.client.Del(ctx, r.key(historyKey)).Err()
}

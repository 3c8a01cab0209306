// Package store handles persistence of progress blobs and session history.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/verte-zerg/edgeplay/internal/model"
)

// ErrUnsupported is returned for unknown backends.
var ErrUnsupported = errors.New("unsupported store backend")

// KV is the key/blob store progress is persisted in.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, blob []byte) error
	Remove(ctx context.Context, key string) error
}

// History keeps a log of finished play sessions.
type History interface {
	AppendSession(ctx context.Context, rec model.SessionRecord) error
	ListSessions(ctx context.Context, filter model.HistoryFilter) ([]model.SessionRecord, error)
	ClearSessions(ctx context.Context) error
}

// Backend is a store that provides both the KV and the history log.
type Backend interface {
	KV
	History
	Close() error
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options selects and configures a backend.
type Options struct {
	Backend       string
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// Open opens the backend named in opts.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Backend {
	case "", BackendSQLite:
		st, err := OpenSQLite(opts.Path)
		if err != nil {
			return nil, err
		}
		return st, nil
	case BackendRedis:
		st, err := OpenRedis(ctx, RedisOptions{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
			Prefix:   opts.RedisPrefix,
		})
		if err != nil {
			return nil, err
		}
		return st, nil
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, opts.Backend)
	}
}

// filterSessions applies the game/since/last filters to records sorted by end time.
func filterSessions(records []model.SessionRecord, filter model.HistoryFilter) []model.SessionRecord {
	out := make([]model.SessionRecord, 0, len(records))
	for _, rec := range records {
		if filter.GameType != nil && rec.GameType != *filter.GameType {
			continue
		}
		if filter.Since != nil && rec.EndedAt.Before(*filter.Since) {
			continue
		}
		out = append(out, rec)
	}
	if filter.Last > 0 && len(out) > filter.Last {
		out = out[len(out)-filter.Last:]
	}
	return out
}

package store

import (
	"context"
	"sort"
	"sync"

	"github.com/verte-zerg/edgeplay/internal/model"
)

// Memory is a process-local backend for ephemeral runs and tests.
type Memory struct {
	mu       sync.Mutex
	blobs    map[string][]byte
	sessions []model.SessionRecord
}

// NewMemory returns an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{blobs: map[string][]byte{}}
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

// Get returns a copy of the blob stored under key.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), blob...), true, nil
}

// Set stores a copy of blob under key.
func (m *Memory) Set(_ context.Context, key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), blob...)
	return nil
}

// Remove deletes key.
func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	return nil
}

// AppendSession records a finished session.
func (m *Memory) AppendSession(_ context.Context, rec model.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = append(m.sessions, rec)
	return nil
}

// ListSessions returns sessions matching filter ordered by end time.
func (m *Memory) ListSessions(_ context.Context, filter model.HistoryFilter) ([]model.SessionRecord, error) {
	m.mu.Lock()
	records := append([]model.SessionRecord(nil), m.sessions...)
	m.mu.Unlock()
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].EndedAt.Before(records[j].EndedAt)
	})
	return filterSessions(records, filter), nil
}

// ClearSessions drops the history.
func (m *Memory) ClearSessions(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions = nil
	return nil
}

package client

import (
	"context"
	"errors"
	"sync"
)

// ErrMirrorMiss is returned by Mirror.Get when the key has never been
// written.
var ErrMirrorMiss = errors.New("mirror key not found")

// Mirror is the local fallback store behind the content cache. It is
// best-effort and never authoritative: on conflict the server's copy
// always wins. Constructors perform a bounded initialization (open or
// connect with a timeout) and fail terminally instead of retrying.
type Mirror interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, data []byte) error
	Close() error
}

// MemoryMirror keeps mirrored documents in process memory. Useful in
// tests and for callers that only want in-session caching.
type MemoryMirror struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewMemoryMirror() *MemoryMirror {
	return &MemoryMirror{values: make(map[string][]byte)}
}

func (m *MemoryMirror) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	if !ok {
		return nil, ErrMirrorMiss
	}
	data := make([]byte, len(value))
	copy(data, value)
	return data, nil
}

func (m *MemoryMirror) Set(_ context.Context, key string, data []byte) error {
	stored := make([]byte, len(data))
	copy(stored, data)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = stored
	return nil
}

func (m *MemoryMirror) Close() error {
	return nil
}

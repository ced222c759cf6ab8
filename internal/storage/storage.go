// Package storage is the key-value store the repository persists through.
// Values are JSON documents. Failures are logged and reported as false, never
// returned to the caller.
package storage

import (
	"context"
	"encoding/json"

	"github.com/charmbracelet/log"
)

// Keys used by the application.
const (
	KeyTasks     = "tasks"
	KeyFavorites = "favorites"
)

// Backend persists raw string values. Each key is independently atomic;
// there are no multi-key transactions.
type Backend interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Store serializes values to JSON over a Backend.
type Store struct {
	backend Backend
	logger  *log.Logger
}

// New creates a Store.
func New(backend Backend, logger *log.Logger) *Store {
	return &Store{
		backend: backend,
		logger:  logger.WithPrefix("storage"),
	}
}

// Get decodes the value stored under key into dst. It returns false if the key
// is absent, holds JSON null, or cannot be read or decoded.
func (s *Store) Get(ctx context.Context, key string, dst any) bool {
	raw, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Error("read failed", "key", key, "err", err)
		return false
	}
	if !ok || raw == "" || raw == "null" {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		s.logger.Error("decode failed", "key", key, "err", err)
		return false
	}
	return true
}

// Set encodes value and stores it under key.
func (s *Store) Set(ctx context.Context, key string, value any) bool {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Error("encode failed", "key", key, "err", err)
		return false
	}
	if err := s.backend.Set(ctx, key, string(data)); err != nil {
		s.logger.Error("write failed", "key", key, "err", err)
		return false
	}
	s.logger.Debug("saved", "key", key, "bytes", len(data))
	return true
}

// Remove deletes key.
func (s *Store) Remove(ctx context.Context, key string) bool {
	if err := s.backend.Delete(ctx, key); err != nil {
		s.logger.Error("remove failed", "key", key, "err", err)
		return false
	}
	return true
}

// Clear deletes every key.
func (s *Store) Clear(ctx context.Context) bool {
	if err := s.backend.Clear(ctx); err != nil {
		s.logger.Error("clear failed", "err", err)
		return false
	}
	return true
}

// Package kv persists whole collections as JSON documents under string keys.
//
// The Adapter sits between the repositories and a pluggable Backend (bbolt,
// Redis, Postgres or memory). It owns the failure policy: reads degrade to an
// empty collection, writes report a classified error, and quota rejections are
// surfaced to the user through an Alerter before the error is returned.
package kv

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by a Backend when the key holds no value.
	ErrNotFound = errors.New("key not found")

	// ErrUnavailable is returned when the backend could not be opened.
	ErrUnavailable = errors.New("storage unavailable")

	// ErrQuotaExceeded is returned when a write would exceed the configured quota.
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// ErrClosed is returned by backends used after Close.
	ErrClosed = errors.New("storage closed")
)

// Backend is a synchronous byte-oriented key-value store.
// Put must either fully replace the value at key or leave it untouched.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Usage returns the total number of value bytes currently stored.
	Usage(ctx context.Context) (int64, error)
	Close() error
}

// Opener connects to a Backend. It is invoked lazily on first access.
type Opener func(ctx context.Context) (Backend, error)

// Alerter notifies the user synchronously about failures that would
// otherwise lose data silently.
type Alerter interface {
	Alert(message string)
}

// AlertFunc adapts a function to the Alerter interface.
type AlertFunc func(message string)

// Alert calls f(message).
func (f AlertFunc) Alert(message string) {
	f(message)
}

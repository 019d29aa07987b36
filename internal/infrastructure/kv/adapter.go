package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// QuotaAlertMessage is shown to the user when a save is rejected for size.
const QuotaAlertMessage = "Storage is full. Delete todos you no longer need and try again."

// Options configures an Adapter.
type Options struct {
	// Driver names the backend for logs and health output.
	Driver string
	// QuotaBytes caps the total stored value bytes. Zero disables the check.
	QuotaBytes int64
	Alerter    Alerter
	Logger     *zap.Logger
}

// Adapter converts collections to and from stored JSON and isolates backend
// failures from its callers.
type Adapter struct {
	open    Opener
	driver  string
	quota   int64
	alerter Alerter
	logger  *zap.Logger

	once    sync.Once
	backend Backend
	openErr error
}

// New returns an Adapter that opens its backend on first use.
func New(open Opener, opts Options) *Adapter {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Driver == "" {
		opts.Driver = "unknown"
	}
	return &Adapter{
		open:    open,
		driver:  opts.Driver,
		quota:   opts.QuotaBytes,
		alerter: opts.Alerter,
		logger:  opts.Logger.With(zap.String("driver", opts.Driver)),
	}
}

// Driver returns the configured backend name.
func (a *Adapter) Driver() string {
	return a.driver
}

// QuotaBytes returns the configured quota; zero means unlimited.
func (a *Adapter) QuotaBytes() int64 {
	return a.quota
}

// Available reports whether the backend could be opened.
func (a *Adapter) Available(ctx context.Context) bool {
	_, err := a.acquire(ctx)
	return err == nil
}

func (a *Adapter) acquire(ctx context.Context) (Backend, error) {
	a.once.Do(func() {
		if a.open == nil {
			a.openErr = errors.New("no backend configured")
		} else {
			a.backend, a.openErr = a.open(ctx)
		}
		if a.openErr != nil {
			a.logger.Error("storage unavailable", zap.Error(a.openErr))
			a.backend = nil
		}
	})
	if a.backend == nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, a.openErr)
	}
	return a.backend, nil
}

// Get returns the raw value at key. It returns ErrNotFound when absent and
// ErrUnavailable when the backend cannot be reached.
func (a *Adapter) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := a.acquire(ctx)
	if err != nil {
		return nil, err
	}
	return b.Get(ctx, key)
}

// Put replaces the raw value at key after enforcing the quota.
func (a *Adapter) Put(ctx context.Context, key string, value []byte) error {
	b, err := a.acquire(ctx)
	if err != nil {
		a.logger.Debug("write skipped", zap.String("key", key), zap.Error(err))
		return err
	}

	if err := a.checkQuota(ctx, b, key, int64(len(value))); err != nil {
		if errors.Is(err, ErrQuotaExceeded) {
			a.logger.Error("storage quota exceeded", zap.String("key", key), zap.Error(err))
			if a.alerter != nil {
				a.alerter.Alert(QuotaAlertMessage)
			}
			return err
		}
		a.logger.Error("quota check failed", zap.String("key", key), zap.Error(err))
		return err
	}

	if err := b.Put(ctx, key, value); err != nil {
		a.logger.Error("failed to persist value", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (a *Adapter) checkQuota(ctx context.Context, b Backend, key string, size int64) error {
	if a.quota <= 0 {
		return nil
	}
	used, err := b.Usage(ctx)
	if err != nil {
		return fmt.Errorf("measure usage: %w", err)
	}
	var existing int64
	current, err := b.Get(ctx, key)
	switch {
	case err == nil:
		existing = int64(len(current))
	case !errors.Is(err, ErrNotFound):
		return fmt.Errorf("read %s: %w", key, err)
	}
	if projected := used - existing + size; projected > a.quota {
		return fmt.Errorf("%w: %d > %d bytes", ErrQuotaExceeded, projected, a.quota)
	}
	return nil
}

// Remove deletes key. Removing an absent key is not an error.
func (a *Adapter) Remove(ctx context.Context, key string) error {
	b, err := a.acquire(ctx)
	if err != nil {
		return err
	}
	if err := b.Delete(ctx, key); err != nil && !errors.Is(err, ErrNotFound) {
		a.logger.Error("failed to remove value", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Usage returns the total stored value bytes.
func (a *Adapter) Usage(ctx context.Context) (int64, error) {
	b, err := a.acquire(ctx)
	if err != nil {
		return 0, err
	}
	return b.Usage(ctx)
}

// LoadString returns the plain string stored at key and whether it was present.
func (a *Adapter) LoadString(ctx context.Context, key string) (string, bool) {
	raw, err := a.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.logger.Warn("failed to read value", zap.String("key", key), zap.Error(err))
		}
		return "", false
	}
	return string(raw), true
}

// SaveString stores value at key as plain text.
func (a *Adapter) SaveString(ctx context.Context, key, value string) error {
	return a.Put(ctx, key, []byte(value))
}

// Close releases the backend if it was opened.
func (a *Adapter) Close() error {
	a.once.Do(func() {
		a.openErr = ErrClosed
	})
	b := a.backend
	if b == nil {
		return nil
	}
	a.backend, a.openErr = nil, ErrClosed
	return b.Close()
}

// Load returns the collection stored at key. Absent keys, an unavailable
// backend and malformed payloads all yield an empty collection; the latter two
// are logged.
func Load[T any](ctx context.Context, a *Adapter, key string) []T {
	raw, err := a.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			a.logger.Warn("failed to load collection", zap.String("key", key), zap.Error(err))
		}
		return []T{}
	}

	var items []T
	if err := json.Unmarshal(raw, &items); err != nil {
		a.logger.Error("stored collection is malformed", zap.String("key", key), zap.Error(err))
		return []T{}
	}
	if items == nil {
		items = []T{}
	}
	return items
}

// Save serializes items and replaces the value at key. A nil error is success.
func Save[T any](ctx context.Context, a *Adapter, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	payload, err := json.Marshal(items)
	if err != nil {
		a.logger.Error("failed to encode collection", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return a.Put(ctx, key, payload)
}

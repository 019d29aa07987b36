package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/todos/internal/infrastructure/kv"
)

// VersionSource reports the stored schema version.
type VersionSource interface {
	Version(ctx context.Context) string
}

// Monitor checks the store when asked. It keeps the last result so callers
// that only need a cheap answer can use GetStatus.
type Monitor struct {
	adapter  *kv.Adapter
	versions VersionSource
	logger   *zap.Logger
	now      func() time.Time

	mu     sync.RWMutex
	status Status
}

func New(adapter *kv.Adapter, versions VersionSource, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		adapter:  adapter,
		versions: versions,
		logger:   logger,
		now:      time.Now,
	}
}

// Check probes the store and records the result.
func (m *Monitor) Check(ctx context.Context) Status {
	status := Status{
		Driver:     m.adapter.Driver(),
		Available:  m.adapter.Available(ctx),
		QuotaBytes: m.adapter.QuotaBytes(),
		LastCheck:  m.now().UTC(),
	}
	if status.Available {
		usage, err := m.adapter.Usage(ctx)
		if err != nil {
			m.logger.Warn("storage usage check failed", zap.Error(err))
			status.Available = false
		}
		status.UsageBytes = usage
		if m.versions != nil {
			status.SchemaVersion = m.versions.Version(ctx)
		}
	}

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
	return status
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Available
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

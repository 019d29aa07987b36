// Package app wires configuration, storage and use cases into a running
// application shared by the HTTP server and the CLI.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/todos/internal/config"
	"github.com/fastygo/todos/internal/infrastructure/bolt"
	"github.com/fastygo/todos/internal/infrastructure/kv"
	"github.com/fastygo/todos/internal/infrastructure/monitor"
	pgInfra "github.com/fastygo/todos/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/todos/internal/infrastructure/redis"
	"github.com/fastygo/todos/internal/services/migration"
	"github.com/fastygo/todos/pkg/logger"
	repokv "github.com/fastygo/todos/repository/kv"
	categoryUC "github.com/fastygo/todos/usecase/category"
	todoUC "github.com/fastygo/todos/usecase/todo"
)

// App holds the wired components.
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	Adapter    *kv.Adapter
	Store      *repokv.Store
	Migrations *migration.Runner
	Todos      *todoUC.UseCase
	Categories *categoryUC.UseCase
	Monitor    *monitor.Monitor
}

type options struct {
	opener  kv.Opener
	alerter kv.Alerter
	store   []repokv.Option
}

// Option customizes New.
type Option func(*options)

// WithOpener replaces the backend selected by the configured driver.
func WithOpener(open kv.Opener) Option {
	return func(o *options) {
		o.opener = open
	}
}

// WithAlerter routes quota alerts to a.
func WithAlerter(a kv.Alerter) Option {
	return func(o *options) {
		o.alerter = a
	}
}

// WithStoreOptions passes options through to the repository store.
func WithStoreOptions(opts ...repokv.Option) Option {
	return func(o *options) {
		o.store = append(o.store, opts...)
	}
}

// NewLogger builds the application logger from cfg.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	l, err := logger.New(logger.Config{
		Level:      cfg.Logger.Level,
		Encoding:   cfg.Logger.Encoding,
		Output:     cfg.Logger.Output,
		File:       cfg.Logger.File,
		MaxSizeMB:  cfg.Logger.MaxSizeMB,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAgeDays: cfg.Logger.MaxAgeDays,
	})
	if err != nil {
		return nil, err
	}
	return l.With(zap.String("app", cfg.AppName), zap.String("env", cfg.Environment)), nil
}

// Opener returns the backend opener for the configured store driver.
func Opener(cfg *config.Config, log *zap.Logger) (kv.Opener, error) {
	switch cfg.Store.Driver {
	case config.DriverBolt, "":
		return bolt.Opener(cfg.Store.Path, cfg.Store.Bucket, cfg.Store.OpenTimeout.Duration), nil
	case config.DriverRedis:
		return redisInfra.Opener(cfg.Redis), nil
	case config.DriverPostgres:
		return pgInfra.Opener(cfg.Database, cfg.Migrations.Enabled, log), nil
	case config.DriverMemory:
		return kv.NewMemory().Opener(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// New wires the application. The backend is opened lazily on first access.
func New(cfg *config.Config, log *zap.Logger, opts ...Option) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.opener == nil {
		open, err := Opener(cfg, log)
		if err != nil {
			return nil, err
		}
		o.opener = open
	}

	driver := cfg.Store.Driver
	if driver == "" {
		driver = config.DriverBolt
	}
	adapter := kv.New(o.opener, kv.Options{
		Driver:     driver,
		QuotaBytes: cfg.Store.QuotaBytes,
		Alerter:    o.alerter,
		Logger:     log.Named("kv"),
	})

	store := repokv.NewStore(adapter, append([]repokv.Option{repokv.WithLogger(log.Named("repository"))}, o.store...)...)
	runner := migration.NewRunner(adapter, log.Named("migration"))

	return &App{
		Config:     cfg,
		Logger:     log,
		Adapter:    adapter,
		Store:      store,
		Migrations: runner,
		Todos:      todoUC.New(store.Todos(), store.Categories(), log.Named("todo")),
		Categories: categoryUC.New(store.Categories(), log.Named("category")),
		Monitor:    monitor.New(adapter, runner, log.Named("monitor")),
	}, nil
}

// Migrate brings stored data to the current schema version. It is called at
// startup before any todo is read.
func (a *App) Migrate(ctx context.Context) (migration.Result, error) {
	res, err := a.Migrations.Run(ctx)
	if err != nil {
		a.Logger.Error("migration failed", zap.Error(err))
		return res, err
	}
	if res.Malformed {
		a.Logger.Warn("stored todos could not be migrated")
	}
	return res, nil
}

// Close releases the storage backend.
func (a *App) Close() error {
	return a.Adapter.Close()
}

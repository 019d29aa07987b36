package postgres

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/fastygo/todos/internal/config"
	"github.com/fastygo/todos/internal/infrastructure/kv"
)

// TableName holds one row per stored key.
const TableName = "kv_entries"

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// Store keeps values in the kv_entries table.
type Store struct {
	db *sqlx.DB
}

var _ kv.Backend = (*Store)(nil)

// NewStore wraps db. The store closes db on Close.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Opener connects, applies schema migrations when runMigrations is set, and
// returns the store.
func Opener(cfg config.DatabaseConfig, runMigrations bool, logger *zap.Logger) kv.Opener {
	return func(ctx context.Context) (kv.Backend, error) {
		if runMigrations {
			if err := RunMigrations(cfg.URL, logger); err != nil {
				return nil, err
			}
		}
		db, err := Connect(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return NewStore(db), nil
	}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := psql.Select("value").From(TableName).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, err
	}

	var value string
	if err := s.db.GetContext(ctx, &value, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, kv.ErrNotFound
		}
		return nil, err
	}
	return []byte(value), nil
}

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	query, args, err := psql.Insert(TableName).
		Columns("key", "value", "updated_at").
		Values(key, string(value), sq.Expr("NOW()")).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()").
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *Store) Delete(ctx context.Context, key string) error {
	query, args, err := psql.Delete(TableName).Where(sq.Eq{"key": key}).ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

func (s *Store) Usage(ctx context.Context) (int64, error) {
	query, args, err := psql.Select("COALESCE(SUM(octet_length(value)), 0)").From(TableName).ToSql()
	if err != nil {
		return 0, err
	}
	var total int64
	if err := s.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

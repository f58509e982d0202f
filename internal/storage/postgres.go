package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	tx "github.com/Thiht/transactor/pgx"
	"github.com/jackc/pgx/v5"

	"github.com/sand/bot-marketplace/backend/pkg/database"
)

const documentsTable = "kv_documents"

// PostgresStore keeps values in the kv_documents table.
type PostgresStore struct {
	logger     *slog.Logger
	db         tx.DBGetter
	transactor *tx.Transactor
	builder    sq.StatementBuilderType
}

func NewPostgresStore(logger *slog.Logger, pg *database.Postgres) *PostgresStore {
	return &PostgresStore{
		logger:     logger,
		db:         pg.DBGetter,
		transactor: pg.Transactor,
		builder:    sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	query, args, err := s.builder.
		Select("value").
		From(documentsTable).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	var value []byte
	err = s.db(ctx).QueryRow(ctx, query, args...).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document %q: %w", key, err)
	}
	return value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	query, args, err := s.builder.
		Insert(documentsTable).
		Columns("key", "value", "updated_at").
		Values(key, value, time.Now()).
		Suffix("ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert query: %w", err)
	}

	if _, err = s.db(ctx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert document %q: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	query, args, err := s.builder.
		Delete(documentsTable).
		Where(sq.Eq{"key": key}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete query: %w", err)
	}

	if _, err = s.db(ctx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to delete document %q: %w", key, err)
	}
	return nil
}

// Update serializes writers of the same key with a transaction scoped advisory
// lock, which also covers keys that have no row yet.
func (s *PostgresStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return s.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		if _, err := s.db(txCtx).Exec(txCtx, "SELECT pg_advisory_xact_lock(hashtext($1))", key); err != nil {
			return fmt.Errorf("failed to lock document %q: %w", key, err)
		}

		current, err := s.Get(txCtx, key)
		exists := true
		if errors.Is(err, ErrNotFound) {
			exists = false
		} else if err != nil {
			return err
		}

		next, err := fn(current, exists)
		if err != nil {
			return err
		}
		return s.Set(txCtx, key, next)
	})
}

// Close is a no-op, the pool is owned by the caller.
func (s *PostgresStore) Close() error { return nil }

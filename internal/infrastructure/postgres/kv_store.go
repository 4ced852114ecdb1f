package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"sobgamecoin/internal/storage"
)

const createKVTable = `
	CREATE TABLE IF NOT EXISTS kv_entries (
		k TEXT PRIMARY KEY,
		v BYTEA NOT NULL,
		version BIGINT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`

type KVStore struct {
	Pool *pgxpool.Pool
}

func NewKVStore(pool *pgxpool.Pool) *KVStore {
	return &KVStore{Pool: pool}
}

func (s *KVStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.Pool.Exec(ctx, createKVTable); err != nil {
		return fmt.Errorf("creating kv_entries table: %w", err)
	}
	return nil
}

func (s *KVStore) Get(ctx context.Context, key string) (*storage.Entry, error) {
	row := s.Pool.QueryRow(ctx, `SELECT k, v, version FROM kv_entries WHERE k=$1`, key)

	var e storage.Entry
	if err := row.Scan(&e.Key, &e.Value, &e.Version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("querying key %s: %w", key, err)
	}
	return &e, nil
}

func (s *KVStore) Set(ctx context.Context, key string, value []byte) (int64, error) {
	var version int64
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO kv_entries (k, v, version) VALUES ($1, $2, 1)
		ON CONFLICT (k) DO UPDATE
		SET v=EXCLUDED.v, version=kv_entries.version+1, updated_at=now()
		RETURNING version
	`, key, value).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("upserting key %s: %w", key, err)
	}
	return version, nil
}

func (s *KVStore) Create(ctx context.Context, key string, value []byte) (int64, error) {
	var version int64
	err := s.Pool.QueryRow(ctx, `
		INSERT INTO kv_entries (k, v, version) VALUES ($1, $2, 1)
		ON CONFLICT (k) DO NOTHING
		RETURNING version
	`, key, value).Scan(&version)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, storage.ErrKeyExists
	}
	if err != nil {
		return 0, fmt.Errorf("inserting key %s: %w", key, err)
	}
	return version, nil
}

func (s *KVStore) CompareAndSwap(ctx context.Context, key string, value []byte, version int64) (int64, error) {
	var next int64
	err := s.Pool.QueryRow(ctx, `
		UPDATE kv_entries
		SET v=$2, version=version+1, updated_at=now()
		WHERE k=$1 AND version=$3
		RETURNING version
	`, key, value, version).Scan(&next)
	if errors.Is(err, pgx.ErrNoRows) {
		if _, err := s.Get(ctx, key); err != nil {
			return 0, err
		}
		return 0, storage.ErrVersionConflict
	}
	if err != nil {
		return 0, fmt.Errorf("updating key %s: %w", key, err)
	}
	return next, nil
}

func (s *KVStore) Remove(ctx context.Context, key string) error {
	if _, err := s.Pool.Exec(ctx, `DELETE FROM kv_entries WHERE k=$1`, key); err != nil {
		return fmt.Errorf("deleting key %s: %w", key, err)
	}
	return nil
}

func (s *KVStore) List(ctx context.Context, prefix string) ([]storage.Entry, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT k, v, version FROM kv_entries
		WHERE k LIKE $1
		ORDER BY k
	`, likePrefix(prefix))
	if err != nil {
		return nil, fmt.Errorf("listing prefix %s: %w", prefix, err)
	}
	defer rows.Close()

	entries := make([]storage.Entry, 0)
	for rows.Next() {
		var e storage.Entry
		if err := rows.Scan(&e.Key, &e.Value, &e.Version); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePrefix(prefix string) string {
	return likeEscaper.Replace(prefix) + "%"
}

var _ storage.Store = (*KVStore)(nil)

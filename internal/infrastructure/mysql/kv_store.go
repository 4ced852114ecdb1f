package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"sobgamecoin/internal/storage"
)

const createKVTable = `
	CREATE TABLE IF NOT EXISTS kv_entries (
		k VARBINARY(191) NOT NULL PRIMARY KEY,
		v LONGBLOB NOT NULL,
		version BIGINT NOT NULL,
		updatedAt DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6)
	)`

type MySQLKVStore struct {
	db      *sql.DB
	timeout time.Duration
}

func NewMySQLKVStore(db *sql.DB, timeout time.Duration) *MySQLKVStore {
	return &MySQLKVStore{db: db, timeout: timeout}
}

func (s *MySQLKVStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createKVTable); err != nil {
		return fmt.Errorf("creating kv_entries table: %w", err)
	}
	return nil
}

func (s *MySQLKVStore) Get(ctx context.Context, key string) (*storage.Entry, error) {
	query := `SELECT k, v, version FROM kv_entries WHERE k = ?`

	var e storage.Entry
	err := s.db.QueryRowContext(ctx, query, key).Scan(&e.Key, &e.Value, &e.Version)
	if err == sql.ErrNoRows {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying key %s: %w", key, err)
	}

	return &e, nil
}

func (s *MySQLKVStore) Set(ctx context.Context, key string, value []byte) (int64, error) {
	txCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.BeginTx(txCtx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	// MySQL ignores rollback if already committed.
	defer tx.Rollback()

	upsert := `
		INSERT INTO kv_entries (k, v, version) VALUES (?, ?, 1)
		ON DUPLICATE KEY UPDATE v = VALUES(v), version = version + 1
	`
	if _, err := tx.ExecContext(txCtx, upsert, key, value); err != nil {
		return 0, fmt.Errorf("upserting key %s: %w", key, err)
	}

	var version int64
	if err := tx.QueryRowContext(txCtx, `SELECT version FROM kv_entries WHERE k = ?`, key).Scan(&version); err != nil {
		return 0, fmt.Errorf("reading version of key %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing key %s: %w", key, err)
	}

	return version, nil
}

func (s *MySQLKVStore) Create(ctx context.Context, key string, value []byte) (int64, error) {
	query := `INSERT INTO kv_entries (k, v, version) VALUES (?, ?, 1)`

	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		if isDuplicateEntry(err) {
			return 0, storage.ErrKeyExists
		}
		return 0, fmt.Errorf("inserting key %s: %w", key, err)
	}

	return 1, nil
}

func (s *MySQLKVStore) CompareAndSwap(ctx context.Context, key string, value []byte, version int64) (int64, error) {
	query := `UPDATE kv_entries SET v = ?, version = version + 1 WHERE k = ? AND version = ?`

	result, err := s.db.ExecContext(ctx, query, value, key, version)
	if err != nil {
		return 0, fmt.Errorf("updating key %s: %w", key, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if _, err := s.Get(ctx, key); err != nil {
			return 0, err
		}
		return 0, storage.ErrVersionConflict
	}

	return version + 1, nil
}

func (s *MySQLKVStore) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_entries WHERE k = ?`, key); err != nil {
		return fmt.Errorf("deleting key %s: %w", key, err)
	}
	return nil
}

func (s *MySQLKVStore) List(ctx context.Context, prefix string) ([]storage.Entry, error) {
	query := `SELECT k, v, version FROM kv_entries WHERE k LIKE ? ORDER BY k`

	rows, err := s.db.QueryContext(ctx, query, escapeLike(prefix)+"%")
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

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	return entries, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var _ storage.Store = (*MySQLKVStore)(nil)

package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/fwojciec/pagesense"
)

// Compile-time interface verification.
var _ pagesense.KV = (*KVService)(nil)

// KVService implements pagesense.KV using SQLite. Expiry is enforced
// lazily: expired rows are ignored on read and removed on the next write
// of the same key or by PurgeExpired.
type KVService struct {
	db *DB
}

// NewKVService creates a new KVService.
func NewKVService(db *DB) *KVService {
	return &KVService{db: db}
}

// Get returns the value stored under key, or false if the key is absent or
// its TTL has elapsed.
func (s *KVService) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	var expiresAt int64

	err := s.db.QueryRowContext(ctx, `
		SELECT value, expires_at
		FROM kv
		WHERE key = ?
	`, key).Scan(&value, &expiresAt)

	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if time.Now().UnixMilli() >= expiresAt {
		// Best-effort cleanup of the stale row.
		_, _ = s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key)
		return nil, false, nil
	}

	return value, true, nil
}

// Set stores value under key, replacing any existing entry and its expiry.
func (s *KVService) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl).UnixMilli()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`, key, value, expiresAt)

	return err
}

// Delete removes the entry stored under key, if any.
func (s *KVService) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE key = ?", key)
	return err
}

// PurgeExpired removes every row whose TTL has elapsed and returns the
// number of rows removed.
func (s *KVService) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE expires_at <= ?", time.Now().UnixMilli())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

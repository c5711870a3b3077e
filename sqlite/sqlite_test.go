package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/pagesense/sqlite"
	"github.com/stretchr/testify/require"
)

func TestDB_Open(t *testing.T) {
	t.Parallel()

	t.Run("applies kv schema on open", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(":memory:")
		require.NoError(t, db.Open())
		defer db.Close()

		var count int
		err := db.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM kv").Scan(&count)
		require.NoError(t, err)
		require.Zero(t, count)
	})

	t.Run("unwritable path errors", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB("/nonexistent/path/cache.db")
		require.Error(t, db.Open())
	})

	t.Run("file databases run in WAL mode", func(t *testing.T) {
		t.Parallel()

		db := sqlite.NewDB(t.TempDir() + "/cache.db")
		require.NoError(t, db.Open())
		defer db.Close()

		var mode string
		err := db.QueryRowContext(context.Background(), "PRAGMA journal_mode").Scan(&mode)
		require.NoError(t, err)
		require.Equal(t, "wal", mode)
	})

	t.Run("data survives reopen", func(t *testing.T) {
		t.Parallel()

		path := t.TempDir() + "/cache.db"
		ctx := context.Background()

		db := sqlite.NewDB(path)
		require.NoError(t, db.Open())
		kv := sqlite.NewKVService(db)
		require.NoError(t, kv.Set(ctx, "k", []byte("v"), time.Hour))
		require.NoError(t, db.Close())

		db = sqlite.NewDB(path)
		require.NoError(t, db.Open())
		defer db.Close()

		value, ok, err := sqlite.NewKVService(db).Get(ctx, "k")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, []byte("v"), value)
	})
}

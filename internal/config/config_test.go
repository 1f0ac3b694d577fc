package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, key := range []string{"PORT", "LOG_LEVEL", "AUCTION_STORE", "AUCTION_MYSQL_DSN", "AUCTION_LOCK_WAIT"} {
			t.Setenv(key, "")
		}

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, ":8080", cfg.Port)
		require.Equal(t, "info", cfg.LogLevel)
		require.Equal(t, StoreMemory, cfg.Store)
		require.Equal(t, 5*time.Second, cfg.LockWait)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("PORT", "9090")
		t.Setenv("LOG_LEVEL", "debug")
		t.Setenv("AUCTION_LOCK_WAIT", "250ms")

		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, ":9090", cfg.Port)
		require.Equal(t, "debug", cfg.LogLevel)
		require.Equal(t, 250*time.Millisecond, cfg.LockWait)
	})

	t.Run("mysql_requires_dsn", func(t *testing.T) {
		t.Setenv("AUCTION_STORE", "mysql")
		t.Setenv("AUCTION_MYSQL_DSN", "")

		_, err := Load()
		require.Error(t, err)

		t.Setenv("AUCTION_MYSQL_DSN", "user:pass@tcp(localhost:3306)/auction?parseTime=true")
		cfg, err := Load()
		require.NoError(t, err)
		require.Equal(t, StoreMySQL, cfg.Store)
	})

	t.Run("unknown_store", func(t *testing.T) {
		t.Setenv("AUCTION_STORE", "sqlite")
		_, err := Load()
		require.Error(t, err)
	})

	t.Run("bad_lock_wait", func(t *testing.T) {
		t.Setenv("AUCTION_LOCK_WAIT", "soon")
		_, err := Load()
		require.Error(t, err)
	})
}

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("COOKIE_SECURE", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":5000", cfg.ServerAddr)
	require.Equal(t, "sqlite", cfg.DBDriver)
	require.Equal(t, "ecommerce.db", cfg.DatabaseURL)
	require.Equal(t, 24*time.Hour, cfg.SessionTTL)
	require.Equal(t, "db", cfg.SessionBackend)
	require.False(t, cfg.CookieSecure)
	require.False(t, cfg.CSRFEnabled)
}

func TestLoadConfig_CookieSecureDefault(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret")
	t.Setenv("COOKIE_SECURE", "")

	t.Run("postgres", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "postgres")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		require.True(t, cfg.CookieSecure)
	})
	t.Run("sqlite explicit", func(t *testing.T) {
		t.Setenv("DB_DRIVER", "sqlite")
		t.Setenv("COOKIE_SECURE", "true")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		require.True(t, cfg.CookieSecure)
	})
	t.Run("file sets it for postgres", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("db_driver: postgres\ncookie_secure: false\n"), 0o600))
		t.Setenv("CONFIG_FILE", path)
		t.Setenv("DB_DRIVER", "")
		cfg, err := LoadConfig()
		require.NoError(t, err)
		require.False(t, cfg.CookieSecure)
	})
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server_addr: ":9000"
db_driver: postgres
database_url: "postgres://u:p@localhost:5432/shop"
session_secret: from-file
session_ttl: 2h
kafka_brokers: ["k1:9092", "k2:9092"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("SERVER_ADDR", ":7000")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("COOKIE_SECURE", "false")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":7000", cfg.ServerAddr)
	require.Equal(t, "postgres", cfg.DBDriver)
	require.Equal(t, "from-file", cfg.SessionSecret)
	require.Equal(t, 2*time.Hour, cfg.SessionTTL)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	require.False(t, cfg.CookieSecure)
}

func TestLoadConfig_BadValues(t *testing.T) {
	t.Setenv("SESSION_SECRET", "secret")

	t.Run("ttl", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "tomorrow")
		_, err := LoadConfig()
		require.Error(t, err)
	})
	t.Run("redis without addr", func(t *testing.T) {
		t.Setenv("SESSION_BACKEND", "redis")
		_, err := LoadConfig()
		require.Error(t, err)
	})
	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("SESSION_BACKEND", "memcached")
		_, err := LoadConfig()
		require.Error(t, err)
	})
}

func TestCSV(t *testing.T) {
	require.Nil(t, CSV(""))
	require.Equal(t, []string{"a", "b"}, CSV(" a , ,b"))
}

func TestInitDB_SQLite(t *testing.T) {
	cfg := defaults()
	cfg.DatabaseURL = filepath.Join(t.TempDir(), "shop.db")

	db, err := InitDB(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	for _, table := range []string{"users", "products", "cart_items", "sessions"} {
		require.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestInitDB_UnknownDriver(t *testing.T) {
	cfg := defaults()
	cfg.DBDriver = "oracle"

	_, err := InitDB(context.Background(), cfg)
	require.Error(t, err)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := defaults()
	cfg.RedisAddr = mr.Addr()

	rdb, err := NewRedisClient(context.Background(), cfg)
	require.NoError(t, err)
	defer rdb.Close()

	require.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	mr.CheckGet(t, "k", "v")
}

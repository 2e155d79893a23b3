package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadReadsPoolSettings(t *testing.T) {
	t.Setenv("DATABASE_MAX_IDLE_CONN", "4")
	t.Setenv("DATABASE_MAX_OPEN_CONN", "16")
	t.Setenv("DATABASE_CONN_MAX_LIFETIME", "300")
	t.Setenv("DATABASE_CONN_MAX_IDLE_TIME", "60")

	cfg := Load()

	require.Equal(t, 4, cfg.DBMaxIdleConn)
	require.Equal(t, 16, cfg.DBMaxOpenConn)
	require.Equal(t, 300, cfg.DBConnMaxLifetime)
	require.Equal(t, 60, cfg.DBConnMaxIdleTime)
}

func TestDatabaseConfig(t *testing.T) {
	cfg := Config{
		DBType:            "postgres",
		DBHost:            "db.internal",
		DBPort:            "5432",
		DBName:            "opencollective",
		DBUser:            "oc",
		DBPassword:        "secret",
		DBSSLMode:         "require",
		DBMaxIdleConn:     2,
		DBMaxOpenConn:     8,
		DBConnMaxLifetime: 120,
		DBConnMaxIdleTime: 30,
	}

	got := DatabaseConfig(cfg)

	require.Equal(t, "postgres", got.Type)
	require.Equal(t, "db.internal", got.Host)
	require.Equal(t, "5432", got.Port)
	require.Equal(t, "opencollective", got.Name)
	require.Equal(t, "oc", got.User)
	require.Equal(t, "secret", got.Password)
	require.Equal(t, "require", got.SSLMode)
	require.Equal(t, 2, got.MaxIdleConn)
	require.Equal(t, 8, got.MaxOpenConn)
	require.Equal(t, 120, got.ConnMaxLifetime)
	require.Equal(t, 30, got.ConnMaxIdleTime)
}

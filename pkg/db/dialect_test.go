package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectKnownTypes(t *testing.T) {
	cfg := Config{
		Host:     "localhost",
		Port:     "5432",
		Name:     "opencollective",
		User:     "oc",
		Password: "secret",
		SSLMode:  "disable",
	}

	for _, typ := range []string{"mysql", "postgres", "sqlite"} {
		cfg.Type = typ
		dialect, err := Dialect(cfg)
		require.NoError(t, err)
		assert.NotNil(t, dialect)
	}
}

func TestDialectUnsupportedType(t *testing.T) {
	_, err := Dialect(Config{Type: "oracle"})
	require.Error(t, err)
}

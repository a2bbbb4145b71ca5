package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPoolConfig(t *testing.T) {
	cfg := DefaultPoolConfig("postgres://localhost/faceverify")

	assert.Equal(t, "postgres://localhost/faceverify", cfg.DSN)
	assert.Equal(t, int32(5), cfg.MaxConns)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
	assert.Equal(t, 5*time.Second, cfg.ConnectTimeout)
}

func TestNewPool_InvalidDSN(t *testing.T) {
	_, err := NewPool(context.Background(), DefaultPoolConfig("not a url ::"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse database url")
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrationsFS.ReadDir("migrations")
	require.NoError(t, err)

	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.Contains(t, names, "000001_create_evaluation_runs.up.sql")
	assert.Contains(t, names, "000001_create_evaluation_runs.down.sql")
}

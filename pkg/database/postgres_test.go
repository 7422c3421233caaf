package database

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPostgresPool_InvalidURL(t *testing.T) {
	_, err := NewPostgresPool(context.Background(), "postgres://%zz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse database URL")
}

func TestPoolOptions(t *testing.T) {
	cfg, err := pgxpool.ParseConfig("postgres://u:p@localhost:5432/db")
	require.NoError(t, err)

	WithMaxConns(7)(cfg)
	WithApplicationName("insights-api")(cfg)
	WithMaxConns(0)(cfg)

	assert.Equal(t, int32(7), cfg.MaxConns)
	assert.Equal(t, "insights-api", cfg.ConnConfig.RuntimeParams["application_name"])
}

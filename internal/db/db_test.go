package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-chat/internal/config"
)

func TestConnectSQLiteMemoryAndSeed(t *testing.T) {
	ctx := context.Background()
	database, err := Connect(ctx, config.DatabaseConfig{Driver: DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	created, err := Seed(ctx, database)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultRooms), created)

	created, err = Seed(ctx, database)
	require.NoError(t, err)
	assert.Zero(t, created, "seeding is idempotent")

	var count int
	require.NoError(t, database.GetContext(ctx, &count, `SELECT COUNT(*) FROM rooms`))
	assert.Equal(t, len(DefaultRooms), count)
}

func TestMigrateIsRepeatable(t *testing.T) {
	ctx := context.Background()
	database, err := Connect(ctx, config.DatabaseConfig{Driver: DriverSQLite})
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	require.NoError(t, Migrate(ctx, database))
}

func TestConnectUnsupportedDriver(t *testing.T) {
	_, err := Connect(context.Background(), config.DatabaseConfig{Driver: "mongo"})
	require.Error(t, err)
}

func TestNowIsUTCMicroseconds(t *testing.T) {
	now := Now()
	assert.Equal(t, "UTC", now.Location().String())
	assert.Zero(t, now.Nanosecond()%1000)
}

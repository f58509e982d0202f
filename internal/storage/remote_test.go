package storage

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sand/bot-marketplace/backend/pkg/database"
)

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping postgres test in short mode")
	}
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	logger := discardLogger()

	require.NoError(t, database.RunMigrations(logger, databaseURL))

	pg, err := database.New(ctx, databaseURL, database.MaxPoolSize(25))
	require.NoError(t, err)
	defer pg.Close()

	_, err = pg.Pool.Exec(ctx, "DELETE FROM kv_documents")
	require.NoError(t, err)

	runStoreSuite(t, NewPostgresStore(logger, pg))
}

func TestRedisStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis test in short mode")
	}
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR is not set")
	}

	ctx := context.Background()
	store, err := NewRedisStore(ctx, discardLogger(), addr, "", 0, "marketplace-test:"+t.Name()+":")
	require.NoError(t, err)
	defer store.Close()

	for _, key := range []string{"missing", "k1", "k2", "k3", "counter"} {
		require.NoError(t, store.Delete(ctx, key))
	}

	runStoreSuite(t, store)
}

package usecases

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sand/bot-marketplace/backend/internal/entities"
	"github.com/sand/bot-marketplace/backend/internal/storage"
	"github.com/sand/bot-marketplace/backend/internal/usecases/repository"
)

func TestLogKeepsMostRecentEntries(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, DerivationPlaceholder)
	env.logs.limit = 5

	for i := range 8 {
		_, err := env.logs.Log(ctx, entities.LogInfo, fmt.Sprintf("entry %d", i), map[string]int{"i": i})
		require.NoError(t, err)
	}

	logs, err := env.logs.GetLogs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, logs, 5)
	for i, entry := range logs {
		assert.Equal(t, fmt.Sprintf("entry %d", 7-i), entry.Message)
		assert.NotEmpty(t, entry.ID)
	}
	assert.JSONEq(t, `{"i":7}`, string(logs[0].Details))

	page, err := env.logs.GetLogs(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, logs[:2], page)
}

func TestLogValidatesInput(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, DerivationPlaceholder)

	_, err := env.logs.Log(ctx, entities.LogType("DEBUG"), "nope", nil)
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.logs.Log(ctx, entities.LogInfo, "nope", map[string]any{"ch": make(chan int)})
	require.ErrorIs(t, err, ErrInvalidInput)

	entry, err := env.logs.Log(ctx, entities.LogUserAction, "<script>alert(1)</script>", nil)
	require.NoError(t, err)
	assert.Equal(t, "scriptalert(1)/script", entry.Message)
	assert.Nil(t, entry.Details)
}

func TestClearLogs(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, DerivationPlaceholder)

	_, err := env.logs.Log(ctx, entities.LogWarning, "something", nil)
	require.NoError(t, err)
	require.NoError(t, env.logs.ClearLogs(ctx))

	logs, err := env.logs.GetLogs(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, logs)
}

func TestLogPublishesToHub(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, DerivationPlaceholder)

	entries, unsubscribe := env.hub.Subscribe()
	assert.Equal(t, 1, env.hub.Subscribers())

	saved, err := env.logs.Log(ctx, entities.LogError, "boom", nil)
	require.NoError(t, err)
	assert.Equal(t, saved, <-entries)

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, env.hub.Subscribers())
	_, open := <-entries
	assert.False(t, open)
}

func TestHubDropsForSlowSubscribers(t *testing.T) {
	hub := NewLogHub()
	entries, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	for range subscriberBuffer + 10 {
		hub.Publish(entities.SystemLog{Message: "x"})
	}
	assert.Len(t, entries, subscriberBuffer)
}

func TestStatsCounters(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, DerivationPlaceholder)

	stats, err := env.logs.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.DefaultAppStats(), stats)

	_, err = env.logs.IncrementView(ctx)
	require.NoError(t, err)
	stats, err = env.logs.IncrementView(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalViews)

	stats, err = env.logs.IncrementRevenue(ctx, 29.99)
	require.NoError(t, err)
	assert.InDelta(t, 29.99, stats.TotalRevenue, 1e-9)

	_, err = env.logs.IncrementRevenue(ctx, -1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestDashboardCountsCollections(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, DerivationPlaceholder)

	passive := entities.BotStatusPassive
	_, err := env.marketplace.UpdateBot(ctx, "2", entities.BotPatch{Status: &passive})
	require.NoError(t, err)

	stats, err := env.logs.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.TotalUsers)
	assert.Equal(t, int64(9), stats.ActiveBots)
}

type brokenStore struct{ storage.Store }

func (brokenStore) Get(context.Context, string) ([]byte, error) {
	return nil, fmt.Errorf("connection refused")
}

func (brokenStore) Update(context.Context, string, storage.UpdateFunc) error {
	return fmt.Errorf("connection refused")
}

func TestLoggingSurfacesPersistenceFailures(t *testing.T) {
	ctx := context.Background()
	store := brokenStore{}
	logger := testLogger()
	logs := NewLoggingService(logger,
		repository.NewLogsRepository(logger, store),
		repository.NewStatsRepository(logger, store),
		repository.NewUsersRepository(logger, store, nil),
		repository.NewBotsRepository(logger, store, nil),
		nil, 0)

	_, err := logs.Log(ctx, entities.LogInfo, "x", nil)
	require.ErrorIs(t, err, ErrPersistenceUnavailable)

	_, err = logs.GetLogs(ctx, 10)
	require.ErrorIs(t, err, ErrPersistenceUnavailable)

	_, err = logs.Dashboard(ctx)
	require.ErrorIs(t, err, ErrPersistenceUnavailable)
}

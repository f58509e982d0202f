package repository

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.openly.dev/pointy"

	"github.com/sand/bot-marketplace/backend/internal/entities"
	"github.com/sand/bot-marketplace/backend/internal/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedBots() []entities.Bot {
	return []entities.Bot{
		{ID: "1", Name: "Seeded", Price: 100, Status: entities.BotStatusActive},
	}
}

func TestCollectionCreateGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewBotsRepository(testLogger(), storage.NewMemoryStore(), seedBots)

	before, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, before, 1)

	input := entities.Bot{
		Name:      "Weather",
		Price:     250,
		Category:  "Utilities",
		Status:    entities.BotStatusActive,
		Features:  []string{"forecast"},
		CreatedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}
	created, err := repo.Create(ctx, input)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	fetched, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	input.ID = created.ID
	assert.Equal(t, input, fetched)

	after, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, after, len(before)+1)
	assert.Equal(t, created.ID, after[0].ID, "new documents are prepended")

	require.NoError(t, repo.Delete(ctx, created.ID))

	_, err = repo.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrDocumentNotFound)

	final, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, final, len(before))
}

func TestCollectionUpdateMergesByID(t *testing.T) {
	ctx := context.Background()
	repo := NewBotsRepository(testLogger(), storage.NewMemoryStore(), seedBots)

	passive := entities.BotStatusPassive
	patch := entities.BotPatch{Price: pointy.Float64(300), Status: &passive}
	updated, err := repo.Update(ctx, "1", func(b *entities.Bot) error {
		patch.Apply(b)
		b.ID = "tampered"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "1", updated.ID)
	assert.Equal(t, "Seeded", updated.Name)
	assert.Equal(t, 300.0, updated.Price)
	assert.Equal(t, entities.BotStatusPassive, updated.Status)

	_, err = repo.Update(ctx, "missing", func(*entities.Bot) error { return nil })
	require.ErrorIs(t, err, ErrDocumentNotFound)

	require.ErrorIs(t, repo.Delete(ctx, "missing"), ErrDocumentNotFound)
}

func TestCollectionSeedOnce(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	repo := NewBotsRepository(testLogger(), store, seedBots)

	seeded, err := repo.Seed(ctx)
	require.NoError(t, err)
	assert.True(t, seeded)

	require.NoError(t, repo.Delete(ctx, "1"))

	seeded, err = repo.Seed(ctx)
	require.NoError(t, err)
	assert.False(t, seeded, "an emptied collection is not reseeded")

	items, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCollectionConcurrentCreates(t *testing.T) {
	ctx := context.Background()
	repo := NewBotsRepository(testLogger(), storage.NewMemoryStore(), nil)

	var wg sync.WaitGroup
	for range 25 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Create(ctx, entities.Bot{Name: "parallel"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	items, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 25)
}

type failingStore struct {
	storage.Store
}

func (failingStore) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func (failingStore) Update(context.Context, string, storage.UpdateFunc) error {
	return errors.New("disk on fire")
}

func TestCollectionPersistenceUnavailable(t *testing.T) {
	ctx := context.Background()
	repo := NewBotsRepository(testLogger(), failingStore{}, seedBots)

	_, err := repo.List(ctx)
	require.ErrorIs(t, err, ErrPersistenceUnavailable)

	_, err = repo.Create(ctx, entities.Bot{Name: "x"})
	require.ErrorIs(t, err, ErrPersistenceUnavailable)

	stats := NewStatsRepository(testLogger(), failingStore{})
	_, err = stats.Get(ctx)
	require.ErrorIs(t, err, ErrPersistenceUnavailable)
}

func TestLogsRepositoryAppendCaps(t *testing.T) {
	ctx := context.Background()
	repo := NewLogsRepository(testLogger(), storage.NewMemoryStore())

	for i := range 7 {
		_, err := repo.Append(ctx, entities.SystemLog{Type: entities.LogInfo, Message: string(rune('a' + i))}, 5)
		require.NoError(t, err)
	}

	items, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 5)
	assert.Equal(t, "g", items[0].Message)
	assert.Equal(t, "c", items[4].Message)

	require.NoError(t, repo.Clear(ctx))
	items, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestStatsRepositoryDefaultsAndUpdate(t *testing.T) {
	ctx := context.Background()
	repo := NewStatsRepository(testLogger(), storage.NewMemoryStore())

	stats, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.DefaultAppStats(), stats)

	updated, err := repo.Update(ctx, func(s *entities.AppStats) { s.TotalViews += 2 })
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.TotalViews)
	assert.Equal(t, int64(124), updated.TotalUsers)
}

func TestTransactionsRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewTransactionsRepository(testLogger(), storage.NewMemoryStore())
	now := time.Now()

	_, err := repo.Create(ctx, entities.CryptoTransaction{OwnerID: "a", Status: entities.TransactionProcessing, Date: now.Add(-time.Hour)})
	require.NoError(t, err)
	_, err = repo.Create(ctx, entities.CryptoTransaction{OwnerID: "a", Status: entities.TransactionProcessing, Date: now})
	require.NoError(t, err)
	_, err = repo.Create(ctx, entities.CryptoTransaction{OwnerID: "b", Status: entities.TransactionProcessing, Date: now.Add(-time.Hour)})
	require.NoError(t, err)

	owned, err := repo.ListByOwner(ctx, "a")
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	settled, err := repo.SettleProcessing(ctx, now.Add(-time.Minute), entities.TransactionSuccess)
	require.NoError(t, err)
	assert.Equal(t, 2, settled)
}

func TestWalletsRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewWalletsRepository(testLogger(), storage.NewMemoryStore())

	_, err := repo.FindWallet(ctx, "owner")
	require.ErrorIs(t, err, ErrDocumentNotFound)

	record := entities.StoredWallet{Ciphertext: "enc_abc", CreatedAt: time.Now().UTC().Truncate(time.Second)}
	require.NoError(t, repo.SaveWallet(ctx, "owner", record))

	found, err := repo.FindWallet(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, record.Ciphertext, found.Ciphertext)
	assert.True(t, record.CreatedAt.Equal(found.CreatedAt))

	require.NoError(t, repo.DeleteWallet(ctx, "owner"))
	_, err = repo.FindWallet(ctx, "owner")
	require.ErrorIs(t, err, ErrDocumentNotFound)

	first, err := repo.InstallSecret(ctx)
	require.NoError(t, err)
	second, err := repo.InstallSecret(ctx)
	require.NoError(t, err)
	assert.Len(t, first, installSecretLen)
	assert.Equal(t, first, second)
}

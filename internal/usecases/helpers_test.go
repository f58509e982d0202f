package usecases

import (
	"io"
	"log/slog"
	"testing"

	"github.com/sand/bot-marketplace/backend/internal/entities"
	"github.com/sand/bot-marketplace/backend/internal/storage"
	"github.com/sand/bot-marketplace/backend/internal/usecases/mocked"
	"github.com/sand/bot-marketplace/backend/internal/usecases/repository"
	"github.com/stretchr/testify/require"
)

const (
	testMnemonic  = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	testScryptN   = 1 << 10
	testUserID    = "101"
	testJWTSecret = "test-jwt-secret"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testEnv wires every service over one in-memory store.
type testEnv struct {
	store        *storage.MemoryStore
	users        *repository.UsersRepository
	bots         *repository.BotsRepository
	logsRepo     *repository.LogsRepository
	walletsRepo  *repository.WalletsRepository
	hub          *LogHub
	logs         *LoggingService
	wallets      *WalletService
	transactions *TransactionServiceImpl
	marketplace  *MarketplaceService
	assets       *AssetService
	userService  *UserService
}

func newTestEnv(t *testing.T, mode DerivationMode) *testEnv {
	t.Helper()

	logger := testLogger()
	store := storage.NewMemoryStore()

	env := &testEnv{
		store:       store,
		users:       repository.NewUsersRepository(logger, store, func() []entities.User { return mocked.InitialUsers("admin", "") }),
		bots:        repository.NewBotsRepository(logger, store, mocked.InitialBots),
		logsRepo:    repository.NewLogsRepository(logger, store),
		walletsRepo: repository.NewWalletsRepository(logger, store),
		hub:         NewLogHub(),
	}
	stats := repository.NewStatsRepository(logger, store)
	env.logs = NewLoggingService(logger, env.logsRepo, stats, env.users, env.bots, env.hub, 0)

	wallets, err := NewWalletService(logger, env.walletsRepo, NewSeedCipher([]byte("install-secret"), "", testScryptN), mode, env.logs)
	require.NoError(t, err)
	env.wallets = wallets

	env.transactions = NewTransactionService(logger, wallets, repository.NewTransactionsRepository(logger, store), env.logs, TransactionSettings{})
	env.marketplace = NewMarketplaceService(logger, env.bots, env.users, env.transactions, env.logs, env.logs)
	env.assets = NewAssetService(logger, wallets, env.transactions, 0)
	env.userService = NewUserService(logger, env.users, env.logs)
	return env
}

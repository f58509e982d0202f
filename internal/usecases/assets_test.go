package usecases

import (
	"context"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sand/bot-marketplace/backend/internal/entities"
	"github.com/sand/bot-marketplace/backend/internal/usecases/repository"
)

func TestPortfolio(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, DerivationPlaceholder)

	_, err := env.assets.Portfolio(ctx, testUserID)
	require.ErrorIs(t, err, ErrWalletNotFound)

	details, err := env.wallets.SaveWallet(ctx, testUserID, testMnemonic)
	require.NoError(t, err)

	repo := repository.NewTransactionsRepository(testLogger(), env.store)
	for _, tx := range []entities.CryptoTransaction{
		{OwnerID: testUserID, Type: entities.TransactionDeposit, Symbol: "USDT", Amount: 100, Status: entities.TransactionSuccess},
		{OwnerID: testUserID, Type: entities.TransactionWithdrawal, Symbol: "USDT", Amount: 30, Status: entities.TransactionProcessing},
		{OwnerID: testUserID, Type: entities.TransactionWithdrawal, Symbol: "USDT", Amount: 50, Status: entities.TransactionFailed},
		{OwnerID: testUserID, Type: entities.TransactionBotEarnings, Symbol: "TON", Amount: 2, Status: entities.TransactionSuccess},
		{OwnerID: "102", Type: entities.TransactionDeposit, Symbol: "TON", Amount: 1000, Status: entities.TransactionSuccess},
	} {
		tx.Date = time.Now()
		_, err = repo.Create(ctx, tx)
		require.NoError(t, err)
	}

	assets, err := env.assets.Portfolio(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, assets, 5)

	bySymbol := make(map[string]entities.CryptoAsset)
	for _, a := range assets {
		bySymbol[a.Symbol] = a
	}
	assert.InDelta(t, 70, bySymbol["USDT"].Balance, 1e-9)
	assert.InDelta(t, 2, bySymbol["TON"].Balance, 1e-9)
	assert.Zero(t, bySymbol["SOL"].Balance)

	usdt := bySymbol["USDT"].Networks
	require.Len(t, usdt, 2)
	assert.Equal(t, details.Addresses[entities.ChainTRX], usdt[0].Address)
	assert.Equal(t, details.Addresses[entities.ChainBSC], usdt[1].Address)
}

func TestDepositAddress(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, DerivationPlaceholder)

	_, err := env.wallets.SaveWallet(ctx, testUserID, testMnemonic)
	require.NoError(t, err)

	deposit, err := env.assets.DepositAddress(ctx, testUserID, entities.ChainTON)
	require.NoError(t, err)
	assert.Equal(t, "EQDYWJhbmRvbixxxTONv4", deposit.Address)

	png, err := base64.StdEncoding.DecodeString(deposit.QRCode)
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), png[:4])

	_, err = env.assets.DepositAddress(ctx, testUserID, entities.Chain("BTC"))
	assert.ErrorIs(t, err, ErrUnsupportedChain)
}

func TestChainForProtocol(t *testing.T) {
	chain, ok := ChainForProtocol("TRC20")
	assert.True(t, ok)
	assert.Equal(t, entities.ChainTRX, chain)

	chain, ok = ChainForProtocol("SOL")
	assert.True(t, ok)
	assert.Equal(t, entities.ChainSOL, chain)

	_, ok = ChainForProtocol("ERC20")
	assert.False(t, ok)
}

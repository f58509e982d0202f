package usecases

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.openly.dev/pointy"

	"github.com/sand/bot-marketplace/backend/internal/entities"
)

func TestListBotsNewestFirst(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, DerivationPlaceholder)

	bots, err := env.marketplace.ListBots(ctx)
	require.NoError(t, err)
	require.Len(t, bots, 10)
	assert.Equal(t, "1", bots[0].ID)

	created, err := env.marketplace.CreateBot(ctx, entities.Bot{Name: "<b>Fresh</b>", Price: 5})
	require.NoError(t, err)
	assert.Equal(t, "bFresh/b", created.Name)
	assert.Equal(t, entities.BotStatusActive, created.Status)

	bots, err = env.marketplace.ListBots(ctx)
	require.NoError(t, err)
	assert.Equal(t, created.ID, bots[0].ID)
}

func TestBotCRUD(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, DerivationPlaceholder)

	_, err := env.marketplace.CreateBot(ctx, entities.Bot{Name: " "})
	require.ErrorIs(t, err, ErrInvalidInput)
	_, err = env.marketplace.CreateBot(ctx, entities.Bot{Name: "Negative", Price: -1})
	require.ErrorIs(t, err, ErrInvalidAmount)

	updated, err := env.marketplace.UpdateBot(ctx, "3", entities.BotPatch{Price: pointy.Float64(10)})
	require.NoError(t, err)
	assert.Equal(t, "CryptoAlert", updated.Name)
	assert.Equal(t, 10.0, updated.Price)

	_, err = env.marketplace.UpdateBot(ctx, "missing", entities.BotPatch{Price: pointy.Float64(10)})
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, env.marketplace.DeleteBot(ctx, "3"))
	_, err = env.marketplace.GetBot(ctx, "3")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, env.marketplace.DeleteBot(ctx, "3"), ErrNotFound)
}

func TestQuote(t *testing.T) {
	env := newTestEnv(t, DerivationPlaceholder)

	quote, err := env.marketplace.Quote(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, entities.Quote{BotID: "1", Price: 29.99, Stars: 45, TON: 0.16}, quote)

	request, quote, err := env.marketplace.TonPaymentRequest(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "160000000", request.Messages[0].Amount)
	assert.Equal(t, 0.16, quote.TON)
}

func TestPurchaseWithExternalPayment(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, DerivationPlaceholder)

	_, err := env.marketplace.Purchase(ctx, testUserID, "1", entities.PaymentStars, "")
	require.ErrorIs(t, err, ErrInvalidInput, "paid bots need a payment reference")

	_, err = env.marketplace.Purchase(ctx, testUserID, "1", entities.PaymentMethod("paypal"), "ref")
	require.ErrorIs(t, err, ErrUnsupportedMethod)

	purchase, err := env.marketplace.Purchase(ctx, testUserID, "1", entities.PaymentStars, "stars-charge-1")
	require.NoError(t, err)
	assert.Equal(t, "stars-charge-1", purchase.Hash)
	assert.True(t, purchase.Owned.IsActive)
	require.NotNil(t, purchase.Owned.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), *purchase.Owned.ExpiresAt, time.Minute)

	stats, err := env.logs.Stats(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 29.99, stats.TotalRevenue, 1e-9)

	again, err := env.marketplace.Purchase(ctx, testUserID, "1", entities.PaymentTON, "ton-boc")
	require.NoError(t, err)
	assert.Equal(t, purchase.Owned.ExpiresAt.Add(30*24*time.Hour), *again.Owned.ExpiresAt, "repurchase extends the expiry")

	owned, err := env.marketplace.OwnedBots(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "1", owned[0].BotID)
}

func TestPurchaseWithInternalWallet(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, DerivationPlaceholder)

	_, err := env.marketplace.Purchase(ctx, testUserID, "4", entities.PaymentInternal, "")
	require.ErrorIs(t, err, ErrWalletNotFound)

	owned, err := env.marketplace.OwnedBots(ctx, testUserID)
	require.NoError(t, err)
	assert.Empty(t, owned, "failed payments grant nothing")

	_, err = env.wallets.SaveWallet(ctx, testUserID, testMnemonic)
	require.NoError(t, err)

	purchase, err := env.marketplace.Purchase(ctx, testUserID, "4", entities.PaymentInternal, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(purchase.Hash, "TON_PAY_"), purchase.Hash)
}

func TestPurchaseFreeBot(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, DerivationPlaceholder)

	purchase, err := env.marketplace.Purchase(ctx, testUserID, "2", entities.PaymentStars, "")
	require.NoError(t, err)
	assert.Empty(t, purchase.Hash)

	stats, err := env.logs.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalRevenue)

	_, err = env.marketplace.Purchase(ctx, "missing-user", "2", entities.PaymentStars, "")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestOwnedBotsReportsExpiry(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, DerivationPlaceholder)

	expired := time.Now().Add(-time.Hour)
	_, err := env.users.Update(ctx, testUserID, func(u *entities.User) error {
		u.OwnedBots = []entities.OwnedBot{{BotID: "5", PurchasedAt: expired.Add(-24 * time.Hour), ExpiresAt: &expired, IsActive: true}}
		return nil
	})
	require.NoError(t, err)

	owned, err := env.marketplace.OwnedBots(ctx, testUserID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.False(t, owned[0].IsActive)
}

func TestQuoteCheapBotHasMinimumTonAmount(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, DerivationPlaceholder)

	bot, err := env.marketplace.CreateBot(ctx, entities.Bot{Name: "Penny", Price: 0.5})
	require.NoError(t, err)

	quote, err := env.marketplace.Quote(ctx, bot.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.01, quote.TON)
	assert.Equal(t, int64(1), quote.Stars)

	request, _, err := env.marketplace.TonPaymentRequest(ctx, bot.ID)
	require.NoError(t, err)
	assert.Equal(t, "10000000", request.Messages[0].Amount)

	_, err = env.wallets.SaveWallet(ctx, testUserID, testMnemonic)
	require.NoError(t, err)
	purchase, err := env.marketplace.Purchase(ctx, testUserID, bot.ID, entities.PaymentInternal, "")
	require.NoError(t, err)
	assert.NotEmpty(t, purchase.Hash)

	free, err := env.marketplace.Quote(ctx, "2")
	require.NoError(t, err)
	assert.Zero(t, free.TON)
}

func TestPurchaseFreeBotRejectsUnknownMethod(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, DerivationPlaceholder)

	_, err := env.marketplace.Purchase(ctx, testUserID, "2", entities.PaymentMethod("paypal"), "")
	require.ErrorIs(t, err, ErrUnsupportedMethod)

	owned, err := env.marketplace.OwnedBots(ctx, testUserID)
	require.NoError(t, err)
	assert.Empty(t, owned)
}

func TestPurchasePlan(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, DerivationPlaceholder)

	plans := env.marketplace.ListPlans()
	require.Len(t, plans, 3)

	_, err := env.marketplace.PurchasePlan(ctx, testUserID, "plan_missing", entities.PaymentStars, "ref")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = env.marketplace.PurchasePlan(ctx, testUserID, "plan_pro", entities.PaymentMethod("paypal"), "ref")
	require.ErrorIs(t, err, ErrUnsupportedMethod)
	_, err = env.marketplace.PurchasePlan(ctx, testUserID, "plan_pro", entities.PaymentTON, " ")
	require.ErrorIs(t, err, ErrInvalidInput)

	purchase, err := env.marketplace.PurchasePlan(ctx, testUserID, "plan_pro", entities.PaymentStars, "stars-plan-1")
	require.NoError(t, err)
	assert.Equal(t, "stars-plan-1", purchase.Hash)
	assert.Equal(t, "plan_pro", purchase.Quote.PlanID)
	assert.Equal(t, int64(225), purchase.Quote.Stars)
	require.NotNil(t, purchase.PremiumExpiresAt)
	assert.WithinDuration(t, time.Now().Add(30*24*time.Hour), *purchase.PremiumExpiresAt, time.Minute)

	user, err := env.users.Get(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, "plan_pro", user.Plan)
	assert.True(t, user.IsPremium(time.Now()))

	again, err := env.marketplace.PurchasePlan(ctx, testUserID, "plan_elite", entities.PaymentTON, "ton-boc")
	require.NoError(t, err)
	assert.Equal(t, purchase.PremiumExpiresAt.Add(30*24*time.Hour), *again.PremiumExpiresAt)

	user, err = env.users.Get(ctx, testUserID)
	require.NoError(t, err)
	assert.Equal(t, "plan_elite", user.Plan)
	premium := 0
	for _, badge := range user.Badges {
		if badge == entities.BadgePremium {
			premium++
		}
	}
	assert.Equal(t, 1, premium, "badge is granted once")

	stats, err := env.logs.Stats(ctx)
	require.NoError(t, err)
	assert.InDelta(t, 149.90+399.90, stats.TotalRevenue, 1e-9)

	logs, err := env.logs.GetLogs(ctx, 1)
	require.NoError(t, err)
	require.NotEmpty(t, logs)
	assert.Equal(t, entities.LogTransaction, logs[0].Type)
	assert.Equal(t, "Subscription purchased: Elite Üyelik", logs[0].Message)
}

func TestPurchaseFreePlanGrantsNoPremium(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, DerivationPlaceholder)

	purchase, err := env.marketplace.PurchasePlan(ctx, testUserID, "plan_starter", entities.PaymentStars, "")
	require.NoError(t, err)
	assert.Empty(t, purchase.Hash)
	assert.Nil(t, purchase.PremiumExpiresAt)

	_, err = env.marketplace.PurchasePlan(ctx, "missing-user", "plan_starter", entities.PaymentStars, "")
	require.ErrorIs(t, err, ErrNotFound)

	stats, err := env.logs.Stats(ctx)
	require.NoError(t, err)
	assert.Zero(t, stats.TotalRevenue)
}

func TestPlanTonPaymentRequest(t *testing.T) {
	env := newTestEnv(t, DerivationPlaceholder)

	request, quote, err := env.marketplace.PlanTonPaymentRequest("plan_pro")
	require.NoError(t, err)
	assert.Equal(t, 0.81, quote.TON)
	assert.Equal(t, "810000000", request.Messages[0].Amount)

	_, _, err = env.marketplace.PlanTonPaymentRequest("plan_missing")
	require.ErrorIs(t, err, ErrNotFound)
}

package mocked

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sand/bot-marketplace/backend/internal/entities"
)

func TestInitialBots(t *testing.T) {
	bots := InitialBots()
	require.Len(t, bots, 10)

	ids := make(map[string]bool)
	for i, bot := range bots {
		assert.False(t, ids[bot.ID], "duplicate id %s", bot.ID)
		ids[bot.ID] = true
		assert.Equal(t, entities.BotStatusActive, bot.Status)
		if i > 0 {
			assert.True(t, bot.CreatedAt.Before(bots[i-1].CreatedAt))
		}
	}
}

func TestInitialUsers(t *testing.T) {
	users := InitialUsers("admin", "hash")
	require.NotEmpty(t, users)

	admin := users[0]
	assert.Equal(t, AdminUserID, admin.ID)
	assert.Equal(t, entities.RoleAdmin, admin.Role)
	assert.Equal(t, "hash", admin.PasswordHash)

	for _, u := range users[1:] {
		assert.Empty(t, u.PasswordHash)
	}
}

func TestAssetCatalog(t *testing.T) {
	for _, asset := range AssetCatalog() {
		require.NotEmpty(t, asset.Networks, asset.Symbol)
		for _, network := range asset.Networks {
			_, ok := ProtocolChains[network.Protocol]
			assert.True(t, ok, "protocol %s has no chain", network.Protocol)
		}
	}

	price, ok := AssetPrice("TON")
	require.True(t, ok)
	assert.Equal(t, 185.20, price)

	_, ok = AssetPrice("DOGE")
	assert.False(t, ok)
}

func TestSubscriptionPlans(t *testing.T) {
	plans := SubscriptionPlans()
	require.Len(t, plans, 3)

	assert.Zero(t, plans[0].Price)
	popular := 0
	for _, plan := range plans {
		assert.NotEmpty(t, plan.Features, plan.ID)
		if plan.IsPopular {
			popular++
		}
	}
	assert.Equal(t, 1, popular)
}

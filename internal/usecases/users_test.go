package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.openly.dev/pointy"

	"github.com/sand/bot-marketplace/backend/internal/entities"
)

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, DerivationPlaceholder)

	_, err := env.userService.CreateUser(ctx, entities.User{Name: "No Username"})
	require.ErrorIs(t, err, ErrInvalidInput)

	created, err := env.userService.CreateUser(ctx, entities.User{
		Name:         "Deniz",
		Username:     "deniz",
		PasswordHash: "should-not-be-kept",
		OwnedBots:    []entities.OwnedBot{{BotID: "1"}},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, entities.RoleUser, created.Role)
	assert.Equal(t, entities.UserStatusActive, created.Status)
	assert.False(t, created.JoinDate.IsZero())
	assert.Empty(t, created.OwnedBots)

	stored, err := env.users.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.PasswordHash)
}

func TestUsernamesAreUnique(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, DerivationPlaceholder)

	_, err := env.userService.CreateUser(ctx, entities.User{Name: "Copy", Username: "@AhmetY"})
	require.ErrorIs(t, err, ErrUsernameTaken)

	created, err := env.userService.CreateUser(ctx, entities.User{Name: "Deniz", Username: "deniz"})
	require.NoError(t, err)

	_, err = env.userService.UpdateUser(ctx, created.ID, entities.UserPatch{Username: pointy.String("aysed")})
	require.ErrorIs(t, err, ErrUsernameTaken)

	updated, err := env.userService.UpdateUser(ctx, created.ID, entities.UserPatch{Username: pointy.String("@Deniz")})
	require.NoError(t, err)
	assert.Equal(t, "@Deniz", updated.Username)

	users, err := env.userService.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 6)
}

func TestUserListingHidesPasswordHash(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, DerivationPlaceholder)

	_, err := env.users.Update(ctx, "100", func(u *entities.User) error {
		u.PasswordHash = "$2a$10$hash"
		return nil
	})
	require.NoError(t, err)

	users, err := env.userService.ListUsers(ctx)
	require.NoError(t, err)
	for _, u := range users {
		assert.Empty(t, u.PasswordHash, u.ID)
	}

	admin, err := env.userService.GetUser(ctx, "100")
	require.NoError(t, err)
	assert.Empty(t, admin.PasswordHash)
}

func TestUpdateAndDeleteUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, DerivationPlaceholder)

	banned := entities.UserStatusBanned
	updated, err := env.userService.UpdateUser(ctx, "103", entities.UserPatch{
		Status: &banned,
		Email:  pointy.String("new@example.com"),
	})
	require.NoError(t, err)
	assert.Equal(t, entities.UserStatusBanned, updated.Status)
	assert.Equal(t, "new@example.com", *updated.Email)
	assert.Equal(t, "Mehmet Öztürk", updated.Name)

	require.NoError(t, env.userService.DeleteUser(ctx, "103"))
	_, err = env.userService.GetUser(ctx, "103")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUserStats(t *testing.T) {
	env := newTestEnv(t, DerivationPlaceholder)

	stats, err := env.userService.UserStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, entities.UserStats{Total: 5, Active: 4, Premium: 1, Moderators: 1}, stats)
}

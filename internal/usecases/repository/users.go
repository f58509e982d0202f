package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/sand/bot-marketplace/backend/internal/entities"
	"github.com/sand/bot-marketplace/backend/internal/storage"
)

// ErrUsernameTaken is returned when another user already holds the username.
var ErrUsernameTaken = errors.New("username already taken")

// UsersRepository stores marketplace users. Usernames are unique ignoring case
// and a leading "@".
type UsersRepository struct {
	*Collection[entities.User, *entities.User]
}

func NewUsersRepository(logger *slog.Logger, store storage.Store, seed func() []entities.User) *UsersRepository {
	return &UsersRepository{
		Collection: NewCollection[entities.User, *entities.User](logger, store, KeyUsers, seed),
	}
}

// NormalizeUsername is the form usernames are compared in.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(username), "@"))
}

func usernameTaken(items []entities.User, username, exceptID string) bool {
	normalized := NormalizeUsername(username)
	return slices.ContainsFunc(items, func(u entities.User) bool {
		return u.ID != exceptID && NormalizeUsername(u.Username) == normalized
	})
}

func (r *UsersRepository) conflict(username string) error {
	return fmt.Errorf("%w: %q", ErrUsernameTaken, username)
}

// Create prepends a new user, rejecting a username held by someone else.
func (r *UsersRepository) Create(ctx context.Context, user entities.User) (entities.User, error) {
	user.ID = uuid.NewString()

	_, err := r.Mutate(ctx, func(items []entities.User) ([]entities.User, error) {
		if usernameTaken(items, user.Username, "") {
			return nil, r.conflict(user.Username)
		}
		return append([]entities.User{user}, items...), nil
	})
	if err != nil {
		return entities.User{}, err
	}

	r.logger.Debug("Document created", "collection", r.key, "id", user.ID)
	return user, nil
}

// Update applies fn to the user with the given id. A changed username must not
// be held by another user.
func (r *UsersRepository) Update(ctx context.Context, id string, fn func(u *entities.User) error) (entities.User, error) {
	var updated entities.User

	_, err := r.Mutate(ctx, func(items []entities.User) ([]entities.User, error) {
		idx := slices.IndexFunc(items, func(u entities.User) bool { return u.ID == id })
		if idx < 0 {
			return nil, fmt.Errorf("%s/%s: %w", r.key, id, ErrDocumentNotFound)
		}

		before := items[idx].Username
		if err := fn(&items[idx]); err != nil {
			return nil, err
		}
		items[idx].ID = id

		after := items[idx].Username
		if NormalizeUsername(before) != NormalizeUsername(after) && usernameTaken(items, after, id) {
			return nil, r.conflict(after)
		}
		updated = items[idx]
		return items, nil
	})
	if err != nil {
		return entities.User{}, err
	}
	return updated, nil
}

// UpsertByTelegramID refreshes the user linked to telegramID with refresh, or
// registers the user built by register when there is none, in one atomic update.
// A username already held by another user is replaced with fallbackUsername on
// registration and left unchanged on refresh. created reports a registration.
func (r *UsersRepository) UpsertByTelegramID(
	ctx context.Context,
	telegramID int64,
	fallbackUsername string,
	register func() entities.User,
	refresh func(u *entities.User),
) (user entities.User, created bool, err error) {
	newID := uuid.NewString()

	_, err = r.Mutate(ctx, func(items []entities.User) ([]entities.User, error) {
		idx := slices.IndexFunc(items, func(u entities.User) bool {
			return u.TelegramID != nil && *u.TelegramID == telegramID
		})

		if idx >= 0 {
			current := &items[idx]
			before := current.Username
			refresh(current)
			if usernameTaken(items, current.Username, current.ID) {
				current.Username = before
			}
			user, created = *current, false
			return items, nil
		}

		fresh := register()
		fresh.ID = newID
		fresh.TelegramID = &telegramID
		if usernameTaken(items, fresh.Username, "") {
			fresh.Username = fallbackUsername
		}
		if usernameTaken(items, fresh.Username, "") {
			return nil, r.conflict(fresh.Username)
		}
		user, created = fresh, true
		return append([]entities.User{fresh}, items...), nil
	})
	if err != nil {
		return entities.User{}, false, err
	}
	return user, created, nil
}

// FindByTelegramID returns the user linked to the Telegram account.
func (r *UsersRepository) FindByTelegramID(ctx context.Context, telegramID int64) (entities.User, error) {
	return r.Find(ctx, func(u *entities.User) bool {
		return u.TelegramID != nil && *u.TelegramID == telegramID
	})
}

// FindByUsername matches usernames case-insensitively, ignoring a leading "@".
func (r *UsersRepository) FindByUsername(ctx context.Context, username string) (entities.User, error) {
	normalized := NormalizeUsername(username)
	return r.Find(ctx, func(u *entities.User) bool {
		return NormalizeUsername(u.Username) == normalized
	})
}

// FindOperator returns the admin panel account with the username. Only users
// with a password can sign in to the panel.
func (r *UsersRepository) FindOperator(ctx context.Context, username string) (entities.User, error) {
	normalized := NormalizeUsername(username)
	return r.Find(ctx, func(u *entities.User) bool {
		return u.PasswordHash != "" && NormalizeUsername(u.Username) == normalized
	})
}

package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sand/bot-marketplace/backend/internal/core/ports"
	"github.com/sand/bot-marketplace/backend/internal/entities"
	"github.com/sand/bot-marketplace/backend/internal/shared"
	"github.com/sand/bot-marketplace/backend/internal/usecases/repository"
)

// UserService manages marketplace users for the admin panel.
type UserService struct {
	logger *slog.Logger
	users  *repository.UsersRepository
	events ports.EventLogger
	now    func() time.Time
}

func NewUserService(logger *slog.Logger, users *repository.UsersRepository, events ports.EventLogger) *UserService {
	return &UserService{
		logger: logger,
		users:  users,
		events: events,
		now:    time.Now,
	}
}

func publicUsers(users []entities.User) []entities.User {
	out := make([]entities.User, len(users))
	for i, u := range users {
		out[i] = u.Public()
	}
	return out
}

func (s *UserService) ListUsers(ctx context.Context) ([]entities.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	return publicUsers(users), nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (entities.User, error) {
	user, err := s.users.Get(ctx, id)
	if err != nil {
		return entities.User{}, err
	}
	return user.Public(), nil
}

// CreateUser stores a new user. Name and username are required; role, status
// and join date default to User, Active and now.
func (s *UserService) CreateUser(ctx context.Context, input entities.User) (entities.User, error) {
	input.Name = strings.TrimSpace(shared.SanitizeInput(input.Name))
	input.Username = strings.TrimSpace(shared.SanitizeInput(input.Username))
	if input.Name == "" || input.Username == "" {
		return entities.User{}, fmt.Errorf("%w: name and username are required", ErrInvalidInput)
	}

	input.PasswordHash = ""
	input.OwnedBots = nil
	if input.Role == "" {
		input.Role = entities.RoleUser
	}
	if input.Status == "" {
		input.Status = entities.UserStatusActive
	}
	if input.Badges == nil {
		input.Badges = []string{}
	}
	if input.JoinDate.IsZero() {
		input.JoinDate = s.now().UTC()
	}

	created, err := s.users.Create(ctx, input)
	if err != nil {
		return entities.User{}, err
	}

	s.logEvent(ctx, entities.LogUserAction, "User created", map[string]any{"id": created.ID, "username": created.Username})
	return created.Public(), nil
}

func (s *UserService) UpdateUser(ctx context.Context, id string, patch entities.UserPatch) (entities.User, error) {
	if patch.Name != nil {
		*patch.Name = shared.SanitizeInput(*patch.Name)
	}
	if patch.Username != nil {
		*patch.Username = shared.SanitizeInput(*patch.Username)
	}

	updated, err := s.users.Update(ctx, id, func(u *entities.User) error {
		patch.Apply(u)
		return nil
	})
	if err != nil {
		return entities.User{}, err
	}

	s.logEvent(ctx, entities.LogUserAction, "User updated", map[string]any{"id": id})
	return updated.Public(), nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.logEvent(ctx, entities.LogWarning, "User deleted", map[string]any{"id": id})
	return nil
}

func (s *UserService) UserStats(ctx context.Context) (entities.UserStats, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return entities.UserStats{}, err
	}

	now := s.now()
	stats := entities.UserStats{Total: len(users)}
	for i := range users {
		u := &users[i]
		if u.Status == entities.UserStatusActive {
			stats.Active++
		}
		if u.IsPremium(now) {
			stats.Premium++
		}
		if u.Role == entities.RoleModerator {
			stats.Moderators++
		}
	}
	return stats, nil
}

func (s *UserService) logEvent(ctx context.Context, logType entities.LogType, message string, details map[string]any) {
	writeEvent(ctx, s.logger, s.events, logType, message, details)
}

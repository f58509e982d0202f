package usecases

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/sand/bot-marketplace/backend/internal/core/ports"
	"github.com/sand/bot-marketplace/backend/internal/entities"
	"github.com/sand/bot-marketplace/backend/internal/usecases/repository"
)

const webAppDataKey = "WebAppData"

// AuthSettings configures token issuing and Telegram Mini-App login.
type AuthSettings struct {
	JWTSecret      []byte
	Issuer         string
	BotToken       string
	AllowUnsigned  bool
	InitDataMaxAge time.Duration
	MasterIDs      []int64
}

// Claims are carried by issued tokens. The subject is the user id.
type Claims struct {
	Role entities.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Session is the result of a successful login.
type Session struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expiresAt"`
	User      entities.User `json:"user"`
}

// TelegramUser is the "user" field of Mini-App init data.
type TelegramUser struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	PhotoURL     string `json:"photo_url,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
}

// AuthService authenticates Mini-App users and admin panel operators.
type AuthService struct {
	logger   *slog.Logger
	users    *repository.UsersRepository
	events   ports.EventLogger
	settings AuthSettings
	now      func() time.Time
}

func NewAuthService(logger *slog.Logger, users *repository.UsersRepository, events ports.EventLogger, settings AuthSettings) (*AuthService, error) {
	if len(settings.JWTSecret) == 0 {
		return nil, errors.New("jwt secret is required")
	}
	if settings.BotToken == "" && !settings.AllowUnsigned {
		logger.Warn("Telegram bot token is not configured, Telegram logins will be rejected")
	}
	return &AuthService{
		logger:   logger,
		users:    users,
		events:   events,
		settings: settings,
		now:      time.Now,
	}, nil
}

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyInitData checks the Mini-App init data signature and freshness and
// returns the Telegram user it describes.
func (s *AuthService) VerifyInitData(initData string) (*TelegramUser, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed init data: %w", ErrUnauthorized, err)
	}

	if !s.settings.AllowUnsigned {
		if s.settings.BotToken == "" {
			return nil, fmt.Errorf("%w: telegram login is not configured", ErrUnauthorized)
		}
		if err = checkInitDataHash(values, s.settings.BotToken); err != nil {
			return nil, err
		}
	}

	if s.settings.InitDataMaxAge > 0 {
		authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: missing auth_date", ErrUnauthorized)
		}
		if s.now().Sub(time.Unix(authDate, 0)) > s.settings.InitDataMaxAge {
			return nil, fmt.Errorf("%w: init data expired", ErrUnauthorized)
		}
	}

	var user TelegramUser
	if err = json.Unmarshal([]byte(values.Get("user")), &user); err != nil || user.ID == 0 {
		return nil, fmt.Errorf("%w: init data carries no user", ErrUnauthorized)
	}
	return &user, nil
}

// checkInitDataHash validates the hash field: HMAC-SHA256 of the sorted
// "key=value" lines keyed with HMAC-SHA256("WebAppData", bot token).
func checkInitDataHash(values url.Values, botToken string) error {
	received, err := hex.DecodeString(values.Get("hash"))
	if err != nil || len(received) == 0 {
		return fmt.Errorf("%w: missing init data hash", ErrUnauthorized)
	}

	if !hmac.Equal(received, signInitData(values, botToken)) {
		return fmt.Errorf("%w: init data hash mismatch", ErrUnauthorized)
	}
	return nil
}

func signInitData(values url.Values, botToken string) []byte {
	lines := make([]string, 0, len(values))
	for key := range values {
		if key == "hash" {
			continue
		}
		lines = append(lines, key+"="+values.Get(key))
	}
	sort.Strings(lines)

	secret := hmac.New(sha256.New, []byte(webAppDataKey))
	secret.Write([]byte(botToken))

	mac := hmac.New(sha256.New, secret.Sum(nil))
	mac.Write([]byte(strings.Join(lines, "\n")))
	return mac.Sum(nil)
}

// TelegramLogin verifies init data, creates or refreshes the matching user and
// issues a token. Configured master accounts are promoted to Admin.
func (s *AuthService) TelegramLogin(ctx context.Context, initData string) (*Session, error) {
	tgUser, err := s.VerifyInitData(initData)
	if err != nil {
		s.logger.Warn("Rejected Telegram login", "error", err)
		return nil, err
	}

	name := strings.TrimSpace(tgUser.FirstName + " " + tgUser.LastName)
	isMaster := slices.Contains(s.settings.MasterIDs, tgUser.ID)

	fallback := "user" + strconv.FormatInt(tgUser.ID, 10)
	username := tgUser.Username
	if username == "" {
		username = fallback
	}
	user, created, err := s.users.UpsertByTelegramID(ctx, tgUser.ID, fallback,
		func() entities.User {
			role := entities.RoleUser
			if isMaster {
				role = entities.RoleAdmin
			}
			return entities.User{
				Name:     name,
				Username: username,
				Avatar:   tgUser.PhotoURL,
				Role:     role,
				Status:   entities.UserStatusActive,
				Badges:   []string{},
				JoinDate: s.now().UTC(),
			}
		},
		func(u *entities.User) {
			u.Name = name
			u.Username = username
			if tgUser.PhotoURL != "" {
				u.Avatar = tgUser.PhotoURL
			}
			if isMaster {
				u.Role = entities.RoleAdmin
			}
		},
	)
	if err != nil {
		return nil, err
	}
	if created {
		s.logEvent(ctx, entities.LogUserAction, "New Telegram user registered", map[string]any{"id": user.ID, "telegramId": tgUser.ID})
	}

	if user.Status == entities.UserStatusBanned {
		s.logEvent(ctx, entities.LogWarning, "Banned user tried to log in", map[string]any{"id": user.ID})
		return nil, fmt.Errorf("%w: user is banned", ErrForbidden)
	}

	s.logger.Info("Telegram login", "user", user.ID, "telegram_id", tgUser.ID, "role", user.Role)
	return s.issue(user, ports.TelegramTokenLifetime)
}

// AdminLogin authenticates an admin panel operator with username and password.
func (s *AuthService) AdminLogin(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.users.FindOperator(ctx, username)
	if err != nil && !errors.Is(err, repository.ErrDocumentNotFound) {
		return nil, err
	}

	if err != nil || user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.logger.Warn("Failed admin login attempt", "username", username)
		s.logEvent(ctx, entities.LogWarning, "Failed admin login attempt", map[string]any{"username": username})
		return nil, fmt.Errorf("%w: invalid credentials", ErrUnauthorized)
	}

	if user.Role != entities.RoleAdmin {
		s.logEvent(ctx, entities.LogWarning, "Non-admin tried to access the admin panel", map[string]any{"username": username})
		return nil, fmt.Errorf("%w: admin role required", ErrForbidden)
	}

	s.logEvent(ctx, entities.LogInfo, "Admin logged in", map[string]any{"username": username})
	return s.issue(user, ports.AdminTokenLifetime)
}

func (s *AuthService) issue(user entities.User, ttl time.Duration) (*Session, error) {
	now := s.now()
	expiresAt := now.Add(ttl)

	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    s.settings.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.settings.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user.Public(),
	}, nil
}

// ParseToken validates a token issued by this service and returns its claims.
func (s *AuthService) ParseToken(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.settings.JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: invalid token", ErrUnauthorized)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrUnauthorized)
	}
	return claims, nil
}

func (s *AuthService) logEvent(ctx context.Context, logType entities.LogType, message string, details map[string]any) {
	writeEvent(ctx, s.logger, s.events, logType, message, details)
}

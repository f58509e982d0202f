package entities

import "time"

type UserRole string

const (
	RoleUser      UserRole = "User"
	RoleModerator UserRole = "Moderator"
	RoleAdmin     UserRole = "Admin"
)

type UserStatus string

const (
	UserStatusActive  UserStatus = "Active"
	UserStatusPassive UserStatus = "Passive"
	UserStatusBanned  UserStatus = "Banned"
)

// BadgePremium marks users with a premium subscription.
const BadgePremium = "Premium"

// OwnedBot is a marketplace bot purchased by a user.
type OwnedBot struct {
	BotID       string     `json:"botId"`
	PurchasedAt time.Time  `json:"purchasedAt"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty"`
	IsActive    bool       `json:"isActive"`
}

// User represents a marketplace user or an admin panel operator.
type User struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Username      string     `json:"username"`
	TelegramID    *int64     `json:"telegramId,omitempty"`
	Avatar        string     `json:"avatar,omitempty"`
	Role          UserRole   `json:"role"`
	Status        UserStatus `json:"status"`
	Badges        []string   `json:"badges"`
	JoinDate      time.Time  `json:"joinDate"`
	Email         *string    `json:"email,omitempty"`
	IsRestricted  bool       `json:"isRestricted"`
	CanPublishAds bool       `json:"canPublishAds"`
	OwnedBots     []OwnedBot `json:"ownedBots,omitempty"`
	PasswordHash  string     `json:"passwordHash,omitempty"`

	Plan             string     `json:"plan,omitempty"`
	PremiumExpiresAt *time.Time `json:"premiumExpiresAt,omitempty"`
}

func (u *User) GetID() string   { return u.ID }
func (u *User) SetID(id string) { u.ID = id }

// Public returns a copy of the user that is safe to render to clients.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// HasBadge reports whether the user carries the given badge.
func (u *User) HasBadge(badge string) bool {
	for _, b := range u.Badges {
		if b == badge {
			return true
		}
	}
	return false
}

// IsPremium reports whether the user has an unexpired premium badge. Badges
// granted without an expiry never lapse.
func (u *User) IsPremium(now time.Time) bool {
	if !u.HasBadge(BadgePremium) {
		return false
	}
	return u.PremiumExpiresAt == nil || u.PremiumExpiresAt.After(now)
}

// UserPatch carries the fields of a partial user update. Nil fields are left untouched.
type UserPatch struct {
	Name          *string     `json:"name,omitempty"`
	Username      *string     `json:"username,omitempty"`
	Avatar        *string     `json:"avatar,omitempty"`
	Role          *UserRole   `json:"role,omitempty"`
	Status        *UserStatus `json:"status,omitempty"`
	Badges        *[]string   `json:"badges,omitempty"`
	Email         *string     `json:"email,omitempty"`
	IsRestricted  *bool       `json:"isRestricted,omitempty"`
	CanPublishAds *bool       `json:"canPublishAds,omitempty"`
}

// Apply merges the patch into u.
func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.Status != nil {
		u.Status = *p.Status
	}
	if p.Badges != nil {
		u.Badges = append([]string(nil), (*p.Badges)...)
	}
	if p.Email != nil {
		u.Email = p.Email
	}
	if p.IsRestricted != nil {
		u.IsRestricted = *p.IsRestricted
	}
	if p.CanPublishAds != nil {
		u.CanPublishAds = *p.CanPublishAds
	}
}

// UserStats aggregates user counters for the admin panel.
type UserStats struct {
	Total      int `json:"total"`
	Active     int `json:"active"`
	Premium    int `json:"premium"`
	Moderators int `json:"moderators"`
}

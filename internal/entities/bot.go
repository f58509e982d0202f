package entities

import "time"

type BotStatus string

const (
	BotStatusActive  BotStatus = "active"
	BotStatusPassive BotStatus = "passive"
)

// Bot is a marketplace listing.
type Bot struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	IsNew       bool      `json:"isNew"`
	IsPremium   bool      `json:"isPremium"`
	Status      BotStatus `json:"status"`
	Features    []string  `json:"features"`
	Screenshots []string  `json:"screenshots"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (b *Bot) GetID() string   { return b.ID }
func (b *Bot) SetID(id string) { b.ID = id }

// BotPatch carries the fields of a partial bot update.
type BotPatch struct {
	Name        *string    `json:"name,omitempty"`
	Description *string    `json:"description,omitempty"`
	Icon        *string    `json:"icon,omitempty"`
	Price       *float64   `json:"price,omitempty"`
	Category    *string    `json:"category,omitempty"`
	IsNew       *bool      `json:"isNew,omitempty"`
	IsPremium   *bool      `json:"isPremium,omitempty"`
	Status      *BotStatus `json:"status,omitempty"`
	Features    *[]string  `json:"features,omitempty"`
	Screenshots *[]string  `json:"screenshots,omitempty"`
}

// Apply merges the patch into b.
func (p BotPatch) Apply(b *Bot) {
	if p.Name != nil {
		b.Name = *p.Name
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	if p.Icon != nil {
		b.Icon = *p.Icon
	}
	if p.Price != nil {
		b.Price = *p.Price
	}
	if p.Category != nil {
		b.Category = *p.Category
	}
	if p.IsNew != nil {
		b.IsNew = *p.IsNew
	}
	if p.IsPremium != nil {
		b.IsPremium = *p.IsPremium
	}
	if p.Status != nil {
		b.Status = *p.Status
	}
	if p.Features != nil {
		b.Features = append([]string(nil), (*p.Features)...)
	}
	if p.Screenshots != nil {
		b.Screenshots = append([]string(nil), (*p.Screenshots)...)
	}
}

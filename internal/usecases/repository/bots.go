package repository

import (
	"log/slog"

	"github.com/sand/bot-marketplace/backend/internal/entities"
	"github.com/sand/bot-marketplace/backend/internal/storage"
)

// BotsRepository stores marketplace bot listings.
type BotsRepository struct {
	*Collection[entities.Bot, *entities.Bot]
}

func NewBotsRepository(logger *slog.Logger, store storage.Store, seed func() []entities.Bot) *BotsRepository {
	return &BotsRepository{
		Collection: NewCollection[entities.Bot, *entities.Bot](logger, store, KeyBots, seed),
	}
}

package repository

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/sand/bot-marketplace/backend/internal/entities"
	"github.com/sand/bot-marketplace/backend/internal/storage"
)

// LogsRepository stores the system log as a capped list, newest entry first.
type LogsRepository struct {
	*Collection[entities.SystemLog, *entities.SystemLog]
}

func NewLogsRepository(logger *slog.Logger, store storage.Store) *LogsRepository {
	return &LogsRepository{
		Collection: NewCollection[entities.SystemLog, *entities.SystemLog](logger, store, KeyLogs, nil),
	}
}

// Append prepends entry and drops the oldest entries beyond limit.
func (r *LogsRepository) Append(ctx context.Context, entry entities.SystemLog, limit int) (entities.SystemLog, error) {
	entry.ID = uuid.NewString()

	_, err := r.Mutate(ctx, func(items []entities.SystemLog) ([]entities.SystemLog, error) {
		items = append([]entities.SystemLog{entry}, items...)
		if limit > 0 && len(items) > limit {
			items = items[:limit]
		}
		return items, nil
	})
	if err != nil {
		return entities.SystemLog{}, err
	}
	return entry, nil
}

// Clear removes every entry.
func (r *LogsRepository) Clear(ctx context.Context) error {
	_, err := r.Mutate(ctx, func([]entities.SystemLog) ([]entities.SystemLog, error) {
		return []entities.SystemLog{}, nil
	})
	return err
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sand/bot-marketplace/backend/internal/entities"
	"github.com/sand/bot-marketplace/backend/internal/storage"
)

// StatsRepository stores the single dashboard counters record.
type StatsRepository struct {
	logger *slog.Logger
	store  storage.Store
}

func NewStatsRepository(logger *slog.Logger, store storage.Store) *StatsRepository {
	return &StatsRepository{logger: logger, store: store}
}

func decodeStats(raw []byte, exists bool) (entities.AppStats, error) {
	stats := entities.DefaultAppStats()
	if !exists {
		return stats, nil
	}
	if err := json.Unmarshal(raw, &stats); err != nil {
		return stats, fmt.Errorf("failed to decode stats: %w", err)
	}
	return stats, nil
}

// Get returns the stored counters, or the defaults if nothing was stored yet.
func (r *StatsRepository) Get(ctx context.Context) (entities.AppStats, error) {
	raw, err := r.store.Get(ctx, KeyStats)
	exists := true
	if errors.Is(err, storage.ErrNotFound) {
		exists = false
	} else if err != nil {
		r.logger.Error("Failed to read stats", "error", err)
		return entities.AppStats{}, fmt.Errorf("%w: read stats: %w", ErrPersistenceUnavailable, err)
	}

	stats, err := decodeStats(raw, exists)
	if err != nil {
		return entities.AppStats{}, fmt.Errorf("%w: %w", ErrPersistenceUnavailable, err)
	}
	return stats, nil
}

// Update atomically applies fn to the counters.
func (r *StatsRepository) Update(ctx context.Context, fn func(stats *entities.AppStats)) (entities.AppStats, error) {
	var updated entities.AppStats

	err := r.store.Update(ctx, KeyStats, func(current []byte, exists bool) ([]byte, error) {
		stats, err := decodeStats(current, exists)
		if err != nil {
			return nil, err
		}
		fn(&stats)
		updated = stats
		return json.Marshal(stats)
	})
	if err != nil {
		r.logger.Error("Failed to update stats", "error", err)
		return entities.AppStats{}, fmt.Errorf("%w: update stats: %w", ErrPersistenceUnavailable, err)
	}
	return updated, nil
}

package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sand/bot-marketplace/backend/internal/core/ports"
	"github.com/sand/bot-marketplace/backend/internal/entities"
	"github.com/sand/bot-marketplace/backend/internal/shared"
	"github.com/sand/bot-marketplace/backend/internal/usecases/repository"
)

var (
	_ ports.EventLogger   = (*LoggingService)(nil)
	_ ports.StatsRecorder = (*LoggingService)(nil)
)

// LoggingService keeps the admin system log and the dashboard counters.
type LoggingService struct {
	logger *slog.Logger
	logs   *repository.LogsRepository
	stats  *repository.StatsRepository
	users  *repository.UsersRepository
	bots   *repository.BotsRepository
	hub    *LogHub
	limit  int
	now    func() time.Time
}

// NewLoggingService keeps at most limit log entries; limit <= 0 uses the default cap.
func NewLoggingService(
	logger *slog.Logger,
	logs *repository.LogsRepository,
	stats *repository.StatsRepository,
	users *repository.UsersRepository,
	bots *repository.BotsRepository,
	hub *LogHub,
	limit int,
) *LoggingService {
	if limit <= 0 {
		limit = ports.DefaultLogCap
	}
	return &LoggingService{
		logger: logger,
		logs:   logs,
		stats:  stats,
		users:  users,
		bots:   bots,
		hub:    hub,
		limit:  limit,
		now:    time.Now,
	}
}

// Log prepends an entry to the system log, dropping the oldest beyond the cap.
// details is stored as JSON and may be nil.
func (s *LoggingService) Log(ctx context.Context, logType entities.LogType, message string, details any) (entities.SystemLog, error) {
	if !logType.Valid() {
		return entities.SystemLog{}, fmt.Errorf("%w: unknown log type %q", ErrInvalidInput, logType)
	}

	entry := entities.SystemLog{
		Timestamp: s.now().UTC(),
		Type:      logType,
		Message:   shared.SanitizeInput(message),
	}
	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return entities.SystemLog{}, fmt.Errorf("%w: details are not serializable: %w", ErrInvalidInput, err)
		}
		entry.Details = raw
	}

	saved, err := s.logs.Append(ctx, entry, s.limit)
	if err != nil {
		return entities.SystemLog{}, err
	}

	s.logger.Log(ctx, slogLevel(logType), "System log", "type", logType, "message", saved.Message)
	if s.hub != nil {
		s.hub.Publish(saved)
	}
	return saved, nil
}

func slogLevel(logType entities.LogType) slog.Level {
	switch logType {
	case entities.LogError:
		return slog.LevelError
	case entities.LogWarning:
		return slog.LevelWarn
	case entities.LogUserAction:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// GetLogs returns up to limit entries, most recent first. limit <= 0 returns all.
func (s *LoggingService) GetLogs(ctx context.Context, limit int) ([]entities.SystemLog, error) {
	logs, err := s.logs.List(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (s *LoggingService) ClearLogs(ctx context.Context) error {
	if err := s.logs.Clear(ctx); err != nil {
		return err
	}
	s.logger.Warn("System logs cleared")
	return nil
}

func (s *LoggingService) IncrementView(ctx context.Context) (entities.AppStats, error) {
	return s.stats.Update(ctx, func(stats *entities.AppStats) {
		stats.TotalViews++
	})
}

func (s *LoggingService) IncrementRevenue(ctx context.Context, amount float64) (entities.AppStats, error) {
	if amount < 0 {
		return entities.AppStats{}, fmt.Errorf("%w: revenue must not be negative", ErrInvalidAmount)
	}
	return s.stats.Update(ctx, func(stats *entities.AppStats) {
		stats.TotalRevenue += amount
	})
}

func (s *LoggingService) Stats(ctx context.Context) (entities.AppStats, error) {
	return s.stats.Get(ctx)
}

// Dashboard returns the stored counters with user and active bot counts taken
// from the collections.
func (s *LoggingService) Dashboard(ctx context.Context) (entities.AppStats, error) {
	stats, err := s.stats.Get(ctx)
	if err != nil {
		return entities.AppStats{}, err
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return entities.AppStats{}, err
	}
	bots, err := s.bots.List(ctx)
	if err != nil {
		return entities.AppStats{}, err
	}

	stats.TotalUsers = int64(len(users))
	stats.ActiveBots = 0
	for _, bot := range bots {
		if bot.Status == entities.BotStatusActive {
			stats.ActiveBots++
		}
	}
	return stats, nil
}

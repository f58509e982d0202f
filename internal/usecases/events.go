package usecases

import (
	"context"
	"log/slog"

	"github.com/sand/bot-marketplace/backend/internal/core/ports"
	"github.com/sand/bot-marketplace/backend/internal/entities"
)

// writeEvent records an admin system log entry. A failure to record it never
// fails the operation being logged.
func writeEvent(ctx context.Context, logger *slog.Logger, events ports.EventLogger, logType entities.LogType, message string, details map[string]any) {
	if events == nil {
		return
	}
	if _, err := events.Log(ctx, logType, message, details); err != nil {
		logger.Error("Failed to write system log", "message", message, "error", err)
	}
}

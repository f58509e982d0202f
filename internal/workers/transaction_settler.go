package workers

import (
	"context"
	"log/slog"
	"time"
)

// Fallbacks for non-positive settings
const (
	DefaultSettleAfter    = time.Minute
	DefaultSettleInterval = 30 * time.Second
)

// Settler confirms simulated transactions that have been processing long enough.
type Settler interface {
	SettleProcessing(ctx context.Context, olderThan time.Duration) (int, error)
}

// TransactionSettler worker moves processing withdrawals to success
type TransactionSettler struct {
	logger  *slog.Logger
	settler Settler

	// How long a transaction stays processing before it is confirmed
	settleAfter time.Duration

	// How often to look for transactions to confirm
	interval time.Duration
}

// NewTransactionSettler creates a new transaction settler worker.
// Non-positive durations fall back to the defaults.
func NewTransactionSettler(
	logger *slog.Logger,
	settler Settler,
	settleAfter time.Duration,
	interval time.Duration,
) *TransactionSettler {
	if settleAfter <= 0 {
		logger.Warn("Invalid settle delay, using default", "settle_after", settleAfter.String(), "default", DefaultSettleAfter.String())
		settleAfter = DefaultSettleAfter
	}
	if interval <= 0 {
		logger.Warn("Invalid settle interval, using default", "interval", interval.String(), "default", DefaultSettleInterval.String())
		interval = DefaultSettleInterval
	}

	return &TransactionSettler{
		logger:      logger,
		settler:     settler,
		settleAfter: settleAfter,
		interval:    interval,
	}
}

// Start runs the settlement loop until ctx is cancelled
func (ts *TransactionSettler) Start(ctx context.Context) {
	ts.logger.Info("Starting transaction settler worker",
		"settle_after", ts.settleAfter.String(),
		"interval", ts.interval.String())

	if err := ts.settle(ctx); err != nil {
		ts.logger.Error("Initial transaction settlement failed", "error", err)
	}

	ticker := time.NewTicker(ts.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			ts.logger.Info("Transaction settler worker stopped")
			return
		case <-ticker.C:
			if err := ts.settle(ctx); err != nil {
				ts.logger.Error("Transaction settlement failed", "error", err)
			}
		}
	}
}

func (ts *TransactionSettler) settle(ctx context.Context) error {
	count, err := ts.settler.SettleProcessing(ctx, ts.settleAfter)
	if err != nil {
		return err
	}

	if count > 0 {
		ts.logger.Info("Settled transactions", "count", count, "older_than", ts.settleAfter.String())
	} else {
		ts.logger.Debug("No transactions to settle")
	}
	return nil
}

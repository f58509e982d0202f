package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/sand/bot-marketplace/backend/internal/entities"
	"github.com/sand/bot-marketplace/backend/internal/storage"
)

// TransactionsRepository stores simulated wallet transactions, newest first.
type TransactionsRepository struct {
	*Collection[entities.CryptoTransaction, *entities.CryptoTransaction]
}

func NewTransactionsRepository(logger *slog.Logger, store storage.Store) *TransactionsRepository {
	return &TransactionsRepository{
		Collection: NewCollection[entities.CryptoTransaction, *entities.CryptoTransaction](logger, store, KeyTransactions, nil),
	}
}

// ListByOwner returns the transactions of one wallet owner.
func (r *TransactionsRepository) ListByOwner(ctx context.Context, ownerID string) ([]entities.CryptoTransaction, error) {
	items, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	owned := make([]entities.CryptoTransaction, 0, len(items))
	for _, item := range items {
		if item.OwnerID == ownerID {
			owned = append(owned, item)
		}
	}
	return owned, nil
}

// SettleProcessing moves processing transactions created before cutoff to status
// and returns how many were changed.
func (r *TransactionsRepository) SettleProcessing(ctx context.Context, cutoff time.Time, status entities.TransactionStatus) (int, error) {
	settled := 0
	_, err := r.Mutate(ctx, func(items []entities.CryptoTransaction) ([]entities.CryptoTransaction, error) {
		settled = 0
		for i := range items {
			if items[i].Status == entities.TransactionProcessing && items[i].Date.Before(cutoff) {
				items[i].Status = status
				settled++
			}
		}
		return items, nil
	})
	if err != nil {
		return 0, err
	}
	return settled, nil
}

package repository

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sand/bot-marketplace/backend/internal/entities"
	"github.com/sand/bot-marketplace/backend/internal/storage"
)

// ErrCorruptRecord is returned when a stored wallet record cannot be decoded.
var ErrCorruptRecord = errors.New("corrupt wallet record")

const (
	walletKeyPrefix  = "secure_wallet_seed/"
	installSecretKey = "wallet_install_secret"
	installSecretLen = 32
)

// WalletsRepository stores encrypted wallet records, one per owner.
type WalletsRepository struct {
	logger *slog.Logger
	store  storage.Store
}

func NewWalletsRepository(logger *slog.Logger, store storage.Store) *WalletsRepository {
	return &WalletsRepository{logger: logger, store: store}
}

// WalletKey is the storage key of the owner's wallet record.
func WalletKey(ownerID string) string {
	return walletKeyPrefix + ownerID
}

// FindWallet returns the owner's stored wallet or ErrDocumentNotFound.
func (r *WalletsRepository) FindWallet(ctx context.Context, ownerID string) (*entities.StoredWallet, error) {
	raw, err := r.store.Get(ctx, WalletKey(ownerID))
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("wallet of %s: %w", ownerID, ErrDocumentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read wallet: %w", ErrPersistenceUnavailable, err)
	}

	var wallet entities.StoredWallet
	if err = json.Unmarshal(raw, &wallet); err != nil {
		return nil, fmt.Errorf("%w of %s: %w", ErrCorruptRecord, ownerID, err)
	}
	return &wallet, nil
}

// SaveWallet replaces the owner's wallet record.
func (r *WalletsRepository) SaveWallet(ctx context.Context, ownerID string, wallet entities.StoredWallet) error {
	raw, err := json.Marshal(wallet)
	if err != nil {
		return fmt.Errorf("failed to encode wallet record: %w", err)
	}
	if err = r.store.Set(ctx, WalletKey(ownerID), raw); err != nil {
		return fmt.Errorf("%w: write wallet: %w", ErrPersistenceUnavailable, err)
	}

	r.logger.Info("Wallet record stored", "owner", ownerID)
	return nil
}

// DeleteWallet removes the owner's wallet record. Deleting a missing record is not an error.
func (r *WalletsRepository) DeleteWallet(ctx context.Context, ownerID string) error {
	if err := r.store.Delete(ctx, WalletKey(ownerID)); err != nil {
		return fmt.Errorf("%w: delete wallet: %w", ErrPersistenceUnavailable, err)
	}

	r.logger.Info("Wallet record deleted", "owner", ownerID)
	return nil
}

// InstallSecret returns the random per-install secret, creating it on first use.
func (r *WalletsRepository) InstallSecret(ctx context.Context) ([]byte, error) {
	var secret []byte

	err := r.store.Update(ctx, installSecretKey, func(current []byte, exists bool) ([]byte, error) {
		if exists && len(current) == installSecretLen {
			secret = current
			return current, nil
		}

		fresh := make([]byte, installSecretLen)
		if _, err := rand.Read(fresh); err != nil {
			return nil, fmt.Errorf("failed to generate install secret: %w", err)
		}
		secret = fresh
		return fresh, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: install secret: %w", ErrPersistenceUnavailable, err)
	}
	return secret, nil
}

package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tyler-smith/go-bip39"

	"github.com/sand/bot-marketplace/backend/internal/core/ports"
	"github.com/sand/bot-marketplace/backend/internal/entities"
	"github.com/sand/bot-marketplace/backend/internal/usecases/repository"
)

var _ ports.KeyMaterialService = (*WalletService)(nil)

const mnemonicEntropyBits = 128

// WalletService owns wallet key material: mnemonic generation, address
// derivation and encrypted storage, one wallet per owner.
type WalletService struct {
	logger     *slog.Logger
	wallets    ports.WalletStore
	cipher     *SeedCipher
	derivation DerivationMode
	events     ports.EventLogger
	now        func() time.Time
}

func NewWalletService(
	logger *slog.Logger,
	wallets ports.WalletStore,
	cipher *SeedCipher,
	derivation DerivationMode,
	events ports.EventLogger,
) (*WalletService, error) {
	switch derivation {
	case "":
		derivation = DerivationPlaceholder
	case DerivationPlaceholder, DerivationBIP44:
	default:
		return nil, fmt.Errorf("unknown derivation mode %q", derivation)
	}

	return &WalletService{
		logger:     logger,
		wallets:    wallets,
		cipher:     cipher,
		derivation: derivation,
		events:     events,
		now:        time.Now,
	}, nil
}

// GenerateMnemonic returns a new 12 word BIP-39 phrase. It is not stored.
func (s *WalletService) GenerateMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(mnemonicEntropyBits)
	if err != nil {
		return "", fmt.Errorf("failed to generate entropy: %w", err)
	}
	defer clear(entropy)

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("failed to generate mnemonic: %w", err)
	}
	return mnemonic, nil
}

// NormalizeMnemonic collapses whitespace and lower-cases the phrase, which must
// have exactly 12 words.
func NormalizeMnemonic(phrase string) (string, error) {
	words := strings.Fields(strings.ToLower(phrase))
	if len(words) != ports.MnemonicWordCount {
		return "", fmt.Errorf("%w: expected %d words, got %d", ErrInvalidMnemonic, ports.MnemonicWordCount, len(words))
	}
	return strings.Join(words, " "), nil
}

// DeriveWallets returns the address of every supported chain for mnemonic.
// The result depends only on the mnemonic and the derivation mode.
func (s *WalletService) DeriveWallets(mnemonic string) (entities.DerivedAddresses, error) {
	if s.derivation == DerivationBIP44 {
		normalized, err := NormalizeMnemonic(mnemonic)
		if err != nil {
			return nil, err
		}
		return deriveBIP44(normalized)
	}
	return derivePlaceholder(mnemonic), nil
}

// SaveWallet encrypts and stores the owner's mnemonic as given, replacing any
// previous wallet. The phrase must have exactly 12 words.
func (s *WalletService) SaveWallet(ctx context.Context, ownerID, mnemonic string) (*entities.WalletDetails, error) {
	if _, err := NormalizeMnemonic(mnemonic); err != nil {
		return nil, err
	}

	addresses, err := s.DeriveWallets(mnemonic)
	if err != nil {
		return nil, err
	}

	ciphertext, err := s.cipher.Encrypt(mnemonic)
	if err != nil {
		s.logEvent(ctx, entities.LogError, "Wallet encryption failed", ownerID, err)
		return nil, fmt.Errorf("failed to encrypt wallet: %w", err)
	}

	record := entities.StoredWallet{
		Ciphertext: ciphertext,
		CreatedAt:  s.now().UTC(),
	}
	if err = s.wallets.SaveWallet(ctx, ownerID, record); err != nil {
		s.logEvent(ctx, entities.LogError, "Wallet could not be stored", ownerID, err)
		return nil, err
	}

	s.logger.Info("Wallet saved", "owner", ownerID, "derivation", s.derivation)
	s.logEvent(ctx, entities.LogInfo, "Wallet created", ownerID, nil)

	return &entities.WalletDetails{
		Mnemonic:  mnemonic,
		Addresses: addresses,
		CreatedAt: record.CreatedAt,
	}, nil
}

func (s *WalletService) load(ctx context.Context, ownerID string) (string, *entities.StoredWallet, error) {
	record, err := s.wallets.FindWallet(ctx, ownerID)
	if errors.Is(err, repository.ErrDocumentNotFound) {
		return "", nil, fmt.Errorf("%w: owner %s", ErrWalletNotFound, ownerID)
	}
	if errors.Is(err, repository.ErrCorruptRecord) {
		s.logger.Error("Failed to decode wallet", "owner", ownerID, "error", err)
		s.logEvent(ctx, entities.LogError, "Wallet decryption failed", ownerID, err)
		return "", nil, fmt.Errorf("%w: %w", ErrDecryptionFailure, err)
	}
	if err != nil {
		s.logger.Error("Failed to load wallet", "owner", ownerID, "error", err)
		return "", nil, err
	}

	mnemonic, err := s.cipher.Decrypt(record.Ciphertext)
	if err != nil {
		s.logger.Error("Failed to decrypt wallet", "owner", ownerID, "error", err)
		s.logEvent(ctx, entities.LogError, "Wallet decryption failed", ownerID, err)
		return "", nil, err
	}
	return mnemonic, record, nil
}

// GetWallet returns the owner's decrypted mnemonic.
// It fails with ErrWalletNotFound or ErrDecryptionFailure.
func (s *WalletService) GetWallet(ctx context.Context, ownerID string) (string, error) {
	mnemonic, _, err := s.load(ctx, ownerID)
	return mnemonic, err
}

// Wallet returns the owner's mnemonic together with its addresses.
func (s *WalletService) Wallet(ctx context.Context, ownerID string) (*entities.WalletDetails, error) {
	mnemonic, record, err := s.load(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	addresses, err := s.DeriveWallets(mnemonic)
	if err != nil {
		return nil, err
	}
	return &entities.WalletDetails{
		Mnemonic:  mnemonic,
		Addresses: addresses,
		CreatedAt: record.CreatedAt,
	}, nil
}

// HasWallet reports whether the owner has a stored wallet, without decrypting it.
func (s *WalletService) HasWallet(ctx context.Context, ownerID string) (bool, error) {
	_, err := s.wallets.FindWallet(ctx, ownerID)
	switch {
	case errors.Is(err, repository.ErrDocumentNotFound):
		return false, nil
	case errors.Is(err, repository.ErrCorruptRecord):
		return true, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

// ClearWallet deletes the owner's wallet. Without the mnemonic it cannot be recovered.
func (s *WalletService) ClearWallet(ctx context.Context, ownerID string) error {
	if err := s.wallets.DeleteWallet(ctx, ownerID); err != nil {
		return err
	}

	s.logger.Warn("Wallet cleared", "owner", ownerID)
	s.logEvent(ctx, entities.LogWarning, "Wallet deleted", ownerID, nil)
	return nil
}

func (s *WalletService) logEvent(ctx context.Context, logType entities.LogType, message, ownerID string, cause error) {
	if s.events == nil {
		return
	}

	details := map[string]any{"owner": ownerID}
	if cause != nil {
		details["error"] = cause.Error()
	}
	writeEvent(ctx, s.logger, s.events, logType, message, details)
}

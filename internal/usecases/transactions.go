package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/sand/bot-marketplace/backend/internal/core/ports"
	"github.com/sand/bot-marketplace/backend/internal/entities"
	"github.com/sand/bot-marketplace/backend/internal/shared"
	"github.com/sand/bot-marketplace/backend/internal/storage"
	"github.com/sand/bot-marketplace/backend/internal/usecases/repository"
)

var _ ports.TransactionService = (*TransactionServiceImpl)(nil)

const (
	minAddressLength = 10
	hashSuffixLength = 9

	// DefaultAdminTonAddress receives TON Connect and internal payments.
	DefaultAdminTonAddress = "UQD8ulQVVbEf01COyBRuy1RZtqCewT-bfv7SoVblZiBVuo_i"
)

// Payment currencies accepted by PayToAdmin.
const (
	CurrencyTON  = "TON"
	CurrencyUSDT = "USDT"
)

// TransactionSettings configures the simulated network.
type TransactionSettings struct {
	SendLatency     time.Duration
	SigningLatency  time.Duration
	AdminTonAddress string
}

// TransactionServiceImpl validates, builds and simulates wallet transactions.
// Nothing is signed or broadcast.
type TransactionServiceImpl struct {
	logger       *slog.Logger
	wallets      ports.KeyMaterialService
	transactions *repository.TransactionsRepository
	events       ports.EventLogger
	settings     TransactionSettings
	now          func() time.Time
}

func NewTransactionService(
	logger *slog.Logger,
	wallets ports.KeyMaterialService,
	transactions *repository.TransactionsRepository,
	events ports.EventLogger,
	settings TransactionSettings,
) *TransactionServiceImpl {
	if settings.AdminTonAddress == "" {
		settings.AdminTonAddress = DefaultAdminTonAddress
	}
	return &TransactionServiceImpl{
		logger:       logger,
		wallets:      wallets,
		transactions: transactions,
		events:       events,
		settings:     settings,
		now:          time.Now,
	}
}

// IsValidAddress performs the per-chain format check: a prefix and a minimum
// length, no checksum. Unknown chains are never valid.
func (s *TransactionServiceImpl) IsValidAddress(chain entities.Chain, address string) bool {
	if len(address) <= minAddressLength {
		return false
	}

	switch chain {
	case entities.ChainBSC:
		return strings.HasPrefix(address, "0x")
	case entities.ChainTRX:
		return strings.HasPrefix(address, "T")
	case entities.ChainTON, entities.ChainSOL:
		return true
	default:
		return false
	}
}

func isKnownChain(chain entities.Chain) bool {
	for _, c := range entities.Chains {
		if c == chain {
			return true
		}
	}
	return false
}

// SendTransaction simulates a withdrawal. Validation happens before any delay
// and before anything is stored.
func (s *TransactionServiceImpl) SendTransaction(
	ctx context.Context,
	ownerID string,
	chain entities.Chain,
	toAddress string,
	amount float64,
	symbol string,
) (*entities.CryptoTransaction, error) {
	if !isKnownChain(chain) {
		return nil, fmt.Errorf("%w: %w: %q", ErrInvalidAddress, ErrUnsupportedChain, chain)
	}
	if !s.IsValidAddress(chain, toAddress) {
		return nil, fmt.Errorf("%w: %q is not a %s address", ErrInvalidAddress, toAddress, chain)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}
	if symbol == "" {
		return nil, fmt.Errorf("%w: symbol is required", ErrInvalidInput)
	}

	if err := storage.Sleep(ctx, s.settings.SendLatency); err != nil {
		return nil, err
	}

	tx := entities.CryptoTransaction{
		OwnerID:   ownerID,
		Type:      entities.TransactionWithdrawal,
		Amount:    amount,
		Symbol:    symbol,
		Chain:     chain,
		ToAddress: toAddress,
		Date:      s.now().UTC(),
		Status:    entities.TransactionProcessing,
		Hash:      fmt.Sprintf("%s_TX_%s", chain, shared.RandomBase36(hashSuffixLength)),
	}

	saved, err := s.transactions.Create(ctx, tx)
	if err != nil {
		return nil, err
	}

	if shared.IsSimulationDebugMode() {
		s.logger.Info("Simulated transaction", "hash", saved.Hash, "chain", chain, "to", toAddress, "amount", amount, "symbol", symbol)
	}
	s.logEvent(ctx, entities.LogTransaction, "Withdrawal submitted", map[string]any{
		"owner":  ownerID,
		"chain":  chain,
		"amount": amount,
		"symbol": symbol,
		"hash":   saved.Hash,
	})
	return &saved, nil
}

// CreateTonTransaction builds a TON Connect sendTransaction request paying
// amountTON to the admin wallet, valid for ten minutes.
func (s *TransactionServiceImpl) CreateTonTransaction(amountTON float64) (*entities.TonConnectRequest, error) {
	nanotons, err := TONToNanotons(amountTON)
	if err != nil {
		return nil, err
	}

	return &entities.TonConnectRequest{
		ValidUntil: s.now().Add(ports.TonConnectValidity).Unix(),
		Messages: []entities.TonConnectMessage{
			{Address: s.settings.AdminTonAddress, Amount: nanotons},
		},
	}, nil
}

// PayToAdmin simulates a payment from the owner's internal wallet. It requires
// a saved wallet and always succeeds when one exists.
func (s *TransactionServiceImpl) PayToAdmin(ctx context.Context, ownerID string, amount float64, currency string) (*entities.PaymentResult, error) {
	currency = strings.ToUpper(currency)
	if currency != CurrencyTON && currency != CurrencyUSDT {
		return nil, fmt.Errorf("%w: currency %q", ErrInvalidInput, currency)
	}
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAmount, amount)
	}

	ok, err := s.wallets.HasWallet(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: create a wallet before paying from it", ErrWalletNotFound)
	}

	if err = storage.Sleep(ctx, s.settings.SigningLatency); err != nil {
		return nil, err
	}

	result := &entities.PaymentResult{
		Success: true,
		Hash:    fmt.Sprintf("%s_PAY_%s", currency, shared.RandomBase36(hashSuffixLength)),
	}

	s.logger.Info("Internal payment signed", "owner", ownerID, "amount", amount, "currency", currency, "hash", result.Hash)
	s.logEvent(ctx, entities.LogTransaction, "Internal wallet payment", map[string]any{
		"owner":    ownerID,
		"amount":   amount,
		"currency": currency,
		"hash":     result.Hash,
	})
	return result, nil
}

// History returns the owner's transactions, most recent first.
func (s *TransactionServiceImpl) History(ctx context.Context, ownerID string) ([]entities.CryptoTransaction, error) {
	return s.transactions.ListByOwner(ctx, ownerID)
}

// SettleProcessing confirms processing transactions older than olderThan.
func (s *TransactionServiceImpl) SettleProcessing(ctx context.Context, olderThan time.Duration) (int, error) {
	return s.transactions.SettleProcessing(ctx, s.now().Add(-olderThan), entities.TransactionSuccess)
}

func (s *TransactionServiceImpl) logEvent(ctx context.Context, logType entities.LogType, message string, details map[string]any) {
	writeEvent(ctx, s.logger, s.events, logType, message, details)
}

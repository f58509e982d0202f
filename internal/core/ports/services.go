package ports

import (
	"context"
	"time"

	"github.com/sand/bot-marketplace/backend/internal/entities"
)

// EventLogger appends entries to the admin system log.
type EventLogger interface {
	Log(ctx context.Context, logType entities.LogType, message string, details any) (entities.SystemLog, error)
}

// StatsRecorder updates the dashboard counters.
type StatsRecorder interface {
	IncrementView(ctx context.Context) (entities.AppStats, error)
	IncrementRevenue(ctx context.Context, amount float64) (entities.AppStats, error)
}

// WalletStore persists encrypted wallet records.
type WalletStore interface {
	FindWallet(ctx context.Context, ownerID string) (*entities.StoredWallet, error)
	SaveWallet(ctx context.Context, ownerID string, wallet entities.StoredWallet) error
	DeleteWallet(ctx context.Context, ownerID string) error
}

// KeyMaterialService manages wallet mnemonics and derived addresses.
type KeyMaterialService interface {
	GenerateMnemonic() (string, error)
	DeriveWallets(mnemonic string) (entities.DerivedAddresses, error)
	SaveWallet(ctx context.Context, ownerID, mnemonic string) (*entities.WalletDetails, error)
	GetWallet(ctx context.Context, ownerID string) (string, error)
	Wallet(ctx context.Context, ownerID string) (*entities.WalletDetails, error)
	HasWallet(ctx context.Context, ownerID string) (bool, error)
	ClearWallet(ctx context.Context, ownerID string) error
}

// TransactionService builds and simulates wallet transactions.
type TransactionService interface {
	IsValidAddress(chain entities.Chain, address string) bool
	SendTransaction(ctx context.Context, ownerID string, chain entities.Chain, toAddress string, amount float64, symbol string) (*entities.CryptoTransaction, error)
	CreateTonTransaction(amountTON float64) (*entities.TonConnectRequest, error)
	PayToAdmin(ctx context.Context, ownerID string, amount float64, currency string) (*entities.PaymentResult, error)
	History(ctx context.Context, ownerID string) ([]entities.CryptoTransaction, error)
	SettleProcessing(ctx context.Context, olderThan time.Duration) (int, error)
}

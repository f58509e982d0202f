package usecases

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"github.com/skip2/go-qrcode"

	"github.com/sand/bot-marketplace/backend/internal/core/ports"
	"github.com/sand/bot-marketplace/backend/internal/entities"
	"github.com/sand/bot-marketplace/backend/internal/usecases/mocked"
)

const defaultQRSize = 256

// AssetService resolves the wallet portfolio shown to its owner.
type AssetService struct {
	logger       *slog.Logger
	wallets      ports.KeyMaterialService
	transactions ports.TransactionService
	qrSize       int
}

func NewAssetService(logger *slog.Logger, wallets ports.KeyMaterialService, transactions ports.TransactionService, qrSize int) *AssetService {
	if qrSize <= 0 {
		qrSize = defaultQRSize
	}
	return &AssetService{
		logger:       logger,
		wallets:      wallets,
		transactions: transactions,
		qrSize:       qrSize,
	}
}

// Portfolio returns every catalog asset with the owner's receive addresses and
// a balance computed from the transaction history. Failed transactions are ignored.
func (s *AssetService) Portfolio(ctx context.Context, ownerID string) ([]entities.CryptoAsset, error) {
	wallet, err := s.wallets.Wallet(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	history, err := s.transactions.History(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	balances := make(map[string]float64)
	for _, tx := range history {
		if tx.Status == entities.TransactionFailed {
			continue
		}
		switch tx.Type {
		case entities.TransactionDeposit, entities.TransactionBotEarnings:
			balances[tx.Symbol] += tx.Amount
		case entities.TransactionWithdrawal:
			balances[tx.Symbol] -= tx.Amount
		}
	}

	assets := mocked.AssetCatalog()
	for i := range assets {
		asset := &assets[i]
		asset.Balance = balances[asset.Symbol]
		for j := range asset.Networks {
			network := &asset.Networks[j]
			if chain, ok := mocked.ProtocolChains[network.Protocol]; ok {
				network.Address = wallet.Addresses[chain]
			}
		}
	}
	return assets, nil
}

// DepositAddress returns the owner's address on chain with a PNG QR code,
// base64 encoded.
func (s *AssetService) DepositAddress(ctx context.Context, ownerID string, chain entities.Chain) (*entities.DepositAddress, error) {
	if !isKnownChain(chain) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedChain, chain)
	}

	wallet, err := s.wallets.Wallet(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	address := wallet.Addresses[chain]

	png, err := qrcode.Encode(address, qrcode.Medium, s.qrSize)
	if err != nil {
		s.logger.Error("Failed to generate QR code", "chain", chain, "error", err)
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	return &entities.DepositAddress{
		Chain:   chain,
		Address: address,
		QRCode:  base64.StdEncoding.EncodeToString(png),
	}, nil
}

// ChainForProtocol maps a network protocol such as TRC20 to its chain. Chain
// identifiers map to themselves.
func ChainForProtocol(protocol string) (entities.Chain, bool) {
	if chain, ok := mocked.ProtocolChains[protocol]; ok {
		return chain, true
	}
	chain := entities.Chain(protocol)
	return chain, isKnownChain(chain)
}

package mocked

import "github.com/sand/bot-marketplace/backend/internal/entities"

// Network protocols the wallet can receive on.
const (
	ProtocolTON   = "TON"
	ProtocolTRC20 = "TRC20"
	ProtocolBEP20 = "BEP20"
	ProtocolSOL   = "SOL"
)

// ProtocolChains maps a network protocol to the chain whose derived address receives it.
var ProtocolChains = map[string]entities.Chain{
	ProtocolTON:   entities.ChainTON,
	ProtocolTRC20: entities.ChainTRX,
	ProtocolBEP20: entities.ChainBSC,
	ProtocolSOL:   entities.ChainSOL,
}

// AssetCatalog returns the tokens shown in the wallet with their simulated
// prices and 24h changes. Network addresses are left empty.
func AssetCatalog() []entities.CryptoAsset {
	return []entities.CryptoAsset{
		{
			Symbol: "TON", Name: "Toncoin", Price: 185.20, Change24h: 2.5,
			Networks: []entities.NetworkOption{
				{ID: "ton-main", Name: "The Open Network", Protocol: ProtocolTON},
			},
		},
		{
			Symbol: "USDT", Name: "Tether", Price: 34.15, Change24h: 0.1,
			Networks: []entities.NetworkOption{
				{ID: "trc20", Name: "Tron (TRC20)", Protocol: ProtocolTRC20},
				{ID: "bep20", Name: "BNB Smart Chain (BEP20)", Protocol: ProtocolBEP20},
			},
		},
		{
			Symbol: "BNB", Name: "BNB", Price: 19800, Change24h: 1.5,
			Networks: []entities.NetworkOption{
				{ID: "bsc-main", Name: "BNB Smart Chain", Protocol: ProtocolBEP20},
			},
		},
		{
			Symbol: "TRX", Name: "TRON", Price: 4.10, Change24h: -1.2,
			Networks: []entities.NetworkOption{
				{ID: "trx-main", Name: "Tron Network", Protocol: ProtocolTRC20},
			},
		},
		{
			Symbol: "SOL", Name: "Solana", Price: 4800, Change24h: 5.2,
			Networks: []entities.NetworkOption{
				{ID: "sol-main", Name: "Solana", Protocol: ProtocolSOL},
			},
		},
	}
}

// AssetPrice returns the simulated price of symbol.
func AssetPrice(symbol string) (float64, bool) {
	for _, asset := range AssetCatalog() {
		if asset.Symbol == symbol {
			return asset.Price, true
		}
	}
	return 0, false
}

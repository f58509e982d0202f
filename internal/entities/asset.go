package entities

// NetworkOption is one network a crypto asset can be received on.
type NetworkOption struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Protocol string `json:"protocol"`
	Address  string `json:"address"`
}

// CryptoAsset is a token held in the wallet.
type CryptoAsset struct {
	Symbol    string          `json:"symbol"`
	Name      string          `json:"name"`
	Balance   float64         `json:"balance"`
	Price     float64         `json:"price"`
	Change24h float64         `json:"change24h"`
	Networks  []NetworkOption `json:"networks"`
}

// DepositAddress is a receive address with its QR code.
type DepositAddress struct {
	Chain   Chain  `json:"chain"`
	Address string `json:"address"`
	QRCode  string `json:"qrCode"`
}

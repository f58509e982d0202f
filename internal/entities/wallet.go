package entities

import "time"

// StoredWallet is the persisted, encrypted form of a wallet mnemonic.
type StoredWallet struct {
	Ciphertext string    `json:"ciphertext"`
	CreatedAt  time.Time `json:"created_at"`
}

// DerivedAddresses maps each supported chain to the wallet address on it.
type DerivedAddresses map[Chain]string

// WalletDetails is the decrypted wallet returned to its owner.
type WalletDetails struct {
	Mnemonic  string           `json:"mnemonic"`
	Addresses DerivedAddresses `json:"addresses"`
	CreatedAt time.Time        `json:"createdAt"`
}

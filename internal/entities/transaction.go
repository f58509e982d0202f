package entities

import "time"

// Chain identifies a supported blockchain.
type Chain string

const (
	ChainTON Chain = "TON"
	ChainBSC Chain = "BSC"
	ChainTRX Chain = "TRX"
	ChainSOL Chain = "SOL"
)

// Chains lists every supported chain in display order.
var Chains = []Chain{ChainTON, ChainBSC, ChainTRX, ChainSOL}

type TransactionType string

const (
	TransactionDeposit     TransactionType = "Deposit"
	TransactionWithdrawal  TransactionType = "Withdrawal"
	TransactionBotEarnings TransactionType = "BotEarnings"
)

type TransactionStatus string

const (
	TransactionProcessing TransactionStatus = "Processing"
	TransactionSuccess    TransactionStatus = "Success"
	TransactionFailed     TransactionStatus = "Failed"
)

// CryptoTransaction is a simulated wallet transaction.
type CryptoTransaction struct {
	ID        string            `json:"id"`
	OwnerID   string            `json:"ownerId"`
	Type      TransactionType   `json:"type"`
	Amount    float64           `json:"amount"`
	Symbol    string            `json:"symbol"`
	Chain     Chain             `json:"chain"`
	ToAddress string            `json:"toAddress,omitempty"`
	Date      time.Time         `json:"date"`
	Status    TransactionStatus `json:"status"`
	Hash      string            `json:"hash"`
}

func (t *CryptoTransaction) GetID() string   { return t.ID }
func (t *CryptoTransaction) SetID(id string) { t.ID = id }

// PaymentResult is returned by internal wallet payments.
type PaymentResult struct {
	Success bool   `json:"success"`
	Hash    string `json:"hash"`
}

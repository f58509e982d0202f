package ports

import "time"

const (
	DefaultLogCap         = 200
	DefaultLogsPageLimit  = 100
	TonConnectValidity    = 600 * time.Second
	OwnedBotValidity      = 30 * 24 * time.Hour
	PremiumValidity       = 30 * 24 * time.Hour
	MinTonPayment         = 0.01
	MnemonicWordCount     = 12
	StarsPerCurrencyUnit  = 1.5
	TelegramTokenLifetime = 24 * time.Hour
	AdminTokenLifetime    = 12 * time.Hour
)

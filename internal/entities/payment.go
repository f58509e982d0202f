package entities

// TonConnectMessage is one outgoing message of a TON Connect sendTransaction request.
type TonConnectMessage struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

// TonConnectRequest matches the TON Connect sendTransaction request shape.
type TonConnectRequest struct {
	ValidUntil int64               `json:"validUntil"`
	Messages   []TonConnectMessage `json:"messages"`
}

type PaymentMethod string

const (
	PaymentTON      PaymentMethod = "ton"
	PaymentStars    PaymentMethod = "stars"
	PaymentInternal PaymentMethod = "internal"
)

// Valid reports whether m is a supported payment method.
func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentTON, PaymentStars, PaymentInternal:
		return true
	default:
		return false
	}
}

// Quote is the price of a bot or a plan in every supported payment currency.
type Quote struct {
	BotID  string  `json:"botId,omitempty"`
	PlanID string  `json:"planId,omitempty"`
	Price  float64 `json:"price"`
	Stars  int64   `json:"stars"`
	TON    float64 `json:"ton"`
}

// Purchase is the outcome of buying a bot.
type Purchase struct {
	Bot    Bot           `json:"bot"`
	Owned  OwnedBot      `json:"owned"`
	Method PaymentMethod `json:"method"`
	Quote  Quote         `json:"quote"`
	Hash   string        `json:"hash,omitempty"`
}

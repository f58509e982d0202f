package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/sand/bot-marketplace/backend/internal/entities"
	"github.com/sand/bot-marketplace/backend/internal/usecases"
)

type mnemonicRequest struct {
	Mnemonic string `json:"mnemonic"`
}

type sendTransactionRequest struct {
	Chain     entities.Chain `json:"chain"`
	ToAddress string         `json:"toAddress"`
	Amount    float64        `json:"amount"`
	Symbol    string         `json:"symbol"`
}

type walletResponse struct {
	Mnemonic  string                    `json:"mnemonic,omitempty"`
	Addresses entities.DerivedAddresses `json:"addresses"`
	CreatedAt string                    `json:"createdAt,omitempty"`
}

func toWalletResponse(details *entities.WalletDetails, reveal bool) walletResponse {
	resp := walletResponse{Addresses: details.Addresses}
	if reveal {
		resp.Mnemonic = details.Mnemonic
	}
	if !details.CreatedAt.IsZero() {
		resp.CreatedAt = details.CreatedAt.Format(time.RFC3339)
	}
	return resp
}

// GenerateWallet returns a fresh mnemonic with its addresses. Nothing is stored
// until the client saves it.
func (h *HTTPHandler) GenerateWallet(w http.ResponseWriter, r *http.Request) {
	mnemonic, err := h.services.Wallets.GenerateMnemonic()
	if err == nil {
		var addresses entities.DerivedAddresses
		addresses, err = h.services.Wallets.DeriveWallets(mnemonic)
		if err == nil {
			h.metrics.WalletOperation("generate", nil)
			writeJSON(w, h.logger, http.StatusOK, walletResponse{Mnemonic: mnemonic, Addresses: addresses})
			return
		}
	}

	h.metrics.WalletOperation("generate", err)
	h.writeError(w, r, "generate wallet", err)
}

// SaveWallet stores the caller's mnemonic, replacing any previous wallet
func (h *HTTPHandler) SaveWallet(w http.ResponseWriter, r *http.Request) {
	h.storeWallet(w, r, "save", false)
}

// ImportWallet stores a user supplied mnemonic after normalizing it
func (h *HTTPHandler) ImportWallet(w http.ResponseWriter, r *http.Request) {
	h.storeWallet(w, r, "import", true)
}

func (h *HTTPHandler) storeWallet(w http.ResponseWriter, r *http.Request, operation string, normalize bool) {
	var req mnemonicRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, operation+" wallet", err)
		return
	}

	mnemonic := req.Mnemonic
	if normalize {
		normalized, err := usecases.NormalizeMnemonic(mnemonic)
		if err != nil {
			h.metrics.WalletOperation(operation, err)
			h.writeError(w, r, operation+" wallet", err)
			return
		}
		mnemonic = normalized
	}

	details, err := h.services.Wallets.SaveWallet(r.Context(), callerID(r), mnemonic)
	h.metrics.WalletOperation(operation, err)
	if err != nil {
		h.writeError(w, r, operation+" wallet", err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, toWalletResponse(details, false))
}

// GetWallet returns the caller's addresses. ?reveal=true includes the mnemonic
func (h *HTTPHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	details, err := h.services.Wallets.Wallet(r.Context(), callerID(r))
	if err != nil {
		h.writeError(w, r, "get wallet", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, toWalletResponse(details, r.URL.Query().Get("reveal") == "true"))
}

func (h *HTTPHandler) ClearWallet(w http.ResponseWriter, r *http.Request) {
	err := h.services.Wallets.ClearWallet(r.Context(), callerID(r))
	h.metrics.WalletOperation("clear", err)
	if err != nil {
		h.writeError(w, r, "clear wallet", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) GetAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.services.Assets.Portfolio(r.Context(), callerID(r))
	if err != nil {
		h.writeError(w, r, "get assets", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, assets)
}

// GetDepositAddress accepts a chain (TON, BSC, TRX, SOL) or a network protocol (TRC20, BEP20)
func (h *HTTPHandler) GetDepositAddress(w http.ResponseWriter, r *http.Request) {
	name := strings.ToUpper(mux.Vars(r)["chain"])
	chain, ok := usecases.ChainForProtocol(name)
	if !ok {
		h.writeError(w, r, "get deposit address", fmt.Errorf("%w: %q", usecases.ErrUnsupportedChain, name))
		return
	}

	deposit, err := h.services.Assets.DepositAddress(r.Context(), callerID(r), chain)
	if err != nil {
		h.writeError(w, r, "get deposit address", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, deposit)
}

func (h *HTTPHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	history, err := h.services.Transactions.History(r.Context(), callerID(r))
	if err != nil {
		h.writeError(w, r, "get transactions", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, history)
}

// ValidateAddress checks ?address= against the format rules of ?chain=
func (h *HTTPHandler) ValidateAddress(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	chain := entities.Chain(strings.ToUpper(query.Get("chain")))
	address := strings.TrimSpace(query.Get("address"))

	writeJSON(w, h.logger, http.StatusOK, map[string]any{
		"chain":   chain,
		"address": address,
		"valid":   h.services.Transactions.IsValidAddress(chain, address),
	})
}

// SendTransaction submits a simulated withdrawal
func (h *HTTPHandler) SendTransaction(w http.ResponseWriter, r *http.Request) {
	var req sendTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, "send transaction", err)
		return
	}

	tx, err := h.services.Transactions.SendTransaction(r.Context(), callerID(r),
		entities.Chain(strings.ToUpper(string(req.Chain))), strings.TrimSpace(req.ToAddress), req.Amount, strings.ToUpper(req.Symbol))
	h.metrics.WalletOperation("send", err)
	if err != nil {
		h.writeError(w, r, "send transaction", err)
		return
	}
	writeJSON(w, h.logger, http.StatusAccepted, tx)
}

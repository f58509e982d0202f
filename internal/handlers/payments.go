package handlers

import (
	"fmt"
	"net/http"

	"github.com/sand/bot-marketplace/backend/internal/entities"
	"github.com/sand/bot-marketplace/backend/internal/usecases"
)

type tonPaymentRequest struct {
	BotID  string  `json:"botId,omitempty"`
	PlanID string  `json:"planId,omitempty"`
	Amount float64 `json:"amount,omitempty"`
}

type tonPaymentResponse struct {
	Transaction *entities.TonConnectRequest `json:"transaction"`
	Quote       *entities.Quote             `json:"quote,omitempty"`
}

type adminPaymentRequest struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// CreateTonPayment builds a TON Connect request for a bot, a plan or a plain TON amount
func (h *HTTPHandler) CreateTonPayment(w http.ResponseWriter, r *http.Request) {
	var req tonPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, "create TON payment", err)
		return
	}

	var resp tonPaymentResponse
	switch {
	case req.BotID != "":
		request, quote, err := h.services.Marketplace.TonPaymentRequest(r.Context(), req.BotID)
		if err != nil {
			h.writeError(w, r, "create TON payment", err)
			return
		}
		resp = tonPaymentResponse{Transaction: request, Quote: &quote}
	case req.PlanID != "":
		request, quote, err := h.services.Marketplace.PlanTonPaymentRequest(req.PlanID)
		if err != nil {
			h.writeError(w, r, "create TON payment", err)
			return
		}
		resp = tonPaymentResponse{Transaction: request, Quote: &quote}
	case req.Amount > 0:
		request, err := h.services.Transactions.CreateTonTransaction(req.Amount)
		if err != nil {
			h.writeError(w, r, "create TON payment", err)
			return
		}
		resp = tonPaymentResponse{Transaction: request}
	default:
		h.writeError(w, r, "create TON payment", fmt.Errorf("%w: botId, planId or amount is required", usecases.ErrInvalidInput))
		return
	}

	writeJSON(w, h.logger, http.StatusOK, resp)
}

// PayToAdmin pays from the caller's internal wallet
func (h *HTTPHandler) PayToAdmin(w http.ResponseWriter, r *http.Request) {
	var req adminPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, "pay", err)
		return
	}

	result, err := h.services.Transactions.PayToAdmin(r.Context(), callerID(r), req.Amount, req.Currency)
	h.metrics.WalletOperation("pay", err)
	if err != nil {
		h.writeError(w, r, "pay", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, result)
}

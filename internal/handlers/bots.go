package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sand/bot-marketplace/backend/internal/entities"
)

type purchaseRequest struct {
	BotID     string                 `json:"botId"`
	Method    entities.PaymentMethod `json:"method"`
	Reference string                 `json:"reference"`
}

// ListBots returns the marketplace catalog, newest first
func (h *HTTPHandler) ListBots(w http.ResponseWriter, r *http.Request) {
	bots, err := h.services.Marketplace.ListBots(r.Context())
	if err != nil {
		h.writeError(w, r, "list bots", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, bots)
}

func (h *HTTPHandler) GetBot(w http.ResponseWriter, r *http.Request) {
	bot, err := h.services.Marketplace.GetBot(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, "get bot", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, bot)
}

func (h *HTTPHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.services.Marketplace.Quote(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, "quote bot", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, quote)
}

func (h *HTTPHandler) CreateBot(w http.ResponseWriter, r *http.Request) {
	var input entities.Bot
	if err := decodeJSON(r, &input); err != nil {
		h.writeError(w, r, "create bot", err)
		return
	}

	bot, err := h.services.Marketplace.CreateBot(r.Context(), input)
	if err != nil {
		h.writeError(w, r, "create bot", err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, bot)
}

func (h *HTTPHandler) UpdateBot(w http.ResponseWriter, r *http.Request) {
	var patch entities.BotPatch
	if err := decodeJSON(r, &patch); err != nil {
		h.writeError(w, r, "update bot", err)
		return
	}

	bot, err := h.services.Marketplace.UpdateBot(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		h.writeError(w, r, "update bot", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, bot)
}

func (h *HTTPHandler) DeleteBot(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Marketplace.DeleteBot(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, "delete bot", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListPurchases returns the bots owned by the caller
func (h *HTTPHandler) ListPurchases(w http.ResponseWriter, r *http.Request) {
	owned, err := h.services.Marketplace.OwnedBots(r.Context(), callerID(r))
	if err != nil {
		h.writeError(w, r, "list purchases", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, owned)
}

// CreatePurchase buys a bot for the caller
func (h *HTTPHandler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, "purchase bot", err)
		return
	}

	purchase, err := h.services.Marketplace.Purchase(r.Context(), callerID(r), req.BotID, req.Method, req.Reference)
	if err != nil {
		h.writeError(w, r, "purchase bot", err)
		return
	}

	h.metrics.PurchaseCompleted(purchase.Method)
	h.logger.Info("Bot purchased", "user", callerID(r), "bot", req.BotID, "method", req.Method)
	writeJSON(w, h.logger, http.StatusCreated, purchase)
}

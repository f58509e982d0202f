package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sand/bot-marketplace/backend/internal/entities"
)

type planPurchaseRequest struct {
	Method    entities.PaymentMethod `json:"method"`
	Reference string                 `json:"reference"`
}

// ListPlans returns the membership plans
func (h *HTTPHandler) ListPlans(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.services.Marketplace.ListPlans())
}

// CreatePlanPurchase subscribes the caller to a plan
func (h *HTTPHandler) CreatePlanPurchase(w http.ResponseWriter, r *http.Request) {
	var req planPurchaseRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, "purchase plan", err)
		return
	}

	planID := mux.Vars(r)["id"]
	purchase, err := h.services.Marketplace.PurchasePlan(r.Context(), callerID(r), planID, req.Method, req.Reference)
	if err != nil {
		h.writeError(w, r, "purchase plan", err)
		return
	}

	h.metrics.PurchaseCompleted(purchase.Method)
	h.logger.Info("Plan purchased", "user", callerID(r), "plan", planID, "method", req.Method)
	writeJSON(w, h.logger, http.StatusCreated, purchase)
}

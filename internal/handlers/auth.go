package handlers

import (
	"net/http"
)

type telegramLoginRequest struct {
	InitData string `json:"initData"`
}

type adminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TelegramLogin exchanges Mini-App init data for a token
func (h *HTTPHandler) TelegramLogin(w http.ResponseWriter, r *http.Request) {
	var req telegramLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, "log in", err)
		return
	}

	session, err := h.services.Auth.TelegramLogin(r.Context(), req.InitData)
	if err != nil {
		h.writeError(w, r, "log in", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, session)
}

// AdminLogin authenticates an admin panel operator
func (h *HTTPHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, r, "log in", err)
		return
	}

	session, err := h.services.Auth.AdminLogin(r.Context(), req.Username, req.Password)
	if err != nil {
		h.writeError(w, r, "log in", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, session)
}

package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sand/bot-marketplace/backend/internal/entities"
)

func (h *HTTPHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.services.Users.ListUsers(r.Context())
	if err != nil {
		h.writeError(w, r, "list users", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, users)
}

func (h *HTTPHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.services.Users.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, r, "get user", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, user)
}

func (h *HTTPHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input entities.User
	if err := decodeJSON(r, &input); err != nil {
		h.writeError(w, r, "create user", err)
		return
	}

	user, err := h.services.Users.CreateUser(r.Context(), input)
	if err != nil {
		h.writeError(w, r, "create user", err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, user)
}

func (h *HTTPHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var patch entities.UserPatch
	if err := decodeJSON(r, &patch); err != nil {
		h.writeError(w, r, "update user", err)
		return
	}

	user, err := h.services.Users.UpdateUser(r.Context(), mux.Vars(r)["id"], patch)
	if err != nil {
		h.writeError(w, r, "update user", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, user)
}

func (h *HTTPHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.services.Users.DeleteUser(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.writeError(w, r, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *HTTPHandler) GetUserStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.services.Users.UserStats(r.Context())
	if err != nil {
		h.writeError(w, r, "get user stats", err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, stats)
}

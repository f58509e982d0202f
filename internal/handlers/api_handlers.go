package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/sand/bot-marketplace/backend/internal/core/ports"
	"github.com/sand/bot-marketplace/backend/internal/entities"
	"github.com/sand/bot-marketplace/backend/internal/metrics"
	"github.com/sand/bot-marketplace/backend/internal/usecases"
)

const maxBodyBytes = 1 << 20

// Services are the use cases exposed over HTTP.
type Services struct {
	Auth         *usecases.AuthService
	Users        *usecases.UserService
	Marketplace  *usecases.MarketplaceService
	Logs         *usecases.LoggingService
	Assets       *usecases.AssetService
	Wallets      ports.KeyMaterialService
	Transactions ports.TransactionService
}

type HTTPHandler struct {
	logger   *slog.Logger
	services Services
	metrics  *metrics.Metrics
}

func NewHTTPHandler(logger *slog.Logger, services Services, metrics *metrics.Metrics) *HTTPHandler {
	return &HTTPHandler{
		logger:   logger,
		services: services,
		metrics:  metrics,
	}
}

func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.Health).Methods("GET")
	router.Handle("/metrics", h.metrics.Handler()).Methods("GET")

	// Auth
	router.HandleFunc("/auth/telegram", h.TelegramLogin).Methods("POST")
	router.HandleFunc("/auth/admin-login", h.AdminLogin).Methods("POST")

	// Users
	router.HandleFunc("/users/stats", h.requireAdmin(h.GetUserStats)).Methods("GET")
	router.HandleFunc("/users", h.requireAdmin(h.ListUsers)).Methods("GET")
	router.HandleFunc("/users", h.requireAdmin(h.CreateUser)).Methods("POST")
	router.HandleFunc("/users/{id}", h.requireAdmin(h.GetUser)).Methods("GET")
	router.HandleFunc("/users/{id}", h.requireAdmin(h.UpdateUser)).Methods("PUT")
	router.HandleFunc("/users/{id}", h.requireAdmin(h.DeleteUser)).Methods("DELETE")

	// Bots
	router.HandleFunc("/bots", h.ListBots).Methods("GET")
	router.HandleFunc("/bots", h.requireAdmin(h.CreateBot)).Methods("POST")
	router.HandleFunc("/bots/{id}", h.GetBot).Methods("GET")
	router.HandleFunc("/bots/{id}/quote", h.GetQuote).Methods("GET")
	router.HandleFunc("/bots/{id}", h.requireAdmin(h.UpdateBot)).Methods("PUT")
	router.HandleFunc("/bots/{id}", h.requireAdmin(h.DeleteBot)).Methods("DELETE")

	// Purchases, plans
	router.HandleFunc("/purchases", h.requireUser(h.ListPurchases)).Methods("GET")
	router.HandleFunc("/purchases", h.requireUser(h.CreatePurchase)).Methods("POST")
	router.HandleFunc("/plans", h.ListPlans).Methods("GET")
	router.HandleFunc("/plans/{id}/purchase", h.requireUser(h.CreatePlanPurchase)).Methods("POST")

	// Logs, stats
	router.HandleFunc("/logs", h.requireAdmin(h.GetLogs)).Methods("GET")
	router.HandleFunc("/logs", h.requireUser(h.CreateLog)).Methods("POST")
	router.HandleFunc("/logs", h.requireAdmin(h.ClearLogs)).Methods("DELETE")
	router.HandleFunc("/stats/dashboard", h.requireAdmin(h.GetDashboard)).Methods("GET")
	router.HandleFunc("/stats/views", h.IncrementViews).Methods("POST")

	// Wallet
	router.HandleFunc("/wallet/generate", h.requireUser(h.GenerateWallet)).Methods("POST")
	router.HandleFunc("/wallet/import", h.requireUser(h.ImportWallet)).Methods("POST")
	router.HandleFunc("/wallet", h.requireUser(h.SaveWallet)).Methods("POST")
	router.HandleFunc("/wallet", h.requireUser(h.GetWallet)).Methods("GET")
	router.HandleFunc("/wallet", h.requireUser(h.ClearWallet)).Methods("DELETE")
	router.HandleFunc("/wallet/assets", h.requireUser(h.GetAssets)).Methods("GET")
	router.HandleFunc("/wallet/deposit/{chain}", h.requireUser(h.GetDepositAddress)).Methods("GET")
	router.HandleFunc("/wallet/transactions", h.requireUser(h.GetTransactions)).Methods("GET")
	router.HandleFunc("/wallet/validate", h.requireUser(h.ValidateAddress)).Methods("GET")
	router.HandleFunc("/wallet/send", h.requireUser(h.SendTransaction)).Methods("POST")

	// Payments
	router.HandleFunc("/payments/ton", h.requireUser(h.CreateTonPayment)).Methods("POST")
	router.HandleFunc("/payments/admin", h.requireUser(h.PayToAdmin)).Methods("POST")
}

func (h *HTTPHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, map[string]string{"status": "ok"})
}

// Middleware records request metrics labelled with the matched route template.
func (h *HTTPHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		route := "unmatched"
		if current := mux.CurrentRoute(r); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		h.metrics.ObserveRequest(r.Method, route, recorder.status, time.Since(start))
		h.logger.Debug("Request served", "method", r.Method, "route", route, "status", recorder.status, "duration", time.Since(start))
	})
}

// statusFor maps use case errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecases.ErrInvalidInput),
		errors.Is(err, usecases.ErrInvalidAddress),
		errors.Is(err, usecases.ErrInvalidAmount),
		errors.Is(err, usecases.ErrInvalidMnemonic),
		errors.Is(err, usecases.ErrUnsupportedChain),
		errors.Is(err, usecases.ErrUnsupportedMethod):
		return http.StatusBadRequest
	case errors.Is(err, usecases.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, usecases.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, usecases.ErrNotFound), errors.Is(err, usecases.ErrWalletNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecases.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, usecases.ErrDecryptionFailure):
		return http.StatusUnprocessableEntity
	case errors.Is(err, usecases.ErrPersistenceUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeError logs err and replies with its status. Internal errors are not echoed.
func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, action string, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error("Request failed", "action", action, "path", r.URL.Path, "error", err)
		message = fmt.Sprintf("Failed to %s", action)
	} else {
		h.logger.Warn("Request rejected", "action", action, "path", r.URL.Path, "status", status, "error", err)
	}
	http.Error(w, message, status)
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Error encoding response", "error", err)
	}
}

// decodeJSON reads a JSON request body into dst.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("%w: request body is required", usecases.ErrInvalidInput)
	}
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed request body: %w", usecases.ErrInvalidInput, err)
	}
	return nil
}

type claimsKey struct{}

// ClaimsFromContext returns the claims of the authenticated caller.
func ClaimsFromContext(ctx context.Context) (*usecases.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*usecases.Claims)
	return claims, ok
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func (h *HTTPHandler) authenticate(r *http.Request, token string) (*http.Request, *usecases.Claims, error) {
	if token == "" {
		return nil, nil, fmt.Errorf("%w: missing bearer token", usecases.ErrUnauthorized)
	}
	claims, err := h.services.Auth.ParseToken(token)
	if err != nil {
		return nil, nil, err
	}
	return r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)), claims, nil
}

func (h *HTTPHandler) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authed, _, err := h.authenticate(r, bearerToken(r))
		if err != nil {
			h.writeError(w, r, "authenticate", err)
			return
		}
		next(w, authed)
	}
}

func (h *HTTPHandler) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authed, claims, err := h.authenticate(r, bearerToken(r))
		if err != nil {
			h.writeError(w, r, "authenticate", err)
			return
		}
		if claims.Role != entities.RoleAdmin {
			h.writeError(w, r, "authorize", fmt.Errorf("%w: admin role required", usecases.ErrForbidden))
			return
		}
		next(w, authed)
	}
}

// callerID returns the user id of an authenticated request.
func callerID(r *http.Request) string {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		return ""
	}
	return claims.Subject
}

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/sand/bot-marketplace/backend/internal/entities"
	"github.com/sand/bot-marketplace/backend/internal/metrics"
	"github.com/sand/bot-marketplace/backend/internal/usecases"
)

// LogStream is the source of live system log entries.
type LogStream interface {
	Subscribe() (<-chan entities.SystemLog, func())
}

type WebSocketHandler struct {
	logger           *slog.Logger
	auth             *usecases.AuthService
	logs             LogStream
	metrics          *metrics.Metrics
	websocketManager *Manager
}

func NewWebSocketHandler(
	logger *slog.Logger,
	auth *usecases.AuthService,
	logs LogStream,
	metrics *metrics.Metrics,
	websocketManager *Manager,
) *WebSocketHandler {
	return &WebSocketHandler{
		logger:           logger,
		auth:             auth,
		logs:             logs,
		metrics:          metrics,
		websocketManager: websocketManager,
	}
}

func (h *WebSocketHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/ws/logs", h.HandleLogStream)
}

// HandleLogStream streams new system log entries to an admin. Browsers cannot
// set headers on WebSocket requests, so the token comes from ?token=.
func (h *WebSocketHandler) HandleLogStream(w http.ResponseWriter, r *http.Request) {
	claims, err := h.auth.ParseToken(r.URL.Query().Get("token"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	if claims.Role != entities.RoleAdmin {
		http.Error(w, fmt.Sprintf("%v: admin role required", usecases.ErrForbidden), http.StatusForbidden)
		return
	}

	conn, err := h.websocketManager.Upgrade(w, r)
	if err != nil {
		h.logger.Error("Error upgrading connection", "error", err)
		return
	}
	defer conn.Close()

	entries, unsubscribe := h.logs.Subscribe()
	defer unsubscribe()

	h.metrics.LogStreamOpened()
	defer h.metrics.LogStreamClosed()
	h.logger.Info("New log stream connection", "user", claims.Subject)

	// The read loop only watches for the client going away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-closed:
			h.logger.Info("Log stream connection closed", "user", claims.Subject)
			return
		case <-r.Context().Done():
			return
		case entry, ok := <-entries:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err = conn.WriteJSON(entry); err != nil {
				h.logger.Error("Error writing log entry", "user", claims.Subject, "error", err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err = conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

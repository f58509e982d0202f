package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Manager upgrades HTTP connections to WebSocket.
type Manager struct {
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// NewWebSocketManager accepts any origin; CORS is enforced for the REST API only.
func NewWebSocketManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
	}
}

func (m *Manager) Upgrade(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return m.upgrader.Upgrade(w, r, nil)
}

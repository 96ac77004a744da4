package handlers

import (
	"net/http"
	"time"

	"careops/internal/auth"
	"careops/internal/repo"
	"careops/pkg/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the dashboard origin; access control is
	// enforced by the token, not the origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	alertPushInterval = 10 * time.Second
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = 45 * time.Second
)

// alertFrame is one websocket payload pushed to the dashboard
type alertFrame struct {
	Type   string         `json:"type"`
	Unread int            `json:"unread"`
	Alerts []models.Alert `json:"alerts,omitempty"`
}

// WebSocketHandler streams unread alerts to the dashboard
type WebSocketHandler struct {
	authService *auth.Service
	alertRepo   *repo.AlertRepository
}

// NewWebSocketHandler creates a new websocket handler
func NewWebSocketHandler(db *gorm.DB, authService *auth.Service) *WebSocketHandler {
	return &WebSocketHandler{
		authService: authService,
		alertRepo:   repo.NewAlertRepository(db),
	}
}

// Alerts upgrades the connection and pushes unread alerts until the client
// disconnects. Browsers cannot set headers on websocket upgrades, so the
// token travels as a query parameter.
func (h *WebSocketHandler) Alerts(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
	}
	claims, err := h.authService.ValidateToken(token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}
	if claims.WorkspaceID == nil {
		return echo.NewHTTPError(http.StatusForbidden, "No workspace assigned")
	}
	workspaceID := *claims.WorkspaceID

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Info().Str("workspace_id", workspaceID.String()).Msg("Alert stream connected")

	// Reader drains control frames and signals disconnect
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pushTicker := time.NewTicker(alertPushInterval)
	defer pushTicker.Stop()
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	if err := h.push(conn, workspaceID); err != nil {
		return nil
	}

	for {
		select {
		case <-done:
			return nil
		case <-c.Request().Context().Done():
			return nil
		case <-pingTicker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-pushTicker.C:
			if err := h.push(conn, workspaceID); err != nil {
				return nil
			}
		}
	}
}

func (h *WebSocketHandler) push(conn *websocket.Conn, workspaceID uuid.UUID) error {
	alerts, err := h.alertRepo.ListByWorkspace(workspaceID, true, defaultAlertLimit)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load alerts for stream")
		return nil
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(alertFrame{
		Type:   "alerts",
		Unread: len(alerts),
		Alerts: alerts,
	})
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	gws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/Khin-96/pochi-sub000/internal/server/middleware"
	"github.com/Khin-96/pochi-sub000/internal/server/websocket"
	"github.com/Khin-96/pochi-sub000/pkg/config"
)

// WebSocketHandler upgrades authenticated callers to a push channel for
// their own transfer notifications.
type WebSocketHandler struct {
	hub      *websocket.WsHub
	upgrader gws.Upgrader
	config   config.WebSocketConfig
	logger   zerolog.Logger
}

func NewWebSocketHandler(hub *websocket.WsHub, cfg config.WebSocketConfig, logger zerolog.Logger) *WebSocketHandler {
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[o] = struct{}{}
	}

	return &WebSocketHandler{
		hub: hub,
		upgrader: gws.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			CheckOrigin: func(r *http.Request) bool {
				if !cfg.CheckOrigin {
					return true
				}
				_, ok := allowed[r.Header.Get("Origin")]
				return ok
			},
		},
		config: cfg,
		logger: logger,
	}
}

func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	accountID := middleware.AccountID(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written the error response.
		h.logger.Warn().Err(err).Str("account_id", accountID).Msg("Failed to upgrade WebSocket connection")
		return
	}

	client := websocket.NewClient(h.hub, conn, accountID, h.config.PingPeriod)
	h.logger.Info().Str("client_id", client.ID).Str("account_id", accountID).Msg("WebSocket client connected")

	client.Serve()

	h.logger.Info().Str("client_id", client.ID).Str("account_id", accountID).Msg("WebSocket client disconnected")
}

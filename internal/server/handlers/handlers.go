package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Khin-96/pochi-sub000/internal/application/transfer"
	"github.com/Khin-96/pochi-sub000/internal/server/middleware"
	"github.com/Khin-96/pochi-sub000/internal/server/websocket"
	"github.com/Khin-96/pochi-sub000/pkg/config"
)

type Handlers struct {
	TransferSvc transfer.ITransferService
	Middleware  *middleware.Middleware
	DB          Pinger
	WsHub       *websocket.WsHub
	Logger      zerolog.Logger
	Config      *config.Config
}

func New(transferSvc transfer.ITransferService, mw *middleware.Middleware, db Pinger, wsHub *websocket.WsHub, logger zerolog.Logger, config *config.Config) *Handlers {
	return &Handlers{
		TransferSvc: transferSvc,
		Middleware:  mw,
		DB:          db,
		WsHub:       wsHub,
		Logger:      logger,
		Config:      config,
	}
}

func (h *Handlers) SetupHandlers(router *gin.Engine) {
	paymentsHandler := NewPaymentsHandler(h.TransferSvc, h.Logger)
	wsHandler := NewWebSocketHandler(h.WsHub, h.Config.WebSocket, h.Logger)
	healthHandler := NewHealthHandler(h.DB, h.Logger)

	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	payments := router.Group("/payments", h.Middleware.AuthMiddleware())
	{
		payments.POST("/verify-recipient", paymentsHandler.VerifyRecipient)
		payments.POST("/send", h.Middleware.Idempotency(), paymentsHandler.Send)
		payments.GET("/frequent-recipients", paymentsHandler.FrequentRecipients)
		payments.GET("/transactions", paymentsHandler.Transactions)
		payments.GET("/balance", paymentsHandler.Balance)

		// WebSocket endpoint
		payments.GET("/ws", wsHandler.HandleConnection)
	}
}

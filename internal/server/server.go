package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Khin-96/pochi-sub000/internal/application/transfer"
	"github.com/Khin-96/pochi-sub000/internal/server/handlers"
	"github.com/Khin-96/pochi-sub000/internal/server/middleware"
	"github.com/Khin-96/pochi-sub000/internal/server/websocket"
	"github.com/Khin-96/pochi-sub000/pkg/config"
)

type Server struct {
	TransferSvc transfer.ITransferService
	Middleware  *middleware.Middleware
	DB          handlers.Pinger
	Cfg         *config.Config
	Logger      zerolog.Logger
	Router      *gin.Engine
	httpServer  *http.Server
	WsHub       *websocket.WsHub
}

func New(cfg *config.Config, transferSvc transfer.ITransferService, mw *middleware.Middleware, db handlers.Pinger, WsHub *websocket.WsHub, logger zerolog.Logger) *Server {
	if cfg.Server.Environment == "development" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	return &Server{
		Cfg:         cfg,
		TransferSvc: transferSvc,
		Middleware:  mw,
		DB:          db,
		Logger:      logger,
		Router:      router,
		WsHub:       WsHub,
	}
}

func (s *Server) SetupRouter() {
	s.Middleware.SetupMiddleware(s.Router)
	handler := handlers.New(
		s.TransferSvc,
		s.Middleware,
		s.DB,
		s.WsHub,
		s.Logger,
		s.Cfg,
	)
	handler.SetupHandlers(s.Router)
}

// Start serves until SIGINT/SIGTERM, then drains in-flight requests.
func (s *Server) Start() error {
	s.SetupRouter()

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(s.Cfg.Server.Host, s.Cfg.Server.Port),
		Handler:      s.Router,
		ReadTimeout:  s.Cfg.Server.ReadTimeout,
		WriteTimeout: s.Cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go s.WsHub.Run(ctx)

	errCh := make(chan error, 1)
	s.Logger.Info().Msgf("Starting server on %s", s.httpServer.Addr)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	s.Logger.Info().Msg("Shutdown signal received, shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.Cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.Logger.Error().Err(err).Msg("Server forced to shutdown")
		return err
	}

	s.Logger.Info().Msg("Server exited gracefully")
	return nil
}

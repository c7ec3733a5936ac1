package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	authservice "github.com/Khin-96/pochi-sub000/internal/application/auth"
	"github.com/Khin-96/pochi-sub000/internal/domain"
	"github.com/Khin-96/pochi-sub000/internal/repositories/idempotencyrepo"
	"github.com/Khin-96/pochi-sub000/pkg/config"
)

type Middleware struct {
	AuthSvc         authservice.IAuthService
	IdempotencyKeys idempotencyrepo.IIdempotencyRepository
	idempotency     config.IdempotencyConfig
	logger          zerolog.Logger
}

func NewMiddleware(AuthSvc authservice.IAuthService, keys idempotencyrepo.IIdempotencyRepository, cfg config.IdempotencyConfig, logger zerolog.Logger) *Middleware {
	return &Middleware{
		logger:          logger,
		AuthSvc:         AuthSvc,
		IdempotencyKeys: keys,
		idempotency:     cfg,
	}
}

func (m *Middleware) SetupMiddleware(router *gin.Engine) {
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, Idempotency-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	})

	router.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		m.logger.Info().
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status", param.StatusCode).
			Dur("latency", param.Latency).
			Str("client_ip", param.ClientIP).
			Str("user_agent", param.Request.UserAgent()).
			Msg("HTTP Request")
		return ""
	}))

	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		c.Next()
	})
}

func abortWithError(c *gin.Context, status int, err *domain.Error) {
	c.AbortWithStatusJSON(status, domain.ErrorResponse{
		Message: err.Message,
		Code:    err.Code,
	})
}

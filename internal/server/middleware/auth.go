package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Khin-96/pochi-sub000/internal/domain"
)

const (
	SessionCookie = "session_token"

	accountIDKey = "account_id"
	accountKey   = "account"
)

// AuthMiddleware resolves the caller from a bearer token, the session
// cookie, or a token query parameter (browsers cannot set headers on
// WebSocket upgrades), in that order.
func (m *Middleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := tokenFromRequest(c)
		if !ok {
			m.logger.Debug().Str("path", c.Request.URL.Path).Msg("Malformed Authorization header")
			abortWithError(c, http.StatusUnauthorized, domain.ErrUnauthenticated)
			return
		}

		account, err := m.AuthSvc.VerifyToken(c.Request.Context(), tokenString)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				abortWithError(c, http.StatusUnauthorized, domain.ErrUnauthenticated)
				return
			}
			m.logger.Error().Err(err).Msg("Failed to verify session token")
			abortWithError(c, http.StatusInternalServerError, domain.NewPersistenceError(err))
			return
		}

		c.Set(accountIDKey, account.ID)
		c.Set(accountKey, account)

		c.Next()
	}
}

func tokenFromRequest(c *gin.Context) (string, bool) {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return "", false
		}
		return parts[1], true
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie, true
	}
	return c.Query("token"), true
}

// AccountID returns the authenticated caller's account id, or "".
func AccountID(c *gin.Context) string {
	return c.GetString(accountIDKey)
}

// Account returns the caller's account as loaded during authentication.
func Account(c *gin.Context) *domain.Account {
	if v, ok := c.Get(accountKey); ok {
		if a, ok := v.(*domain.Account); ok {
			return a
		}
	}
	return nil
}

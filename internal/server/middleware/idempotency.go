package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Khin-96/pochi-sub000/internal/domain"
)

const (
	IdempotencyHeader    = "Idempotency-Key"
	IdempotencyHitHeader = "X-Idempotency-Hit"
	maxIdempotencyKeyLen = 255
)

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyRecorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response when a request repeats an
// Idempotency-Key the caller already used. Keys are scoped per account, so
// it must run after AuthMiddleware. A key reused with a different body is
// rejected. Server errors and panics release the key, letting the client
// retry them.
func (m *Middleware) Idempotency() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyHeader))
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLen {
			c.AbortWithStatusJSON(http.StatusBadRequest, domain.ErrorResponse{
				Message: "invalid request",
				Code:    domain.CodeValidation,
				Errors:  map[string]string{IdempotencyHeader: "is too long"},
			})
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, domain.NewValidationError(map[string]string{"body": "could not be read"}))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		hash := requestHash(c.Request.Method, c.FullPath(), body)

		var staleBefore time.Time
		if ttl := m.idempotency.ClaimTTL; ttl > 0 {
			staleBefore = time.Now().Add(-ttl)
		}

		ctx := c.Request.Context()
		accountID := AccountID(c)

		entry, claimed, err := m.IdempotencyKeys.Claim(ctx, accountID, key, hash, staleBefore)
		if err != nil {
			m.logger.Error().Err(err).Str("key", key).Msg("Failed to claim idempotency key")
			abortWithError(c, http.StatusInternalServerError, domain.NewPersistenceError(err))
			return
		}
		if !claimed {
			if !entry.Matches(hash) {
				m.logger.Info().Str("account_id", accountID).Str("key", key).Msg("Idempotency key reused with a different request")
				abortWithError(c, http.StatusUnprocessableEntity, domain.ErrIdempotencyReused)
				return
			}
			if !entry.Completed() {
				abortWithError(c, http.StatusConflict, domain.ErrIdempotencyConflict)
				return
			}
			m.logger.Info().Str("account_id", accountID).Str("key", key).Msg("Idempotency hit, replaying stored response")
			c.Header(IdempotencyHitHeader, "true")
			c.Data(entry.ResponseStatus, "application/json; charset=utf-8", entry.ResponseBody)
			c.Abort()
			return
		}

		// The outcome is stored even if the client has gone away.
		ctx = context.WithoutCancel(ctx)
		kept := false
		defer func() {
			if kept {
				return
			}
			// Also runs while a handler panic unwinds towards Recovery.
			if err := m.IdempotencyKeys.Release(ctx, accountID, key); err != nil {
				m.logger.Error().Err(err).Str("key", key).Msg("Failed to release idempotency key")
			}
		}()

		rec := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		status := rec.Status()
		if status >= http.StatusInternalServerError {
			return
		}
		// A failed save leaves the claim in flight until ClaimTTL passes
		// rather than inviting a second transfer.
		kept = true
		if err := m.IdempotencyKeys.Complete(ctx, accountID, key, status, rec.body.Bytes()); err != nil {
			m.logger.Error().Err(err).Str("key", key).Msg("Failed to save idempotency key")
		}
	}
}

func requestHash(method, route string, body []byte) string {
	h := sha256.New()
	h.Write([]byte(method))
	h.Write([]byte{'\n'})
	h.Write([]byte(route))
	h.Write([]byte{'\n'})
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

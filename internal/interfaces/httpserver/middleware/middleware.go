// Package middleware carries the cross-cutting HTTP concerns: request IDs,
// user scoping, metrics, and rate limiting.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vcalderon2009/note-taker/internal/infrastructure/metrics"
	"github.com/vcalderon2009/note-taker/internal/utils/platformerrors"
)

const (
	// HeaderRequestID is echoed back on every response.
	HeaderRequestID = "X-Request-Id"
	// HeaderUserID selects the acting user. Single-user deployments omit it
	// and fall back to the configured default.
	HeaderUserID = "X-User-Id"

	userIDKey = "note-taker/user-id"
)

// RequestID assigns each request a request ID, honoring one supplied by the
// client, and threads it through the context for error reporting.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(HeaderRequestID, requestID)

		ctx := platformerrors.ContextWithRequestID(c.Request.Context(), requestID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// UserScope resolves the acting user from the X-User-Id header, defaulting
// for single-user deployments.
func UserScope(defaultUserID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(HeaderUserID)
		if userID == "" {
			userID = defaultUserID
		}
		c.Set(userIDKey, userID)
		c.Next()
	}
}

// UserID returns the acting user resolved by UserScope.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

// Metrics records request counts and latencies per route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.RecordRequest(
			c.Request.Method,
			endpoint,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start).Seconds(),
		)
	}
}

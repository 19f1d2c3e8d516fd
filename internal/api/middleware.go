package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/romangod6/niente/internal/auth"
	"github.com/romangod6/niente/internal/service"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "requestID"
	principalKey    = "principal"
)

// RequestID echoes the caller's X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Header(requestIDHeader, requestID)
		c.Set(requestIDKey, requestID)
		c.Next()
	}
}

func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.InfoContext(c.Request.Context(), "request completed",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", time.Since(start)),
			slog.String("remote_addr", c.ClientIP()),
			slog.String("request_id", c.GetString(requestIDKey)),
		)
	}
}

// RequireAuth rejects requests without a valid bearer token before the
// handler runs. The token subject becomes the request principal.
func RequireAuth(verifier *auth.Verifier, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := verifier.Verify(bearerToken(c.GetHeader("Authorization")))
		if err != nil {
			message := "invalid bearer token"
			switch {
			case errors.Is(err, auth.ErrMissingToken):
				message = "missing bearer token"
			case errors.Is(err, auth.ErrInvalidIssuer), errors.Is(err, auth.ErrInvalidAudience):
				message = "invalid token issuer or audience"
			case errors.Is(err, auth.ErrNotConfigured):
				logger.Error("token secret not configured, denying request")
				message = "authentication failed"
			}

			logger.WarnContext(c.Request.Context(), "unauthenticated request",
				slog.String("path", c.Request.URL.Path),
				slog.String("remote_addr", c.ClientIP()),
				slog.String("request_id", c.GetString(requestIDKey)),
				slog.String("error", err.Error()),
			)
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: message})
			return
		}

		c.Set(principalKey, principal.Subject)
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// callerFrom builds the explicit caller value handed to the service.
func callerFrom(c *gin.Context) service.Caller {
	return service.Caller{
		Address:   c.ClientIP(),
		Principal: c.GetString(principalKey),
		RequestID: c.GetString(requestIDKey),
	}
}

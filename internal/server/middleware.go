package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/folio-dev/folio/internal/auth"
	"github.com/folio-dev/folio/internal/metrics"
)

const (
	bearerPrefix = "Bearer "
	sessionKey   = "session"
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
)

func setSession(c *gin.Context, sessionData *auth.SessionData) {
	c.Set(sessionKey, sessionData)
}

// GetSessionData returns the session attached by JWTAuthMiddleware
func GetSessionData(c *gin.Context) (*auth.SessionData, bool) {
	session, exists := c.Get(sessionKey)
	if !exists {
		return nil, false
	}

	sessionData, ok := session.(*auth.SessionData)
	return sessionData, ok
}

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthFormat
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

func respondWithError(c *gin.Context, log zerolog.Logger, statusCode int, err error, message string) {
	log.Warn().Err(err).Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
	c.Abort()
}

// JWTAuthMiddleware validates bearer tokens and attaches the session
func JWTAuthMiddleware(authService *auth.Service, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := extractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			var message, reason string
			switch err {
			case ErrMissingAuthHeader:
				message, reason = "Missing authorization header", "missing_header"
			case ErrInvalidAuthFormat:
				message, reason = "Invalid authorization header format", "bad_format"
			default:
				message, reason = "Empty token", "empty_token"
			}
			metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
			respondWithError(c, log, http.StatusUnauthorized, err, message)
			return
		}

		sessionData, err := authService.Authenticate(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInvalidToken):
				metrics.TokenRejectionsTotal.WithLabelValues("invalid_token").Inc()
				respondWithError(c, log, http.StatusUnauthorized, err, "Invalid or expired token")
			case errors.Is(err, auth.ErrNotFound):
				metrics.TokenRejectionsTotal.WithLabelValues("unknown_user").Inc()
				respondWithError(c, log, http.StatusUnauthorized, err, "User not found")
			default:
				log.Error().Err(err).Msg("Failed to authenticate token")
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				c.Abort()
			}
			return
		}

		setSession(c, sessionData)

		c.Next()
	}
}

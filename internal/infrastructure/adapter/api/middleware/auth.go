package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	errs "github.com/amirhossein-jamali/topup-ledger/internal/domain/error"
	"github.com/amirhossein-jamali/topup-ledger/internal/domain/port/core"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	userIDKey = "userID"

	// AdminKeyHeader carries the administrative API key
	AdminKeyHeader = "X-Admin-Key"
)

// JWTAuth validates HS256 bearer tokens and stores the subject claim as the caller's user id
func JWTAuth(secret []byte, logger core.Logger) gin.HandlerFunc {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	)
	keyFunc := func(*jwt.Token) (any, error) {
		return secret, nil
	}

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, errs.ErrUnauthorized, "missing authorization header")
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(tokenString) == "" {
			abortWithError(c, http.StatusUnauthorized, errs.ErrUnauthorized, "invalid authorization format")
			return
		}

		claims := &jwt.RegisteredClaims{}
		if _, err := parser.ParseWithClaims(tokenString, claims, keyFunc); err != nil {
			message := "invalid token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				message = "token expired"
			}
			logger.Debug("Token validation failed", map[string]any{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			abortWithError(c, http.StatusUnauthorized, errs.ErrUnauthorized, message)
			return
		}

		if strings.TrimSpace(claims.Subject) == "" {
			abortWithError(c, http.StatusUnauthorized, errs.ErrUnauthorized, "token has no subject")
			return
		}

		SetUserID(c, claims.Subject)
		c.Next()
	}
}

// SetUserID records the authenticated user id on the request context
func SetUserID(c *gin.Context, userID string) {
	c.Set(userIDKey, userID)
}

// UserIDFromContext returns the authenticated user id set by JWTAuth
func UserIDFromContext(c *gin.Context) (string, bool) {
	userID := c.GetString(userIDKey)
	return userID, userID != ""
}

// AdminAPIKey only lets requests through that carry the configured admin key.
// An empty key disables the guarded routes.
func AdminAPIKey(apiKey string, logger core.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			abortWithError(c, http.StatusForbidden, errs.ErrUnauthorized, "admin API is disabled")
			return
		}

		provided := c.GetHeader(AdminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) != 1 {
			logger.Warn("Rejected admin request", map[string]any{
				"path":      c.Request.URL.Path,
				"client_ip": c.ClientIP(),
			})
			abortWithError(c, http.StatusUnauthorized, errs.ErrUnauthorized, "invalid admin key")
			return
		}
		c.Next()
	}
}

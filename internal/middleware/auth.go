package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"upcheck/internal/model"
)

const (
	phoneContextKey = "ownerPhone"
	tokenContextKey = "tokenID"
)

// Authenticator resolves a bearer token id to its live token record,
// rejecting absent or expired tokens. Satisfied by *token.Service.
type Authenticator interface {
	Resolve(ctx context.Context, id string) (model.Token, bool)
}

// PhoneFromContext returns the authenticated owner's phone.
func PhoneFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(phoneContextKey)
	if !ok {
		return "", false
	}
	phone, ok := v.(string)
	return phone, ok && phone != ""
}

// TokenIDFromContext returns the bearer token id the request authenticated with.
func TokenIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(tokenContextKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// RequireAuth validates the bearer token in the Authorization header and
// stores the token id and its owner's phone on the request context.
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.JSON(http.StatusForbidden, gin.H{"error": "Missing required token in header or token invalid"})
			c.Abort()
			return
		}

		tok, ok := auth.Resolve(c.Request.Context(), parts[1])
		if !ok {
			c.JSON(http.StatusForbidden, gin.H{"error": "Missing required token in header or token invalid"})
			c.Abort()
			return
		}

		c.Set(tokenContextKey, tok.ID)
		c.Set(phoneContextKey, tok.Phone)
		c.Next()
	}
}

package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/knowledgecopilot/backend/internal/authz"
	"github.com/knowledgecopilot/backend/internal/tokens"
	"github.com/knowledgecopilot/backend/pkg/metrics"
)

// Verifier is the minimal interface the middleware depends on.
type Verifier interface {
	Verify(ctx context.Context, raw string) (*tokens.Claims, error)
}

// VerifierFunc adapts a plain function to Verifier.
type VerifierFunc func(ctx context.Context, raw string) (*tokens.Claims, error)

func (f VerifierFunc) Verify(ctx context.Context, raw string) (*tokens.Claims, error) {
	return f(ctx, raw)
}

const claimsKey = "claims"

// AuthMiddleware returns a Gin middleware that verifies Bearer tokens
// using the provided verifier and stores the claims on the context.
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			metrics.AuthFailures.WithLabelValues("missing").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "missing Authorization header"})
			return
		}
		// Expect 'Bearer <token>'
		var token string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n != 1 {
			metrics.AuthFailures.WithLabelValues("malformed_header").Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "invalid Authorization header"})
			return
		}

		claims, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			reason := "malformed"
			msg := "invalid token"
			if err == tokens.ErrTokenExpired {
				reason = "expired"
				msg = "token expired"
			}
			metrics.AuthFailures.WithLabelValues(reason).Inc()
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": msg})
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// ClaimsFrom returns the verified claims set by AuthMiddleware.
func ClaimsFrom(c *gin.Context) (*tokens.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*tokens.Claims)
	return claims, ok
}

// CallerFrom builds the authorization caller identity from the verified
// claims.
func CallerFrom(c *gin.Context) (authz.Caller, bool) {
	claims, ok := ClaimsFrom(c)
	if !ok {
		return authz.Caller{}, false
	}
	return authz.Caller{UserID: claims.UserID, GlobalRole: claims.Role}, true
}

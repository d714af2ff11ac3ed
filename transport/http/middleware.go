package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/layer-3/addrauth"
	"github.com/layer-3/addrauth/core"
)

const (
	userAddressKey = "userAddress"
	claimsKey      = "claims"
)

// AuthMiddleware creates middleware that validates session tokens
func AuthMiddleware(auth addrauth.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")

		// Check if the Authorization header is present and in correct format
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header"})
			return
		}

		claims, err := auth.VerifyJWT(token)
		if err != nil {
			status, msg := errorStatus(err)
			c.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}

		address, ok := sessionAddress(claims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(userAddressKey, address)
		c.Set(claimsKey, claims)

		c.Next()
	}
}

// sessionAddress returns the address of a session token. Challenge tokens are
// signed with the same secret but lack the signed challenge claims, so they are refused.
func sessionAddress(claims core.Claims) (string, bool) {
	if _, ok := claims.String(core.ClaimSignedChallenge); !ok {
		return "", false
	}
	if _, ok := claims.String(core.ClaimChallengeThatWasPresented); !ok {
		return "", false
	}
	return claims.String(core.ClaimAddress)
}

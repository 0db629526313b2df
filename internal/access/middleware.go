package access

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// Context keys set by the auth middlewares.
const (
	ctxUserID = "user_id"
	ctxEmail  = "email"
	ctxRole   = "role"
)

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setClaims(c *gin.Context, claims Claims) {
	c.Set(ctxUserID, claims.UserID)
	c.Set(ctxEmail, claims.Email)
	c.Set(ctxRole, claims.Role)
}

// OptionalAuthMiddleware sets the claims of a valid token and never rejects.
func OptionalAuthMiddleware(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw, ok := bearerToken(c); ok {
			if claims, err := tokens.Parse(raw); err == nil {
				setClaims(c, claims)
			}
		}
		c.Next()
	}
}

// AuthMiddleware enforces a valid token.
func AuthMiddleware(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}
		raw, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization format"})
			return
		}
		if !tokens.Configured() {
			log.Error().Msg("JWT secret not set")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Server not configured"})
			return
		}
		claims, err := tokens.Parse(raw)
		if err != nil {
			log.Debug().Err(err).Msg("Rejected token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// RequirePermission rejects requests whose role lacks perm. It must run
// after AuthMiddleware.
func RequirePermission(perm Permission) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Can(Role(c), perm) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Missing permission " + string(perm)})
			return
		}
		c.Next()
	}
}

// Role returns the role of the signed-in user, or "".
func Role(c *gin.Context) string { return c.GetString(ctxRole) }

// UserID returns the id of the signed-in user, or "".
func UserID(c *gin.Context) string { return c.GetString(ctxUserID) }

// Email returns the email of the signed-in user, or "".
func Email(c *gin.Context) string { return c.GetString(ctxEmail) }

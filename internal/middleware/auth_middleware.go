package middleware

import (
	"net/http"
	"strings"

	"referralhub/internal/utils"
	"referralhub/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Context keys set by AuthRequired.
const (
	ContextUserID = "user_id"
	ContextOrgID  = "org_id"
	ContextRole   = "role"
)

// AuthRequired validates the bearer token issued by the identity provider and
// sets user_id, org_id and role on the gin context. Every authenticated
// handler scopes its reads and writes by org_id.
func AuthRequired(secret, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.ErrorResponse(c, http.StatusUnauthorized, string(utils.KindUnauthorized), "Authorization header required")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.ErrorResponse(c, http.StatusUnauthorized, string(utils.KindUnauthorized), "Bearer token required")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, secret, issuer)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, string(utils.KindUnauthorized), "Invalid token")
			c.Abort()
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, string(utils.KindUnauthorized), "Invalid user ID in token")
			c.Abort()
			return
		}

		orgID, err := primitive.ObjectIDFromHex(claims.OrgID)
		if err != nil {
			utils.ErrorResponse(c, http.StatusUnauthorized, string(utils.KindUnauthorized), "No organization found")
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextOrgID, orgID)
		c.Set(ContextRole, claims.Role)
		c.Request = c.Request.WithContext(logger.ContextWithOrgID(c.Request.Context(), orgID))

		c.Next()
	}
}

// RoleRequired ensures the caller's token carries one of roles.
func RoleRequired(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(c *gin.Context) {
		role, exists := c.Get(ContextRole)
		if !exists {
			utils.UnauthorizedResponse(c)
			c.Abort()
			return
		}

		roleStr, ok := role.(string)
		if !ok || !allowed[roleStr] {
			utils.ForbiddenResponse(c)
			c.Abort()
			return
		}

		c.Next()
	}
}

// TokenFromQuery copies a ?token= parameter into the Authorization header.
// Browsers cannot set headers on WebSocket handshakes.
func TokenFromQuery() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			if token := c.Query("token"); token != "" {
				c.Request.Header.Set("Authorization", "Bearer "+token)
			}
		}
		c.Next()
	}
}

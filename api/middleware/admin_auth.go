package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/anoixa/gphotos-grid/api/common"
	"github.com/anoixa/gphotos-grid/internal/auth"
	"github.com/gin-gonic/gin"
)

const (
	ContextSubjectKey = "subject"
	ContextRoleKey    = "role"
)

// AdminAuth 校验 Bearer 管理令牌，要求 role=admin
func AdminAuth(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "No Authorization request header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			common.RespondErrorAbort(c, http.StatusUnauthorized, "Unsupported authentication scheme")
			return
		}

		claims, err := jwtService.ExtractClaims(strings.TrimSpace(parts[1]))
		if err != nil {
			log.Printf("[AdminAuth] Rejected token from %s: %v", c.ClientIP(), err)
			common.RespondErrorAbort(c, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		if claims.Role != auth.RoleAdmin {
			common.RespondErrorAbort(c, http.StatusForbidden, "Access denied. Admin role required.")
			return
		}

		c.Set(ContextSubjectKey, claims.Subject)
		c.Set(ContextRoleKey, claims.Role)
		c.Next()
	}
}

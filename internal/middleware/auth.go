package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"notes-api/internal/auth"
	"notes-api/internal/cache"
	"notes-api/internal/database"
	"notes-api/internal/models"
)

// Context keys set by JWTAuthMiddleware
const (
	KeyAdminID  = "admin_id"
	KeyUsername = "username"
	KeyRole     = "role"
)

// JWTAuthMiddleware validates JWT token in Authorization header
func JWTAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if authHeader := c.GetHeader("Authorization"); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		// Browsers cannot set headers on WebSocket upgrades
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization token is required",
			})
			return
		}

		claims, err := auth.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		c.Set(KeyAdminID, claims.AdminID)
		c.Set(KeyUsername, claims.Username)
		c.Set(KeyRole, auth.NormalizeRoleName(claims.Role))

		c.Next()
	}
}

var rolePermissions = cache.NewSimpleCache[string, []string](cache.Options{DefaultTTL: 5 * time.Minute})

var errUnknownRole = errors.New("unknown role")

func loadRolePermissions(name string) ([]string, error) {
	var role models.Role
	if err := database.GetDB().Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errUnknownRole
		}
		return nil, err
	}
	return role.Permissions, nil
}

// PermissionsFor returns the grants of a role, cached for a few minutes.
func PermissionsFor(role string) ([]string, error) {
	return rolePermissions.GetOrLoad(auth.NormalizeRoleName(role), loadRolePermissions)
}

// InvalidateRole drops cached grants after a role is changed or removed.
func InvalidateRole(name string) {
	rolePermissions.Delete(auth.NormalizeRoleName(name))
}

// InvalidateAllRoles drops every cached grant.
func InvalidateAllRoles() {
	rolePermissions.Clear()
}

// RequirePermission aborts with 403 unless the caller's role grants perm.
// It must run after JWTAuthMiddleware.
func RequirePermission(perm string) gin.HandlerFunc {
	return func(c *gin.Context) {
		perms, err := PermissionsFor(c.GetString(KeyRole))
		if err != nil {
			if errors.Is(err, errUnknownRole) {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Role not recognized"})
			} else {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load permissions"})
			}
			return
		}
		if !auth.HasPermission(perms, perm) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":      "Insufficient permissions",
				"permission": perm,
			})
			return
		}
		c.Next()
	}
}

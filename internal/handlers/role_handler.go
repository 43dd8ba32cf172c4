package handlers

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"notes-api/internal/auth"
	"notes-api/internal/database"
	"notes-api/internal/middleware"
	"notes-api/internal/models"
)

// RoleRequest is used for both create and update
type RoleRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Permissions []string `json:"permissions"`
}

func cleanPermissions(perms []string) []string {
	out := make([]string, 0, len(perms))
	seen := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// ListRoles handles GET /api/admin/roles
func ListRoles(c *gin.Context) {
	var roles []models.Role
	if err := database.GetDB().Order("name asc").Find(&roles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch roles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"roles": roles, "count": len(roles)})
}

// CreateRole handles POST /api/admin/roles
func CreateRole(c *gin.Context) {
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name := auth.NormalizeRoleName(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role name must not be empty"})
		return
	}
	role := models.Role{
		ID:          uuid.NewString(),
		Name:        name,
		Description: req.Description,
		Permissions: cleanPermissions(req.Permissions),
	}
	if err := database.GetDB().Create(&role).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Role already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create role"})
		return
	}
	middleware.InvalidateRole(name)
	c.JSON(http.StatusCreated, role)
}

// UpdateRole handles PUT /api/admin/roles/:id. Renaming a role carries its admins along.
func UpdateRole(c *gin.Context) {
	db := database.GetDB()
	var role models.Role
	if !fetchByID(c, db, &role, c.Param("id"), "Role") {
		return
	}
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	name := auth.NormalizeRoleName(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Role name must not be empty"})
		return
	}
	perms := cleanPermissions(req.Permissions)
	if role.Name == auth.RoleSuperAdmin {
		if name != auth.RoleSuperAdmin {
			c.JSON(http.StatusBadRequest, gin.H{"error": "The super_admin role cannot be renamed"})
			return
		}
		if !slices.Equal(perms, cleanPermissions(role.Permissions)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "The super_admin permissions cannot be changed"})
			return
		}
	}

	oldName := role.Name
	role.Name = name
	role.Description = req.Description
	role.Permissions = perms

	tx := db.Begin()
	if err := tx.Save(&role).Error; err != nil {
		tx.Rollback()
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Role already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}
	if oldName != name {
		if err := tx.Model(&models.Admin{}).Where("role = ?", oldName).Update("role", name).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update admins for role"})
			return
		}
	}
	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update role"})
		return
	}

	middleware.InvalidateRole(oldName)
	middleware.InvalidateRole(name)
	c.JSON(http.StatusOK, role)
}

// DeleteRole handles DELETE /api/admin/roles/:id. Roles still assigned to admins are kept.
func DeleteRole(c *gin.Context) {
	db := database.GetDB()
	var role models.Role
	if !fetchByID(c, db, &role, c.Param("id"), "Role") {
		return
	}
	if role.Name == auth.RoleSuperAdmin {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The super_admin role cannot be deleted"})
		return
	}
	var inUse int64
	if err := db.Model(&models.Admin{}).Where("role = ?", role.Name).Count(&inUse).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check role usage"})
		return
	}
	if inUse > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Role is assigned to admins", "admins": inUse})
		return
	}
	if err := db.Unscoped().Delete(&role).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete role"})
		return
	}
	middleware.InvalidateRole(role.Name)
	c.JSON(http.StatusOK, gin.H{"message": "Role deleted successfully", "id": role.ID})
}

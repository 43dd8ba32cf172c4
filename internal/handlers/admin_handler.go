package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"notes-api/internal/auth"
	"notes-api/internal/database"
	"notes-api/internal/middleware"
	"notes-api/internal/models"
)

// CreateAdminRequest represents the request payload for creating an admin
type CreateAdminRequest struct {
	Username    string `json:"username" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role" binding:"required"`
}

// UpdateAdminRequest represents the request payload for updating an admin
type UpdateAdminRequest struct {
	Password    *string `json:"password"`
	DisplayName *string `json:"displayName"`
	Role        *string `json:"role"`
}

// roleExists writes 400/500 and returns false unless the normalized role is defined.
func roleExists(c *gin.Context, db *gorm.DB, name string) bool {
	var role models.Role
	if err := db.Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown role: " + name})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate role"})
		}
		return false
	}
	return true
}

// ListAdmins handles GET /api/admin/admins
func ListAdmins(c *gin.Context) {
	var admins []models.Admin
	if err := database.GetDB().Order("username asc").Find(&admins).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch admins"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"admins": admins,
		"count":  len(admins),
	})
}

// CreateAdmin handles POST /api/admin/admins
func CreateAdmin(c *gin.Context) {
	var req CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	db := database.GetDB()
	role := auth.NormalizeRoleName(req.Role)
	if !roleExists(c, db, role) {
		return
	}

	admin, err := database.CreateAdmin(db, req.Username, req.Password, role)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrPasswordTooShort):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case isUniqueViolation(err):
			c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create admin"})
		}
		return
	}
	if name := strings.TrimSpace(req.DisplayName); name != "" {
		admin.DisplayName = name
		if err := db.Model(admin).Update("display_name", name).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create admin"})
			return
		}
	}
	c.JSON(http.StatusCreated, admin)
}

// UpdateAdmin handles PUT /api/admin/admins/:id
func UpdateAdmin(c *gin.Context) {
	db := database.GetDB()
	var admin models.Admin
	if !fetchByID(c, db, &admin, c.Param("id"), "Admin") {
		return
	}
	var req UpdateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		admin.Password = hash
	}
	if req.DisplayName != nil {
		admin.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Role != nil {
		role := auth.NormalizeRoleName(*req.Role)
		if !roleExists(c, db, role) {
			return
		}
		// An admin cannot demote themselves out of admin management.
		if admin.ID == c.GetString(middleware.KeyAdminID) && role != admin.Role {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot change your own role"})
			return
		}
		admin.Role = role
	}

	if err := db.Save(&admin).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update admin"})
		return
	}
	c.JSON(http.StatusOK, admin)
}

// DeleteAdmin handles DELETE /api/admin/admins/:id
func DeleteAdmin(c *gin.Context) {
	db := database.GetDB()
	var admin models.Admin
	if !fetchByID(c, db, &admin, c.Param("id"), "Admin") {
		return
	}
	if admin.ID == c.GetString(middleware.KeyAdminID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot delete your own account"})
		return
	}
	// Hard delete so the username can be reused.
	if err := db.Unscoped().Delete(&admin).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete admin"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Admin deleted successfully", "id": admin.ID})
}

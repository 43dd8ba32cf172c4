package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"notes-api/internal/auth"
	"notes-api/internal/database"
	"notes-api/internal/middleware"
	"notes-api/internal/models"
)

// LoginRequest represents the login request payload
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the login response
type LoginResponse struct {
	Token    string `json:"token"`
	AdminID  string `json:"adminId"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Message  string `json:"message"`
}

// Login handles POST /api/login
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request. Username and password are required.",
		})
		return
	}

	var admin models.Admin
	err := database.GetDB().Where("username = ?", req.Username).First(&admin).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up admin"})
		return
	}
	// Same response for unknown user and wrong password
	if err != nil || !auth.CheckPassword(admin.Password, req.Password) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	role := auth.NormalizeRoleName(admin.Role)
	token, err := auth.GenerateToken(admin.ID, admin.Username, role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		Token:    token,
		AdminID:  admin.ID,
		Username: admin.Username,
		Role:     role,
		Message:  "Login successful",
	})
}

// Me handles GET /api/admin/me and returns the caller with their grants.
func Me(c *gin.Context) {
	var admin models.Admin
	if !fetchByID(c, database.GetDB(), &admin, c.GetString(middleware.KeyAdminID), "Admin") {
		return
	}
	perms, err := middleware.PermissionsFor(admin.Role)
	if err != nil {
		perms = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"admin":       admin,
		"permissions": perms,
	})
}

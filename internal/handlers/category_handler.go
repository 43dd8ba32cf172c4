package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"notes-api/internal/database"
	"notes-api/internal/models"
)

// CategoryRequest is used for both create and update
type CategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	SortOrder   int    `json:"sortOrder"`
}

// ListCategories handles GET /api/categories with per-category published note counts.
func ListCategories(c *gin.Context) {
	db := database.GetDB()
	var categories []models.Category
	if err := db.Order("sort_order asc, name asc").Find(&categories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}

	type row struct {
		CategoryID string
		Count      int64
	}
	var rows []row
	if err := db.Model(&models.Note{}).
		Select("category_id, COUNT(*) as count").
		Where("status = ?", models.NotePublished).
		Group("category_id").
		Scan(&rows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notes"})
		return
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.CategoryID] = r.Count
	}

	type categoryResponse struct {
		models.Category
		NoteCount int64 `json:"noteCount"`
	}
	resp := make([]categoryResponse, 0, len(categories))
	for _, cat := range categories {
		resp = append(resp, categoryResponse{Category: cat, NoteCount: counts[cat.ID]})
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": resp,
		"count":      len(resp),
	})
}

// CreateCategory handles POST /api/admin/categories
func CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cat := models.Category{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		SortOrder:   req.SortOrder,
	}
	if err := database.GetDB().Create(&cat).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Category name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}
	publish(c, "category_created", "category", cat.ID)
	c.JSON(http.StatusCreated, cat)
}

// UpdateCategory handles PUT /api/admin/categories/:id
func UpdateCategory(c *gin.Context) {
	db := database.GetDB()
	var cat models.Category
	if !fetchByID(c, db, &cat, c.Param("id"), "Category") {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cat.Name = strings.TrimSpace(req.Name)
	cat.Description = req.Description
	cat.SortOrder = req.SortOrder
	if err := db.Save(&cat).Error; err != nil {
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "Category name already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update category"})
		return
	}
	publish(c, "category_updated", "category", cat.ID)
	c.JSON(http.StatusOK, cat)
}

// DeleteCategory handles DELETE /api/admin/categories/:id.
// A category that still holds notes cannot be removed.
func DeleteCategory(c *gin.Context) {
	db := database.GetDB()
	var cat models.Category
	if !fetchByID(c, db, &cat, c.Param("id"), "Category") {
		return
	}
	var inUse int64
	if err := db.Model(&models.Note{}).Where("category_id = ?", cat.ID).Count(&inUse).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check category usage"})
		return
	}
	if inUse > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Category still has notes", "notes": inUse})
		return
	}
	// Hard delete so the unique name can be reused.
	if err := db.Unscoped().Delete(&cat).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}
	publish(c, "category_deleted", "category", cat.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully", "id": cat.ID})
}

package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"notes-api/internal/database"
	"notes-api/internal/models"
)

// CarouselRequest is used for both create and update
type CarouselRequest struct {
	Title     string `json:"title" binding:"required"`
	ImageURL  string `json:"imageUrl" binding:"required,url"`
	LinkURL   string `json:"linkUrl" binding:"omitempty,url"`
	SortOrder int    `json:"sortOrder"`
	Active    *bool  `json:"active"`
}

// ListActiveCarousels handles GET /api/carousels
func ListActiveCarousels(c *gin.Context) {
	var slides []models.Carousel
	if err := database.GetDB().Where("active = ?", true).Order("sort_order asc").Find(&slides).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch carousels"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"carousels": slides, "count": len(slides)})
}

// ListCarousels handles GET /api/admin/carousels, including inactive slides
func ListCarousels(c *gin.Context) {
	var slides []models.Carousel
	if err := database.GetDB().Order("sort_order asc").Find(&slides).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch carousels"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"carousels": slides, "count": len(slides)})
}

// CreateCarousel handles POST /api/admin/carousels
func CreateCarousel(c *gin.Context) {
	var req CarouselRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	slide := models.Carousel{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(req.Title),
		ImageURL:  req.ImageURL,
		LinkURL:   req.LinkURL,
		SortOrder: req.SortOrder,
		Active:    req.Active == nil || *req.Active,
	}
	if err := database.GetDB().Create(&slide).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create carousel"})
		return
	}
	publish(c, "carousel_created", "carousel", slide.ID)
	c.JSON(http.StatusCreated, slide)
}

// UpdateCarousel handles PUT /api/admin/carousels/:id
func UpdateCarousel(c *gin.Context) {
	db := database.GetDB()
	var slide models.Carousel
	if !fetchByID(c, db, &slide, c.Param("id"), "Carousel") {
		return
	}
	var req CarouselRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	slide.Title = strings.TrimSpace(req.Title)
	slide.ImageURL = req.ImageURL
	slide.LinkURL = req.LinkURL
	slide.SortOrder = req.SortOrder
	if req.Active != nil {
		slide.Active = *req.Active
	}
	if err := db.Save(&slide).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update carousel"})
		return
	}
	publish(c, "carousel_updated", "carousel", slide.ID)
	c.JSON(http.StatusOK, slide)
}

// DeleteCarousel handles DELETE /api/admin/carousels/:id
func DeleteCarousel(c *gin.Context) {
	db := database.GetDB()
	var slide models.Carousel
	if !fetchByID(c, db, &slide, c.Param("id"), "Carousel") {
		return
	}
	if err := db.Delete(&slide).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete carousel"})
		return
	}
	publish(c, "carousel_deleted", "carousel", slide.ID)
	c.JSON(http.StatusOK, gin.H{"message": "Carousel deleted successfully", "id": slide.ID})
}

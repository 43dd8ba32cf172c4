package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"notes-api/internal/database"
	"notes-api/internal/models"
)

// FeedbackRequest is submitted by site visitors
type FeedbackRequest struct {
	Name    string `json:"name" binding:"max=100"`
	Email   string `json:"email" binding:"omitempty,email"`
	Content string `json:"content" binding:"required,max=5000"`
}

// UpdateFeedbackStatusRequest marks feedback handled or reopens it
type UpdateFeedbackStatusRequest struct {
	Status models.FeedbackStatus `json:"status" binding:"required,oneof=pending resolved"`
}

// SubmitFeedback handles POST /api/feedback
func SubmitFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content must not be empty"})
		return
	}
	fb := models.Feedback{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Content: strings.TrimSpace(req.Content),
		Status:  models.FeedbackPending,
	}
	if err := database.GetDB().Create(&fb).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save feedback"})
		return
	}
	publish(c, "feedback_received", "feedback", fb.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "Thanks for your feedback", "id": fb.ID})
}

// ListFeedback handles GET /api/admin/feedback with optional ?status=
func ListFeedback(c *gin.Context) {
	p := parsePage(c)
	query := database.GetDB().Model(&models.Feedback{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count feedback"})
		return
	}
	var items []models.Feedback
	if err := query.Order(p.order("created_at")).Limit(p.Limit).Offset(p.Offset).Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feedback"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"feedback": items,
		"count":    len(items),
		"total":    total,
		"page":     p.Page,
		"limit":    p.Limit,
	})
}

// UpdateFeedbackStatus handles PATCH /api/admin/feedback/:id/status
func UpdateFeedbackStatus(c *gin.Context) {
	var req UpdateFeedbackStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	db := database.GetDB()
	var fb models.Feedback
	if !fetchByID(c, db, &fb, c.Param("id"), "Feedback") {
		return
	}
	if err := db.Model(&fb).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}
	fb.Status = req.Status
	c.JSON(http.StatusOK, fb)
}

// DeleteFeedback handles DELETE /api/admin/feedback/:id
func DeleteFeedback(c *gin.Context) {
	db := database.GetDB()
	var fb models.Feedback
	if !fetchByID(c, db, &fb, c.Param("id"), "Feedback") {
		return
	}
	if err := db.Delete(&fb).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete feedback"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Feedback deleted successfully", "id": fb.ID})
}

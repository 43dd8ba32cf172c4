package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"notes-api/internal/middleware"
	"notes-api/internal/realtime"
)

// page holds the pagination query parameters shared by list endpoints.
type page struct {
	Page   int
	Limit  int
	Sort   string
	Offset int
}

// parsePage reads page (default 1), limit (default 10, max 100) and sort (asc|desc).
func parsePage(c *gin.Context) page {
	p, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || p < 1 {
		p = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	sort := strings.ToLower(c.DefaultQuery("sort", "desc"))
	if sort != "asc" {
		sort = "desc"
	}
	return page{Page: p, Limit: limit, Sort: sort, Offset: (p - 1) * limit}
}

func (p page) order(column string) string {
	return column + " " + p.Sort
}

// fetchByID loads a record by primary key, writing 404/500 on failure.
func fetchByID(c *gin.Context, db *gorm.DB, dest any, id, what string) bool {
	if strings.TrimSpace(id) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": what + " ID is required"})
		return false
	}
	if err := db.Where("id = ?", id).First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": what + " not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch " + strings.ToLower(what)})
		}
		return false
	}
	return true
}

// isUniqueViolation matches SQLite's constraint error text.
func isUniqueViolation(err error) bool {
	return err != nil && (errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed"))
}

// publish notifies connected admins of a change made by the current caller.
func publish(c *gin.Context, eventType, resource, id string) {
	realtime.GetHub().Publish(realtime.Event{
		Type:     eventType,
		Resource: resource,
		ID:       id,
		Actor:    c.GetString(middleware.KeyAdminID),
	})
}

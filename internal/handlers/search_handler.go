package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"notes-api/internal/database"
	"notes-api/internal/models"
)

// escapeLike escapes LIKE wildcards in user input; queries use ESCAPE '\'.
func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// SearchNotes handles GET /api/search?q=. It matches published notes whose title,
// summary or content contains every whitespace-separated term.
func SearchNotes(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Query parameter q is required"})
		return
	}
	terms := strings.Fields(q)
	if len(terms) > 10 {
		terms = terms[:10]
	}

	p := parsePage(c)
	db := database.GetDB()
	query := db.Model(&models.Note{}).Where("status = ?", models.NotePublished)
	for _, term := range terms {
		pattern := "%" + escapeLike(term) + "%"
		query = query.Where(
			`(title LIKE ? ESCAPE '\' OR summary LIKE ? ESCAPE '\' OR content LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern,
		)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search notes"})
		return
	}

	var notes []models.Note
	if err := query.Select("id", "title", "summary", "category_id", "status", "view_count", "created_at", "updated_at").
		Order(p.order("updated_at")).Limit(p.Limit).Offset(p.Offset).Find(&notes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search notes"})
		return
	}
	attachCategories(db, notes)

	c.JSON(http.StatusOK, gin.H{
		"query":   q,
		"results": notes,
		"count":   len(notes),
		"total":   total,
		"page":    p.Page,
		"limit":   p.Limit,
	})
}

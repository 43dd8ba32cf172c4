package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"notes-api/internal/database"
	"notes-api/internal/middleware"
	"notes-api/internal/models"
	"notes-api/internal/render"
)

// NoteHandler serves note endpoints. Markdown bodies are rendered through Renderer.
type NoteHandler struct {
	Renderer *render.Cache
}

func NewNoteHandler(r *render.Cache) *NoteHandler {
	return &NoteHandler{Renderer: r}
}

// CreateNoteRequest represents the request payload for creating a note
type CreateNoteRequest struct {
	Title      string            `json:"title" binding:"required"`
	Summary    string            `json:"summary"`
	Content    string            `json:"content"`
	CategoryID string            `json:"categoryId"`
	Status     models.NoteStatus `json:"status"`
}

// UpdateNoteRequest represents the request payload for updating a note
type UpdateNoteRequest struct {
	Title      *string            `json:"title"`
	Summary    *string            `json:"summary"`
	Content    *string            `json:"content"`
	CategoryID *string            `json:"categoryId"`
	Status     *models.NoteStatus `json:"status"`
}

// UpdateNoteStatusRequest represents a minimal request to publish or unpublish
type UpdateNoteStatusRequest struct {
	Status models.NoteStatus `json:"status" binding:"required"`
}

// PreviewRequest carries unsaved Markdown
type PreviewRequest struct {
	Content string `json:"content"`
}

// writeRenderError maps a failed render to 422; anything else (a cancelled request) to 503.
func writeRenderError(c *gin.Context, err error) {
	var re *render.RenderError
	if errors.As(err, &re) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Failed to render note content"})
		return
	}
	c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Rendering was interrupted"})
}

func (h *NoteHandler) attachHTML(ctx context.Context, note *models.Note) error {
	html, err := h.Renderer.Markup(ctx, note.Content)
	if err != nil {
		return err
	}
	note.HTML = html
	return nil
}

// attachCategories fills Category on each note with one query.
func attachCategories(db *gorm.DB, notes []models.Note) {
	ids := make([]string, 0, len(notes))
	for _, n := range notes {
		if n.CategoryID != "" {
			ids = append(ids, n.CategoryID)
		}
	}
	if len(ids) == 0 {
		return
	}
	var cats []models.Category
	if err := db.Where("id IN ?", ids).Find(&cats).Error; err != nil {
		return
	}
	byID := make(map[string]*models.Category, len(cats))
	for i := range cats {
		byID[cats[i].ID] = &cats[i]
	}
	for i := range notes {
		notes[i].Category = byID[notes[i].CategoryID]
	}
}

// validCategory reports whether id is empty or names an existing category, writing 400/500 otherwise.
func validCategory(c *gin.Context, db *gorm.DB, id string) bool {
	if id == "" {
		return true
	}
	var cat models.Category
	if err := db.Where("id = ?", id).First(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid categoryId: category not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to validate categoryId"})
		}
		return false
	}
	return true
}

func (h *NoteHandler) list(c *gin.Context, publishedOnly bool) {
	p := parsePage(c)
	db := database.GetDB()
	query := db.Model(&models.Note{})
	if publishedOnly {
		query = query.Where("status = ?", models.NotePublished)
	} else if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if categoryID := c.Query("categoryId"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count notes"})
		return
	}

	var notes []models.Note
	if err := query.Order(p.order("created_at")).
		Limit(p.Limit).Offset(p.Offset).Find(&notes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch notes"})
		return
	}
	attachCategories(db, notes)

	c.JSON(http.StatusOK, gin.H{
		"notes": notes,
		"count": len(notes),
		"total": total,
		"page":  p.Page,
		"limit": p.Limit,
		"sort":  p.Sort,
	})
}

// ListPublished handles GET /api/notes
func (h *NoteHandler) ListPublished(c *gin.Context) { h.list(c, true) }

// AdminList handles GET /api/admin/notes, including drafts
func (h *NoteHandler) AdminList(c *gin.Context) { h.list(c, false) }

// GetPublished handles GET /api/notes/:id. It counts a view and returns rendered HTML.
func (h *NoteHandler) GetPublished(c *gin.Context) {
	db := database.GetDB()
	var note models.Note
	err := db.Where("id = ? AND status = ?", c.Param("id"), models.NotePublished).First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Note not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch note"})
		}
		return
	}

	if err := h.attachHTML(c.Request.Context(), &note); err != nil {
		writeRenderError(c, err)
		return
	}
	// Only views that were actually served are counted.
	if err := db.Model(&note).UpdateColumn("view_count", gorm.Expr("view_count + ?", 1)).Error; err == nil {
		note.ViewCount++
	}
	notes := []models.Note{note}
	attachCategories(db, notes)
	c.JSON(http.StatusOK, notes[0])
}

// AdminGet handles GET /api/admin/notes/:id
func (h *NoteHandler) AdminGet(c *gin.Context) {
	db := database.GetDB()
	var note models.Note
	if !fetchByID(c, db, &note, c.Param("id"), "Note") {
		return
	}
	if err := h.attachHTML(c.Request.Context(), &note); err != nil {
		writeRenderError(c, err)
		return
	}
	notes := []models.Note{note}
	attachCategories(db, notes)
	c.JSON(http.StatusOK, notes[0])
}

// Create handles POST /api/admin/notes
func (h *NoteHandler) Create(c *gin.Context) {
	var req CreateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status := req.Status
	if status == "" {
		status = models.NoteDraft
	}
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	db := database.GetDB()
	categoryID := strings.TrimSpace(req.CategoryID)
	if !validCategory(c, db, categoryID) {
		return
	}

	note := models.Note{
		ID:         uuid.NewString(),
		Title:      strings.TrimSpace(req.Title),
		Summary:    req.Summary,
		Content:    req.Content,
		CategoryID: categoryID,
		Status:     status,
		AuthorID:   c.GetString(middleware.KeyAdminID),
	}
	// Reject content the renderer cannot handle before it is stored.
	if err := h.attachHTML(c.Request.Context(), &note); err != nil {
		writeRenderError(c, err)
		return
	}
	if err := db.Create(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create note"})
		return
	}

	publish(c, "note_created", "note", note.ID)
	c.JSON(http.StatusCreated, note)
}

// Update handles PUT /api/admin/notes/:id
func (h *NoteHandler) Update(c *gin.Context) {
	db := database.GetDB()
	var note models.Note
	if !fetchByID(c, db, &note, c.Param("id"), "Note") {
		return
	}

	var req UpdateNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title must not be empty"})
			return
		}
		note.Title = strings.TrimSpace(*req.Title)
	}
	if req.Summary != nil {
		note.Summary = *req.Summary
	}
	if req.Content != nil {
		note.Content = *req.Content
	}
	if req.CategoryID != nil {
		categoryID := strings.TrimSpace(*req.CategoryID)
		if !validCategory(c, db, categoryID) {
			return
		}
		note.CategoryID = categoryID
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		note.Status = *req.Status
	}

	if err := h.attachHTML(c.Request.Context(), &note); err != nil {
		writeRenderError(c, err)
		return
	}
	if err := db.Save(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update note"})
		return
	}

	publish(c, "note_updated", "note", note.ID)
	c.JSON(http.StatusOK, note)
}

// UpdateStatus handles PATCH /api/admin/notes/:id/status
func (h *NoteHandler) UpdateStatus(c *gin.Context) {
	var req UpdateNoteStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	db := database.GetDB()
	var note models.Note
	if !fetchByID(c, db, &note, c.Param("id"), "Note") {
		return
	}
	if err := db.Model(&note).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		return
	}
	note.Status = req.Status

	publish(c, "note_status_changed", "note", note.ID)
	c.JSON(http.StatusOK, note)
}

// Delete handles DELETE /api/admin/notes/:id
func (h *NoteHandler) Delete(c *gin.Context) {
	db := database.GetDB()
	var note models.Note
	if !fetchByID(c, db, &note, c.Param("id"), "Note") {
		return
	}
	if err := db.Delete(&note).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete note"})
		return
	}

	publish(c, "note_deleted", "note", note.ID)
	c.JSON(http.StatusOK, gin.H{
		"message": "Note deleted successfully",
		"id":      note.ID,
	})
}

// Preview handles POST /api/admin/render/preview for unsaved Markdown.
func (h *NoteHandler) Preview(c *gin.Context) {
	var req PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	html, err := h.Renderer.Markup(c.Request.Context(), req.Content)
	if err != nil {
		writeRenderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"html":  html,
		"large": h.Renderer.IsLarge(req.Content),
	})
}

// Stats handles GET /api/admin/render/stats
func (h *NoteHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.Renderer.Stats())
}

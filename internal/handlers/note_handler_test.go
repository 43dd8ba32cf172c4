package handlers

import (
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"notes-api/internal/auth"
	"notes-api/internal/markdown"
	"notes-api/internal/middleware"
	"notes-api/internal/models"
	"notes-api/internal/render"
	"notes-api/internal/testutil"
)

func noteRouter(t *testing.T, rc *render.Cache) (*gin.Engine, *gorm.DB, string) {
	t.Helper()
	db := setupDB(t)
	if rc == nil {
		rc = render.New(markdown.New(), render.Options{})
	}
	t.Cleanup(rc.Stop)
	h := NewNoteHandler(rc)

	r := gin.New()
	r.GET("/api/notes", h.ListPublished)
	r.GET("/api/notes/:id", h.GetPublished)
	admin := r.Group("/api/admin", middleware.JWTAuthMiddleware())
	admin.GET("/notes", h.AdminList)
	admin.GET("/notes/:id", h.AdminGet)
	admin.POST("/notes", h.Create)
	admin.PUT("/notes/:id", h.Update)
	admin.PATCH("/notes/:id/status", h.UpdateStatus)
	admin.DELETE("/notes/:id", h.Delete)
	admin.POST("/render/preview", h.Preview)
	admin.GET("/render/stats", h.Stats)

	_, token := testutil.TokenFor(t, db, "editor", auth.RoleEditor)
	return r, db, token
}

func TestCreateNote_Success(t *testing.T) {
	r, db, token := noteRouter(t, nil)
	cat := models.Category{ID: "c-1", Name: "Go"}
	require.NoError(t, db.Create(&cat).Error)

	w := doJSON(r, http.MethodPost, "/api/admin/notes", token, map[string]any{
		"title":      "  First  ",
		"content":    "Some **bold** text",
		"categoryId": "c-1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	created := decode[models.Note](t, w)
	require.Equal(t, "First", created.Title)
	require.Equal(t, models.NoteDraft, created.Status)
	require.Contains(t, created.HTML, "<strong>bold</strong>")

	var stored models.Note
	require.NoError(t, db.First(&stored, "id = ?", created.ID).Error)
	require.Equal(t, "Some **bold** text", stored.Content)
}

func TestCreateNote_Validation(t *testing.T) {
	r, _, token := noteRouter(t, nil)

	w := doJSON(r, http.MethodPost, "/api/admin/notes", token, map[string]any{"content": "no title"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/admin/notes", token, map[string]any{"title": "x", "status": "archived"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/api/admin/notes", token, map[string]any{"title": "x", "categoryId": "missing"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateNote_RenderFailure(t *testing.T) {
	rc := render.New(render.RendererFunc(func(string) (string, error) {
		return "", errors.New("broken parser")
	}), render.Options{})
	r, db, token := noteRouter(t, rc)

	w := doJSON(r, http.MethodPost, "/api/admin/notes", token, map[string]any{"title": "x", "content": "body"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var count int64
	require.NoError(t, db.Model(&models.Note{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestGetNote_RenderFailureDoesNotCountView(t *testing.T) {
	rc := render.New(render.RendererFunc(func(string) (string, error) {
		return "", errors.New("broken parser")
	}), render.Options{})
	r, db, _ := noteRouter(t, rc)
	require.NoError(t, db.Create(&models.Note{ID: "n-1", Title: "Live", Content: "body", Status: models.NotePublished}).Error)

	w := doJSON(r, http.MethodGet, "/api/notes/n-1", "", nil)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var stored models.Note
	require.NoError(t, db.First(&stored, "id = ?", "n-1").Error)
	require.Zero(t, stored.ViewCount)
}

func TestPublicNotes_OnlyPublished(t *testing.T) {
	r, db, _ := noteRouter(t, nil)
	require.NoError(t, db.Create(&models.Note{ID: "n-1", Title: "Live", Content: "# Live", Status: models.NotePublished}).Error)
	require.NoError(t, db.Create(&models.Note{ID: "n-2", Title: "Draft", Content: "wip", Status: models.NoteDraft}).Error)

	w := doJSON(r, http.MethodGet, "/api/notes", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Notes []models.Note `json:"notes"`
		Total int64         `json:"total"`
	}](t, w)
	require.EqualValues(t, 1, list.Total)
	require.Equal(t, "n-1", list.Notes[0].ID)

	w = doJSON(r, http.MethodGet, "/api/notes/n-2", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodGet, "/api/notes/n-1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	note := decode[models.Note](t, w)
	require.EqualValues(t, 1, note.ViewCount)
	require.Contains(t, note.HTML, "<h1")
}

func TestGetNote_UsesRenderCache(t *testing.T) {
	var calls atomic.Int64
	md := markdown.New()
	rc := render.New(render.RendererFunc(func(text string) (string, error) {
		calls.Add(1)
		return md.Render(text)
	}), render.Options{})
	r, db, _ := noteRouter(t, rc)
	require.NoError(t, db.Create(&models.Note{ID: "n-1", Title: "Live", Content: "cached body", Status: models.NotePublished}).Error)

	for i := 0; i < 3; i++ {
		w := doJSON(r, http.MethodGet, "/api/notes/n-1", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
	}
	require.EqualValues(t, 1, calls.Load())
	require.Equal(t, 1, rc.Len())
}

func TestGetNote_LargeContentBypassesCache(t *testing.T) {
	rc := render.New(markdown.New(), render.Options{LargeInputThreshold: 100})
	r, db, _ := noteRouter(t, rc)
	big := strings.Repeat("word ", 100)
	require.NoError(t, db.Create(&models.Note{ID: "n-big", Title: "Big", Content: big, Status: models.NotePublished}).Error)

	w := doJSON(r, http.MethodGet, "/api/notes/n-big", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, decode[models.Note](t, w).HTML, "word word")
	require.Zero(t, rc.Len())
	require.EqualValues(t, 1, rc.Stats().LargeRenders)
}

func TestUpdateNote(t *testing.T) {
	r, db, token := noteRouter(t, nil)
	require.NoError(t, db.Create(&models.Note{ID: "n-1", Title: "Old", Content: "old", Status: models.NoteDraft}).Error)

	w := doJSON(r, http.MethodPut, "/api/admin/notes/n-1", token, map[string]any{
		"title":   "New",
		"content": "_new_",
	})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[models.Note](t, w)
	require.Equal(t, "New", updated.Title)
	require.Contains(t, updated.HTML, "<em>new</em>")

	w = doJSON(r, http.MethodPut, "/api/admin/notes/n-1", token, map[string]any{"title": "  "})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPut, "/api/admin/notes/missing", token, map[string]any{"title": "x"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateNoteStatus_AndDelete(t *testing.T) {
	r, db, token := noteRouter(t, nil)
	require.NoError(t, db.Create(&models.Note{ID: "n-1", Title: "T", Status: models.NoteDraft}).Error)

	w := doJSON(r, http.MethodPatch, "/api/admin/notes/n-1/status", token, map[string]any{"status": "published"})
	require.Equal(t, http.StatusOK, w.Code)

	var stored models.Note
	require.NoError(t, db.First(&stored, "id = ?", "n-1").Error)
	require.Equal(t, models.NotePublished, stored.Status)

	w = doJSON(r, http.MethodGet, "/api/admin/notes?status=draft", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.EqualValues(t, 0, decode[struct {
		Total int64 `json:"total"`
	}](t, w).Total)

	w = doJSON(r, http.MethodDelete, "/api/admin/notes/n-1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = doJSON(r, http.MethodGet, "/api/admin/notes/n-1", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPreviewAndStats(t *testing.T) {
	r, _, token := noteRouter(t, nil)

	w := doJSON(r, http.MethodPost, "/api/admin/render/preview", token, map[string]any{"content": "<script>x</script>*hi*"})
	require.Equal(t, http.StatusOK, w.Code)
	preview := decode[struct {
		HTML  string `json:"html"`
		Large bool   `json:"large"`
	}](t, w)
	require.NotContains(t, preview.HTML, "<script")
	require.False(t, preview.Large)

	w = doJSON(r, http.MethodGet, "/api/admin/render/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode[render.Stats](t, w)
	require.Equal(t, 1, stats.Size)
	require.EqualValues(t, 1, stats.Misses)
}

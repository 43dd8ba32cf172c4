package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"notes-api/internal/auth"
	"notes-api/internal/database"
	"notes-api/internal/markdown"
	"notes-api/internal/middleware"
	"notes-api/internal/render"
	"notes-api/internal/testutil"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	database.DB = db
	testutil.SeedRoles(t, db)
	middleware.InvalidateAllRoles()

	rc := render.New(markdown.New(), render.Options{})
	t.Cleanup(rc.Stop)
	return SetupRoutes(rc, nil)
}

func TestHealth(t *testing.T) {
	r := newRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	r := newRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/notes", nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestAdminRoutesRequireToken(t *testing.T) {
	r := newRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/notes", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPublishFlow(t *testing.T) {
	r := newRouter(t)
	_, editor := testutil.TokenFor(t, database.GetDB(), "ed", auth.RoleEditor)
	_, viewer := testutil.TokenFor(t, database.GetDB(), "vi", auth.RoleViewer)

	body, _ := json.Marshal(map[string]string{"title": "Hello", "content": "# Hi", "status": "published"})

	// Viewers can read but not write.
	req := httptest.NewRequest(http.MethodPost, "/api/admin/notes", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+viewer)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/api/admin/notes", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+editor)
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/notes/"+created.ID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	var fetched struct {
		HTML string `json:"html"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	require.Contains(t, fetched.HTML, `<h1 id="hi">Hi</h1>`)
}

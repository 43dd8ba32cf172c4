package maintenance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"notes-api/internal/auth"
	"notes-api/internal/database"
	"notes-api/internal/markdown"
	"notes-api/internal/middleware"
	"notes-api/internal/models"
	"notes-api/internal/render"
	"notes-api/internal/routes"
	"notes-api/internal/testutil"
)

func newDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	return db
}

func TestInspectTables(t *testing.T) {
	db := newDB(t)
	testutil.SeedRoles(t, db)

	tables, err := InspectTables(db)
	require.NoError(t, err)

	byName := map[string]TableInfo{}
	for _, tbl := range tables {
		byName[tbl.Name] = tbl
	}
	for _, name := range []string{"admins", "carousels", "categories", "feedback", "notes", "roles"} {
		require.Contains(t, byName, name)
	}
	require.Equal(t, int64(len(auth.DefaultRoles())), byName["roles"].Rows)
	require.Zero(t, byName["notes"].Rows)

	var hasID bool
	for _, col := range byName["notes"].Columns {
		if col.Name == "id" {
			hasID = true
		}
	}
	require.True(t, hasID)

	for i := 1; i < len(tables); i++ {
		require.Less(t, tables[i-1].Name, tables[i].Name)
	}
}

func TestFixRoleNames(t *testing.T) {
	db := newDB(t)
	require.NoError(t, db.Create(&models.Role{ID: uuid.NewString(), Name: "Content Editor", Permissions: []string{"notes:*"}}).Error)
	require.NoError(t, db.Create(&models.Role{ID: uuid.NewString(), Name: "viewer"}).Error)
	require.NoError(t, db.Create(&models.Admin{ID: uuid.NewString(), Username: "a", Password: "x", Role: "Content Editor"}).Error)
	require.NoError(t, db.Create(&models.Admin{ID: uuid.NewString(), Username: "b", Password: "x", Role: "viewer"}).Error)

	fixes, err := FixRoleNames(db, true, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, fixes, 2)

	var role models.Role
	require.NoError(t, db.Where("name = ?", "Content Editor").First(&role).Error, "dry run must not write")

	fixes, err = FixRoleNames(db, false, zap.NewNop())
	require.NoError(t, err)
	require.Len(t, fixes, 2)

	require.NoError(t, db.Where("name = ?", "content_editor").First(&role).Error)
	var admin models.Admin
	require.NoError(t, db.Where("username = ?", "a").First(&admin).Error)
	require.Equal(t, "content_editor", admin.Role)

	fixes, err = FixRoleNames(db, false, zap.NewNop())
	require.NoError(t, err)
	require.Empty(t, fixes)
}

func TestFixRoleNamesCollision(t *testing.T) {
	db := newDB(t)
	require.NoError(t, db.Create(&models.Role{ID: uuid.NewString(), Name: "Site Admin"}).Error)
	require.NoError(t, db.Create(&models.Role{ID: uuid.NewString(), Name: "site-admin"}).Error)

	_, err := FixRoleNames(db, false, zap.NewNop())
	require.ErrorIs(t, err, ErrRoleCollision)

	var count int64
	require.NoError(t, db.Model(&models.Role{}).Where("name = ?", "site_admin").Count(&count).Error)
	require.Zero(t, count)
}

func TestRunSmoke(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newDB(t)
	database.DB = db
	testutil.SeedRoles(t, db)
	middleware.InvalidateAllRoles()
	_, err := database.CreateAdmin(db, "smoke", "smoke-password", auth.RoleSuperAdmin)
	require.NoError(t, err)

	rc := render.New(markdown.New(), render.Options{})
	t.Cleanup(rc.Stop)
	srv := httptest.NewServer(routes.SetupRoutes(rc, nil))
	t.Cleanup(srv.Close)

	results := RunSmoke(context.Background(), SmokeOptions{
		BaseURL:  srv.URL + "/",
		Username: "smoke",
		Password: "smoke-password",
		Client:   srv.Client(),
	})
	require.Len(t, results, 9)
	for _, r := range results {
		require.True(t, r.OK(), "%s %s: %v", r.Method, r.Path, r.Err)
	}

	results = RunSmoke(context.Background(), SmokeOptions{
		BaseURL:  srv.URL,
		Username: "smoke",
		Password: "wrong-password",
		Client:   srv.Client(),
	})
	require.Len(t, results, 6)
	last := results[len(results)-1]
	require.Equal(t, "login", last.Name)
	require.Equal(t, http.StatusUnauthorized, last.Status)
	require.Error(t, last.Err)
}

func TestRunSmokePublicOnly(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)

	results := RunSmoke(context.Background(), SmokeOptions{BaseURL: srv.URL})
	require.Len(t, results, 5)
	for _, r := range results {
		require.Equal(t, http.StatusNotFound, r.Status)
		require.False(t, r.OK())
	}
}

package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notes-api/internal/auth"
	"notes-api/internal/models"
)

func TestSeed_CreatesRolesAndBootstrapAdmin(t *testing.T) {
	db, err := Open(":memory:", "silent")
	require.NoError(t, err)

	require.NoError(t, Seed(db, "root", "bootstrap-pass", zap.NewNop()))
	// Second run is a no-op.
	require.NoError(t, Seed(db, "root", "bootstrap-pass", zap.NewNop()))

	var roles []models.Role
	require.NoError(t, db.Order("name").Find(&roles).Error)
	require.Len(t, roles, 3)
	require.Equal(t, auth.RoleEditor, roles[0].Name)
	require.Equal(t, auth.RoleSuperAdmin, roles[1].Name)
	require.Equal(t, []string{auth.PermAll}, roles[1].Permissions)

	var admins []models.Admin
	require.NoError(t, db.Find(&admins).Error)
	require.Len(t, admins, 1)
	require.Equal(t, "root", admins[0].Username)
	require.Equal(t, auth.RoleSuperAdmin, admins[0].Role)
	require.True(t, auth.CheckPassword(admins[0].Password, "bootstrap-pass"))
}

func TestSeed_NoPasswordSkipsAdmin(t *testing.T) {
	db, err := Open(":memory:", "silent")
	require.NoError(t, err)
	require.NoError(t, Seed(db, "root", "", zap.NewNop()))

	var count int64
	require.NoError(t, db.Model(&models.Admin{}).Count(&count).Error)
	require.Zero(t, count)
}

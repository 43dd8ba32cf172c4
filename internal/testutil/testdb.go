package testutil

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"notes-api/internal/auth"
	"notes-api/internal/models"
)

// NewInMemoryDB creates an in-memory SQLite DB and runs migrations.
func NewInMemoryDB() (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, err
	}
	return db, nil
}

// SeedRoles inserts the built-in roles.
func SeedRoles(t *testing.T, db *gorm.DB) {
	t.Helper()
	for name, perms := range auth.DefaultRoles() {
		require.NoError(t, db.Create(&models.Role{ID: uuid.NewString(), Name: name, Permissions: perms}).Error)
	}
}

// TokenFor creates an admin with role and returns a bearer token for it.
func TokenFor(t *testing.T, db *gorm.DB, username, role string) (models.Admin, string) {
	t.Helper()
	admin := models.Admin{ID: uuid.NewString(), Username: username, Password: "x", Role: role}
	require.NoError(t, db.Create(&admin).Error)
	token, err := auth.GenerateToken(admin.ID, admin.Username, admin.Role)
	require.NoError(t, err)
	return admin, token
}

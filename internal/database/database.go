package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"notes-api/internal/auth"
	"notes-api/internal/models"
)

var DB *gorm.DB

// Open connects to the SQLite file at path and runs migrations.
// glebarez/sqlite is pure Go, so no CGO is required.
func Open(path, logLevel string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(parseLogLevel(logLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if path == ":memory:" {
		if err := singleConn(db); err != nil {
			return nil, err
		}
	}
	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	return nil
}

// InitDB opens the database, seeds it and installs it as the package-level DB.
func InitDB(path, logLevel, bootstrapUser, bootstrapPassword string, log *zap.Logger) error {
	db, err := Open(path, logLevel)
	if err != nil {
		return err
	}
	if err := Seed(db, bootstrapUser, bootstrapPassword, log); err != nil {
		return err
	}
	DB = db
	log.Info("database connected and migrated", zap.String("path", path))
	return nil
}

// GetDB returns the database connection
func GetDB() *gorm.DB {
	return DB
}

// Seed creates the built-in roles that are missing and, when no admin exists and a
// password is given, a super_admin account.
func Seed(db *gorm.DB, bootstrapUser, bootstrapPassword string, log *zap.Logger) error {
	for name, perms := range auth.DefaultRoles() {
		var role models.Role
		err := db.Where("name = ?", name).First(&role).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("look up role %s: %w", name, err)
		}
		role = models.Role{ID: uuid.NewString(), Name: name, Permissions: perms}
		if err := db.Create(&role).Error; err != nil {
			return fmt.Errorf("create role %s: %w", name, err)
		}
		log.Info("seeded role", zap.String("role", name))
	}

	var admins int64
	if err := db.Model(&models.Admin{}).Count(&admins).Error; err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if admins > 0 {
		return nil
	}
	if bootstrapPassword == "" {
		log.Warn("no admin accounts exist and no bootstrap password is configured")
		return nil
	}

	admin, err := CreateAdmin(db, bootstrapUser, bootstrapPassword, auth.RoleSuperAdmin)
	if err != nil {
		return err
	}
	log.Info("seeded bootstrap admin", zap.String("username", admin.Username))
	return nil
}

// CreateAdmin hashes password and inserts an admin with the given role.
func CreateAdmin(db *gorm.DB, username, password, role string) (*models.Admin, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	admin := &models.Admin{
		ID:          uuid.NewString(),
		Username:    strings.TrimSpace(username),
		Password:    hash,
		DisplayName: strings.TrimSpace(username),
		Role:        auth.NormalizeRoleName(role),
	}
	if err := db.Create(admin).Error; err != nil {
		return nil, fmt.Errorf("create admin %s: %w", username, err)
	}
	return admin, nil
}

// singleConn pins the pool to one connection; each new :memory: connection would
// otherwise see an empty database.
func singleConn(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxOpenConns(1)
	return nil
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Package testutil provides an in-memory database for package tests
package testutil

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"masterdata-service/internal/auth"
	"masterdata-service/internal/model"
	"masterdata-service/pkg/database"
)

// NewDB opens a private in-memory SQLite database with every model migrated
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc:                                  func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// each connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.MigrateModels(db, model.All()...))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// TenantUser returns a tenant-bound UserContext holding privileges
func TenantUser(userID, tenantID uint, privileges ...string) *auth.UserContext {
	return &auth.UserContext{
		UserID:     userID,
		TenantID:   &tenantID,
		LoginID:    "tenant-user",
		UserType:   model.UserTypeStaff,
		Privileges: privileges,
	}
}

// SystemUser returns a UserContext without a tenant holding SYSTEM_ALL
func SystemUser(userID uint) *auth.UserContext {
	return &auth.UserContext{
		UserID:     userID,
		LoginID:    "system",
		UserType:   model.UserTypeSystem,
		Privileges: []string{auth.SystemAll},
	}
}

// Uint returns a pointer to v
func Uint(v uint) *uint { return &v }

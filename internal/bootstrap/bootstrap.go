// Package bootstrap seeds the data a fresh database needs before anyone can log in
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"masterdata-service/internal/auth"
	"masterdata-service/internal/model"
	"masterdata-service/internal/service"
	"masterdata-service/pkg/config"
	"masterdata-service/pkg/logger"
	"masterdata-service/prometheus"
)

// AdminRoleName is the system role granted to the bootstrap administrator
const AdminRoleName = "System Administrator"

// SeedPrivileges inserts the catalog privileges missing from the privileges
// table and returns how many were added. Existing rows are left untouched.
func SeedPrivileges(ctx context.Context, db *gorm.DB) (int64, error) {
	defer prometheus.TrackDBOperation("privileges", "seed")(time.Now())

	rows := lo.Map(auth.Catalog(), func(e auth.CatalogEntry, _ int) model.Privilege {
		return model.Privilege{
			Name:        e.Name,
			Module:      e.Module,
			Description: e.Description,
			Audit:       model.Audit{Active: true},
		}
	})

	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		CreateInBatches(&rows, 100)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to seed privileges: %w", result.Error)
	}

	logger.FromStdContext(ctx).Info("Privilege catalog seeded",
		zap.Int("catalog", len(rows)),
		zap.Int64("inserted", result.RowsAffected))
	return result.RowsAffected, nil
}

// EnsureAdmin creates the system administrator role holding SYSTEM_ALL and the
// administrator user described by cfg. Nothing is done for an empty login or
// when the user already exists.
func EnsureAdmin(ctx context.Context, db *gorm.DB, cfg config.BootstrapConfig) (*model.User, error) {
	log := logger.FromStdContext(ctx)
	if cfg.AdminLogin == "" {
		log.Info("Bootstrap admin disabled")
		return nil, nil
	}
	if cfg.AdminPassword == "" {
		return nil, errors.New("BOOTSTRAP_ADMIN_PASSWORD is required with BOOTSTRAP_ADMIN_LOGIN")
	}

	var user model.User
	err := db.WithContext(ctx).Where("login_id = ?", cfg.AdminLogin).Take(&user).Error
	if err == nil {
		log.Info("Bootstrap admin already exists", zap.String("login_id", user.LoginID))
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up bootstrap admin: %w", err)
	}

	hash, err := service.HashPassword(cfg.AdminPassword)
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var all model.Privilege
		if err := tx.Where("name = ?", auth.SystemAll).Take(&all).Error; err != nil {
			return fmt.Errorf("privilege %s is not seeded: %w", auth.SystemAll, err)
		}

		var role model.Role
		err := tx.Where("name = ? AND tenant_id IS NULL", AdminRoleName).Take(&role).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			role = model.Role{
				Name:        AdminRoleName,
				Description: "Full access to every tenant",
				Privileges:  []model.Privilege{all},
				Audit:       model.Audit{Active: true},
			}
			if err := tx.Create(&role).Error; err != nil {
				return fmt.Errorf("failed to create admin role: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to look up admin role: %w", err)
		}

		user = model.User{
			LoginID:      cfg.AdminLogin,
			Name:         "System Administrator",
			Email:        cfg.AdminEmail,
			UserType:     model.UserTypeSystem,
			RoleID:       &role.ID,
			PasswordHash: hash,
			Audit:        model.Audit{Active: true},
		}
		if err := tx.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to create admin user: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("Bootstrap admin created", zap.Uint("user_id", user.ID), zap.String("login_id", user.LoginID))
	return &user, nil
}

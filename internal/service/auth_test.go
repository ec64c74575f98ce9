package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"masterdata-service/internal/auth"
	"masterdata-service/internal/model"
	"masterdata-service/internal/repository"
	"masterdata-service/internal/service"
	"masterdata-service/internal/testutil"
	"masterdata-service/internal/validation"
	"masterdata-service/pkg/jwtutil"
)

func seedPrivileges(t *testing.T, db *gorm.DB, names ...string) []model.Privilege {
	t.Helper()
	var out []model.Privilege
	for _, name := range names {
		p := model.Privilege{Name: name, Module: auth.ModuleOf(name), Audit: model.Audit{Active: true}}
		require.NoError(t, db.Create(&p).Error)
		out = append(out, p)
	}
	return out
}

func seedUser(t *testing.T, db *gorm.DB, user model.User, password string) model.User {
	t.Helper()
	hash, err := service.HashPassword(password)
	require.NoError(t, err)
	user.PasswordHash = hash
	user.Active = true
	require.NoError(t, db.Create(&user).Error)
	return user
}

func TestLogin(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test", ExpirationHours: 1})
	svc := service.NewAuthService(db, jwt)

	tenant := model.Tenant{Code: "T1", Name: "Tenant One", Audit: model.Audit{Active: true}}
	require.NoError(t, db.Create(&tenant).Error)
	privileges := seedPrivileges(t, db, "VEHICLE_VIEW", "VEHICLE_UPDATE")
	role := model.Role{Name: "Fleet", Privileges: privileges, TenantScope: model.TenantScope{TenantID: &tenant.ID}, Audit: model.Audit{Active: true}}
	require.NoError(t, db.Create(&role).Error)

	user := seedUser(t, db, model.User{
		LoginID:     "fleet.manager",
		Name:        "Fleet Manager",
		Email:       "fleet@example.com",
		UserType:    model.UserTypeStaff,
		RoleID:      &role.ID,
		TenantScope: model.TenantScope{TenantID: &tenant.ID},
	}, "s3cret!")

	result, err := svc.Login(ctx, "fleet.manager", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, "Bearer", result.TokenType)
	assert.ElementsMatch(t, []string{"VEHICLE_VIEW", "VEHICLE_UPDATE"}, result.Privileges)
	require.NotNil(t, result.User.LastLoginAt)

	claims, err := jwt.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, tenant.ID, *claims.TenantID)
	assert.Equal(t, "Fleet", claims.RoleName)

	// email works as login
	_, err = svc.Login(ctx, "fleet@example.com", "s3cret!")
	assert.NoError(t, err)

	_, err = svc.Login(ctx, "fleet.manager", "wrong")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "s3cret!")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	require.NoError(t, db.Model(&tenant).Update("active", false).Error)
	_, err = svc.Login(ctx, "fleet.manager", "s3cret!")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLoginInactiveUser(t *testing.T) {
	db := testutil.NewDB(t)
	svc := service.NewAuthService(db, jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test", ExpirationHours: 1}))

	user := seedUser(t, db, model.User{LoginID: "root", Name: "Root", UserType: model.UserTypeSystem}, "pw")
	require.NoError(t, db.Model(&user).Update("active", false).Error)

	_, err := svc.Login(context.Background(), "root", "pw")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestInactiveRoleGrantsNothing(t *testing.T) {
	db := testutil.NewDB(t)
	svc := service.NewAuthService(db, jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test", ExpirationHours: 1}))

	role := model.Role{Name: "Admin", Privileges: seedPrivileges(t, db, auth.SystemAll), Audit: model.Audit{Active: true}}
	require.NoError(t, db.Create(&role).Error)
	require.NoError(t, db.Model(&role).Update("active", false).Error)
	seedUser(t, db, model.User{LoginID: "root", Name: "Root", UserType: model.UserTypeSystem, RoleID: &role.ID}, "pw")

	result, err := svc.Login(context.Background(), "root", "pw")
	require.NoError(t, err)
	assert.Empty(t, result.Privileges)
}

func TestMe(t *testing.T) {
	db := testutil.NewDB(t)
	svc := service.NewAuthService(db, jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test", ExpirationHours: 1}))
	user := seedUser(t, db, model.User{LoginID: "root", Name: "Root", UserType: model.UserTypeSystem}, "pw")

	profile, err := svc.Me(context.Background(), &auth.UserContext{UserID: user.ID, RoleName: "Admin", Privileges: []string{auth.SystemAll}})
	require.NoError(t, err)
	assert.Equal(t, "root", profile.User.LoginID)
	assert.Equal(t, []string{auth.SystemAll}, profile.Privileges)

	_, err = svc.Me(context.Background(), &auth.UserContext{UserID: 999})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestSetPrivileges(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	roles, err := repository.New[model.Role](db, repository.WithPreload("Privileges"), repository.WithDeleteAssociations("Privileges"))
	require.NoError(t, err)
	svc := service.NewRoleService(roles)

	seedPrivileges(t, db, "VEHICLE_VIEW", "VEHICLE_UPDATE", "COMPANY_VIEW", auth.SystemAll)
	admin := testutil.TenantUser(10, 1, "VEHICLE_ALL", "COMPANY_VIEW")
	role := &model.Role{Name: "Dispatcher", Audit: model.Audit{Active: true}}
	require.NoError(t, roles.Create(ctx, admin, role))

	updated, err := svc.SetPrivileges(ctx, admin, "1", []string{"VEHICLE_VIEW", "VEHICLE_UPDATE"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"VEHICLE_VIEW", "VEHICLE_UPDATE"}, updated.PrivilegeNames())

	updated, err = svc.SetPrivileges(ctx, admin, "1", []string{"COMPANY_VIEW"})
	require.NoError(t, err)
	assert.Equal(t, []string{"COMPANY_VIEW"}, updated.PrivilegeNames())

	_, err = svc.SetPrivileges(ctx, admin, "1", []string{auth.SystemAll, "NOPE_VIEW"})
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs["privileges"], 3)

	_, err = svc.SetPrivileges(ctx, testutil.TenantUser(20, 2, auth.TenantAll), "1", []string{"VEHICLE_VIEW"})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	updated, err = svc.SetPrivileges(ctx, admin, "1", nil)
	require.NoError(t, err)
	assert.Empty(t, updated.PrivilegeNames())
}

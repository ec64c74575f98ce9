package repository_test

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"masterdata-service/internal/auth"
	"masterdata-service/internal/model"
	"masterdata-service/internal/repository"
	"masterdata-service/internal/testutil"
)

func newCompanyRepo(t *testing.T) (*repository.Repository[model.Company], *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	repo, err := repository.New[model.Company](db)
	require.NoError(t, err)
	return repo, db
}

func seedCompany(t *testing.T, repo *repository.Repository[model.Company], uc *auth.UserContext, code, name string) *model.Company {
	t.Helper()
	c := &model.Company{Code: code, Name: name, City: "Pune", Audit: model.Audit{Active: true}}
	require.NoError(t, repo.Create(context.Background(), uc, c))
	return c
}

func TestCreateForcesCallerTenant(t *testing.T) {
	repo, _ := newCompanyRepo(t)
	ctx := context.Background()
	uc := testutil.TenantUser(10, 1)

	c := &model.Company{Code: "ACME", Name: "Acme", TenantScope: model.TenantScope{TenantID: testutil.Uint(2)}, Audit: model.Audit{Active: true}}
	require.NoError(t, repo.Create(ctx, uc, c))

	require.NotNil(t, c.TenantID)
	assert.Equal(t, uint(1), *c.TenantID)
	assert.Equal(t, uint(10), c.CreatedBy)
	assert.Equal(t, uint(10), c.UpdatedBy)

	_, err := repo.Find(ctx, testutil.TenantUser(20, 2), "1")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateBySystemUserKeepsPayloadTenant(t *testing.T) {
	repo, _ := newCompanyRepo(t)
	ctx := context.Background()

	c := &model.Company{Code: "ACME", Name: "Acme", TenantScope: model.TenantScope{TenantID: testutil.Uint(3)}, Audit: model.Audit{Active: true}}
	require.NoError(t, repo.Create(ctx, testutil.SystemUser(1), c))

	found, err := repo.Find(ctx, testutil.TenantUser(5, 3), "1")
	require.NoError(t, err)
	assert.Equal(t, "Acme", found.Name)
}

func TestCreateWithoutUserContext(t *testing.T) {
	repo, _ := newCompanyRepo(t)
	err := repo.Create(context.Background(), nil, &model.Company{Code: "X", Name: "X"})
	assert.ErrorIs(t, err, repository.ErrForbidden)
}

func TestFind(t *testing.T) {
	repo, _ := newCompanyRepo(t)
	ctx := context.Background()
	owner := testutil.TenantUser(10, 1)
	c := seedCompany(t, repo, owner, "ACME", "Acme")

	tests := []struct {
		name    string
		uc      *auth.UserContext
		id      string
		wantErr error
	}{
		{"owner", owner, "1", nil},
		{"system user", testutil.SystemUser(1), "1", nil},
		{"other tenant", testutil.TenantUser(20, 2), "1", repository.ErrNotFound},
		{"missing", owner, "99", repository.ErrNotFound},
		{"not a number", owner, "abc", repository.ErrNotFound},
		{"zero", owner, "0", repository.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.Find(ctx, tt.uc, tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.ID, found.ID)
		})
	}
}

func TestUpdateRejectsOtherTenant(t *testing.T) {
	repo, db := newCompanyRepo(t)
	ctx := context.Background()
	owner := testutil.TenantUser(10, 1)
	c := seedCompany(t, repo, owner, "ACME", "Acme")

	err := repo.Update(ctx, testutil.TenantUser(20, 2), c, map[string]any{"name": "Hijacked"})
	assert.ErrorIs(t, err, repository.ErrForbidden)

	var stored model.Company
	require.NoError(t, db.First(&stored, c.ID).Error)
	assert.Equal(t, "Acme", stored.Name)
}

func TestUpdateKeepsProtectedColumns(t *testing.T) {
	repo, db := newCompanyRepo(t)
	ctx := context.Background()
	owner := testutil.TenantUser(10, 1)
	c := seedCompany(t, repo, owner, "ACME", "Acme")

	editor := testutil.TenantUser(11, 1)
	err := repo.Update(ctx, editor, c, map[string]any{
		"name":       "Acme Logistics",
		"tenant_id":  uint(2),
		"created_by": uint(99),
		"id":         uint(500),
		"no_such":    "ignored",
	})
	require.NoError(t, err)

	var stored model.Company
	require.NoError(t, db.First(&stored, c.ID).Error)
	assert.Equal(t, "Acme Logistics", stored.Name)
	require.NotNil(t, stored.TenantID)
	assert.Equal(t, uint(1), *stored.TenantID)
	assert.Equal(t, uint(10), stored.CreatedBy)
	assert.Equal(t, uint(11), stored.UpdatedBy)
}

func TestTenantUserCannotModifyGlobalRecord(t *testing.T) {
	repo, _ := newCompanyRepo(t)
	ctx := context.Background()
	global := seedCompany(t, repo, testutil.SystemUser(1), "GLOBAL", "Global")
	require.Nil(t, global.TenantID)

	tenant := testutil.TenantUser(10, 1)
	assert.ErrorIs(t, repo.Update(ctx, tenant, global, map[string]any{"name": "mine"}), repository.ErrForbidden)
	assert.ErrorIs(t, repo.Delete(ctx, tenant, global), repository.ErrForbidden)
}

func TestDeactivate(t *testing.T) {
	repo, _ := newCompanyRepo(t)
	ctx := context.Background()
	owner := testutil.TenantUser(10, 1)
	c := seedCompany(t, repo, owner, "ACME", "Acme")

	require.NoError(t, repo.Deactivate(ctx, owner, c))

	found, err := repo.Find(ctx, owner, "1")
	require.NoError(t, err)
	assert.False(t, found.Active)
}

func TestDelete(t *testing.T) {
	repo, _ := newCompanyRepo(t)
	ctx := context.Background()
	owner := testutil.TenantUser(10, 1)
	c := seedCompany(t, repo, owner, "ACME", "Acme")

	assert.ErrorIs(t, repo.Delete(ctx, testutil.TenantUser(20, 2), c), repository.ErrForbidden)

	require.NoError(t, repo.Delete(ctx, owner, c))
	_, err := repo.Find(ctx, owner, "1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, repo.Delete(ctx, owner, c), repository.ErrNotFound)
}

func TestActiveFilter(t *testing.T) {
	repo, _ := newCompanyRepo(t)
	ctx := context.Background()
	uc := testutil.TenantUser(10, 1)
	seedCompany(t, repo, uc, "A", "Active One")
	inactive := seedCompany(t, repo, uc, "B", "Inactive One")
	require.NoError(t, repo.Deactivate(ctx, uc, inactive))

	tests := []struct {
		active string
		want   int
	}{
		{"", 1},
		{"true", 1},
		{"false", 1},
		{"both", 2},
		{"BOTH", 2},
		{"garbage", 1},
	}

	for _, tt := range tests {
		t.Run("active="+tt.active, func(t *testing.T) {
			items, err := repo.GetAllWithoutPagination(ctx, uc, repository.Filter{Active: tt.active})
			require.NoError(t, err)
			assert.Len(t, items, tt.want)
			if tt.active == "false" {
				assert.False(t, items[0].Active)
			}
		})
	}
}

func TestCreatedDateBoundaries(t *testing.T) {
	repo, _ := newCompanyRepo(t)
	ctx := context.Background()
	uc := testutil.TenantUser(10, 1)

	stamps := map[string]time.Time{
		"before": time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC),
		"start":  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		"end":    time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC),
		"after":  time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	for code, ts := range stamps {
		c := &model.Company{Code: code, Name: code, Audit: model.Audit{Active: true, CreatedAt: ts, UpdatedAt: ts}}
		require.NoError(t, repo.Create(ctx, uc, c))
	}

	codes := func(items []model.Company) []string {
		var out []string
		for _, c := range items {
			out = append(out, c.Code)
		}
		return out
	}

	items, err := repo.GetAllWithoutPagination(ctx, uc, repository.Filter{CreatedFrom: "2024-01-01"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"start", "end", "after"}, codes(items))

	items, err = repo.GetAllWithoutPagination(ctx, uc, repository.Filter{CreatedTo: "2024-01-01"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"before", "start", "end"}, codes(items))

	items, err = repo.GetAllWithoutPagination(ctx, uc, repository.Filter{CreatedFrom: "2024-01-01", CreatedTo: "2024-01-01"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"start", "end"}, codes(items))

	_, err = repo.GetAllWithoutPagination(ctx, uc, repository.Filter{UpdatedFrom: "01/01/2024"})
	assert.ErrorIs(t, err, repository.ErrInvalidFilter)
}

func TestDefaultSortIsUpdatedAtDesc(t *testing.T) {
	repo, _ := newCompanyRepo(t)
	ctx := context.Background()
	uc := testutil.TenantUser(10, 1)

	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, code := range []string{"old", "newest", "middle"} {
		offset := map[string]time.Duration{"old": 0, "middle": time.Hour, "newest": 2 * time.Hour}[code]
		c := &model.Company{Code: code, Name: code, Audit: model.Audit{Active: true, CreatedAt: base.Add(time.Duration(i) * time.Minute), UpdatedAt: base.Add(offset)}}
		require.NoError(t, repo.Create(ctx, uc, c))
	}

	items, err := repo.GetAllWithoutPagination(ctx, uc, repository.Filter{})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"newest", "middle", "old"}, []string{items[0].Code, items[1].Code, items[2].Code})

	items, err = repo.GetAllWithoutPagination(ctx, uc, repository.Filter{SortBy: "code", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, []string{"middle", "newest", "old"}, []string{items[0].Code, items[1].Code, items[2].Code})

	// unknown sort column falls back to updated_at
	items, err = repo.GetAllWithoutPagination(ctx, uc, repository.Filter{SortBy: "1; DROP TABLE companies"})
	require.NoError(t, err)
	assert.Equal(t, "newest", items[0].Code)
}

func TestColumnFilters(t *testing.T) {
	db := testutil.NewDB(t)
	repo, err := repository.New[model.Vehicle](db)
	require.NoError(t, err)
	ctx := context.Background()
	uc := testutil.TenantUser(10, 1)

	expiry := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	vehicles := []model.Vehicle{
		{RegistrationNumber: "MH12AB1234", VehicleType: "TRUCK", Make: "Tata", ManufactureYear: 2020, CapacityKg: 9000, InsuranceExpiry: &expiry},
		{RegistrationNumber: "MH14XY9876", VehicleType: "VAN", Make: "Mahindra", ManufactureYear: 2022, CapacityKg: 1500},
		{RegistrationNumber: "KA01ZZ0001", VehicleType: "TRUCK", Make: "Ashok Leyland", ManufactureYear: 2020, CapacityKg: 12000},
	}
	for i := range vehicles {
		vehicles[i].Active = true
		require.NoError(t, repo.Create(ctx, uc, &vehicles[i]))
	}

	tests := []struct {
		name  string
		query string
		want  int
		errIs error
	}{
		{"text contains ignores case", "registration_number=mh1", 2, nil},
		{"text contains in the middle", "registration_number=ab12", 1, nil},
		{"text exact word", "make=tata", 1, nil},
		{"integer equality", "manufacture_year=2020", 2, nil},
		{"float equality", "capacity_kg=1500", 1, nil},
		{"combined", "vehicle_type=truck&manufacture_year=2020", 2, nil},
		{"date equality", "insurance_expiry=2025-06-30", 1, nil},
		{"unknown column ignored", "colour=red", 3, nil},
		{"bad integer", "manufacture_year=twenty", 0, repository.ErrInvalidFilter},
		{"bad date", "insurance_expiry=tomorrow", 0, repository.ErrInvalidFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			values, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			items, err := repo.GetAllWithoutPagination(ctx, uc, repository.FilterFromQuery(values))
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
				return
			}
			require.NoError(t, err)
			assert.Len(t, items, tt.want)
		})
	}
}

func TestPagination(t *testing.T) {
	repo, _ := newCompanyRepo(t)
	ctx := context.Background()
	uc := testutil.TenantUser(10, 1)
	for _, code := range []string{"A", "B", "C", "D", "E"} {
		seedCompany(t, repo, uc, code, code)
	}
	seedCompany(t, repo, testutil.TenantUser(20, 2), "X", "Other tenant")

	page, err := repo.GetAllWithPagination(ctx, uc, repository.Filter{SortBy: "code", SortOrder: "asc"}, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, 3, page.LastPage)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 3, page.From)
	assert.Equal(t, 4, page.To)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "C", page.Data[0].Code)

	page, err = repo.GetAllWithPagination(ctx, uc, repository.Filter{}, 9, 2)
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.NotNil(t, page.Data)
	assert.Zero(t, page.From)

	all, err := repo.GetAllWithPagination(ctx, testutil.SystemUser(1), repository.Filter{}, 1, 15)
	require.NoError(t, err)
	assert.Equal(t, int64(6), all.Total)
}

func TestExists(t *testing.T) {
	repo, db := newCompanyRepo(t)
	ctx := context.Background()
	c := seedCompany(t, repo, testutil.TenantUser(10, 1), "ACME", "Acme")
	seedCompany(t, repo, testutil.SystemUser(1), "GLOBAL", "Global")

	ok, err := repo.Exists(ctx, testutil.Uint(1), map[string]any{"code": "acme"}, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Exists(ctx, testutil.Uint(1), map[string]any{"code": "ACME"}, c.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Exists(ctx, testutil.Uint(2), map[string]any{"code": "ACME"}, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repository.Exists(ctx, db, &model.Company{}, nil, map[string]any{"code": "GLOBAL"}, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = repo.Exists(ctx, nil, map[string]any{"nope": 1}, nil)
	assert.Error(t, err)
}

func TestRolePrivilegesPreloadAndCleanup(t *testing.T) {
	db := testutil.NewDB(t)
	roles, err := repository.New[model.Role](db, repository.WithPreload("Privileges"), repository.WithDeleteAssociations("Privileges"))
	require.NoError(t, err)
	ctx := context.Background()
	uc := testutil.TenantUser(10, 1)

	view := model.Privilege{Name: "VEHICLE_VIEW", Module: "VEHICLE", Audit: model.Audit{Active: true}}
	require.NoError(t, db.Create(&view).Error)

	role := &model.Role{Name: "Viewer", Privileges: []model.Privilege{view}, Audit: model.Audit{Active: true}}
	require.NoError(t, roles.Create(ctx, uc, role))

	found, err := roles.Find(ctx, uc, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"VEHICLE_VIEW"}, found.PrivilegeNames())

	require.NoError(t, roles.Delete(ctx, uc, found))

	var links int64
	require.NoError(t, db.Table("role_privileges").Count(&links).Error)
	assert.Zero(t, links)
}

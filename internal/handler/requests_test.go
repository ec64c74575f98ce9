package handler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masterdata-service/internal/model"
	"masterdata-service/internal/repository"
	"masterdata-service/internal/service"
	"masterdata-service/internal/testutil"
	"masterdata-service/internal/validation"
)

func newUserService(t *testing.T) *service.CRUD[model.User, *UserRequest] {
	t.Helper()
	repo, err := repository.New[model.User](testutil.NewDB(t))
	require.NoError(t, err)
	return service.NewCRUD(repo, validation.New(), nil, service.Options[*UserRequest]{
		Entity:     "user",
		NewPayload: func() *UserRequest { return &UserRequest{} },
	})
}

func TestUserRequestRules(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()
	tenantAdmin := testutil.TenantUser(1, 5)

	tests := []struct {
		name  string
		uc    bool
		req   UserRequest
		field string
	}{
		{"system type inside a tenant", true, UserRequest{LoginID: "a", Name: "A", UserType: model.UserTypeSystem, Password: "password1"}, "user_type"},
		{"tenant type without tenant", false, UserRequest{LoginID: "b", Name: "B", UserType: model.UserTypeStaff, Password: "password1"}, "user_type"},
		{"missing password", true, UserRequest{LoginID: "c", Name: "C", UserType: model.UserTypeStaff}, "password"},
		{"short password", true, UserRequest{LoginID: "d", Name: "D", UserType: model.UserTypeStaff, Password: "short"}, "password"},
		{"unknown role", true, UserRequest{LoginID: "e", Name: "E", UserType: model.UserTypeStaff, Password: "password1", RoleID: testutil.Uint(42)}, "role_id"},
		{"bad user type", true, UserRequest{LoginID: "f", Name: "F", UserType: "ROOT", Password: "password1"}, "user_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := testutil.SystemUser(1)
			if tt.uc {
				uc = tenantAdmin
			}
			req := tt.req
			_, err := svc.Create(ctx, uc, &req)
			var verrs validation.Errors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs, tt.field)
		})
	}
}

func TestUserPasswordIsHashedAndKeptOnUpdate(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()
	uc := testutil.TenantUser(1, 5)

	created, err := svc.Create(ctx, uc, &UserRequest{LoginID: "driver", Name: "Driver", UserType: model.UserTypeStaff, Password: "password1"})
	require.NoError(t, err)
	require.NotEmpty(t, created.PasswordHash)
	assert.NotEqual(t, "password1", created.PasswordHash)

	updated, err := svc.Update(ctx, uc, "1", &UserRequest{LoginID: "driver", Name: "Senior Driver", UserType: model.UserTypeStaff})
	require.NoError(t, err)
	assert.Equal(t, "Senior Driver", updated.Name)
	assert.Equal(t, created.PasswordHash, updated.PasswordHash)

	// login ids are unique across tenants
	_, err = svc.Create(ctx, testutil.TenantUser(2, 6), &UserRequest{LoginID: "DRIVER", Name: "Other", UserType: model.UserTypeStaff, Password: "password1"})
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "login_id")
}

func TestVehicleRequestDates(t *testing.T) {
	req := &VehicleRequest{RegistrationNumber: "MH12AB1234", VehicleType: "TRUCK", InsuranceExpiry: "2027-03-31"}

	vehicle, err := req.ToModel()
	require.NoError(t, err)
	require.NotNil(t, vehicle.InsuranceExpiry)
	assert.Equal(t, time.Date(2027, 3, 31, 0, 0, 0, 0, time.UTC), *vehicle.InsuranceExpiry)
	assert.Nil(t, vehicle.FitnessExpiry)
	assert.True(t, vehicle.Active)

	changes, err := req.Changes()
	require.NoError(t, err)
	assert.Equal(t, vehicle.InsuranceExpiry, changes["insurance_expiry"])
	assert.Contains(t, changes, "fitness_expiry")
	assert.Nil(t, changes["fitness_expiry"])
	assert.NotContains(t, changes, "tenant_id")

	err = validation.New().Validate(&VehicleRequest{RegistrationNumber: "X", VehicleType: "TRUCK", FitnessExpiry: "31/03/2027"})
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "fitness_expiry")
}

func TestKYCRequestChecksParty(t *testing.T) {
	db := testutil.NewDB(t)
	ctx := context.Background()
	uc := testutil.TenantUser(1, 5)

	vendors := repository.MustNew[model.Vendor](db)
	require.NoError(t, vendors.Create(ctx, uc, &model.Vendor{Code: "V1", Name: "Vendor", VendorType: model.VendorTypeFuel, Audit: model.Audit{Active: true}}))

	repo := repository.MustNew[model.KYCRecord](db)
	svc := service.NewCRUD(repo, validation.New(), nil, service.Options[*KYCRequest]{
		Entity:     "kyc record",
		NewPayload: func() *KYCRequest { return &KYCRequest{} },
	})

	rec, err := svc.Create(ctx, uc, &KYCRequest{PartyType: model.PartyTypeVendor, PartyID: 1, DocumentType: "PAN", DocumentNumber: "ABCDE1234F"})
	require.NoError(t, err)
	assert.Equal(t, model.KYCStatusPending, rec.VerificationStatus)

	// no customer 1 exists
	_, err = svc.Create(ctx, uc, &KYCRequest{PartyType: model.PartyTypeCustomer, PartyID: 1, DocumentType: "PAN", DocumentNumber: "ABCDE1234F"})
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, []string{"The selected party_id is invalid."}, verrs["party_id"])

	// the vendor is invisible from another tenant
	_, err = svc.Create(ctx, testutil.TenantUser(2, 6), &KYCRequest{PartyType: model.PartyTypeVendor, PartyID: 1, DocumentType: "PAN", DocumentNumber: "X"})
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "party_id")
}

func TestParseDate(t *testing.T) {
	day, err := parseDate("verified_at", " ")
	require.NoError(t, err)
	assert.Nil(t, day)

	_, err = parseDate("verified_at", "2027-02-30")
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, []string{"verified_at must be a date in YYYY-MM-DD format"}, verrs["verified_at"])
}

package handler

import (
	"masterdata-service/internal/model"
	"masterdata-service/internal/service"
	"masterdata-service/internal/validation"
)

// TenantRequest defines the structure for tenant creation/update requests
type TenantRequest struct {
	Code    string `json:"code" validate:"required,max=50"`
	Name    string `json:"name" validate:"required,max=150"`
	Email   string `json:"email" validate:"omitempty,email,max=100"`
	Mobile  string `json:"mobile" validate:"omitempty,max=20"`
	Address string `json:"address"`
	City    string `json:"city" validate:"omitempty,max=50"`
	State   string `json:"state" validate:"omitempty,max=50"`
	Country string `json:"country" validate:"omitempty,max=50"`
	Active  *bool  `json:"active"`
}

// ToModel builds the tenant to create
func (r *TenantRequest) ToModel() (*model.Tenant, error) {
	return &model.Tenant{
		Code:    r.Code,
		Name:    r.Name,
		Email:   r.Email,
		Mobile:  r.Mobile,
		Address: r.Address,
		City:    r.City,
		State:   r.State,
		Country: r.Country,
		Audit:   model.Audit{Active: isActive(r.Active)},
	}, nil
}

// Changes returns the columns an update writes
func (r *TenantRequest) Changes() (map[string]any, error) {
	return service.FieldChanges(r), nil
}

// Rules keeps the tenant code unique
func (r *TenantRequest) Rules() []validation.Rule {
	return []validation.Rule{
		validation.Unique("code", &model.Tenant{}, "code", r.Code),
	}
}

// PrivilegeRequest defines the structure for privilege creation/update requests
type PrivilegeRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Module      string `json:"module" validate:"required,max=50"`
	Description string `json:"description" validate:"omitempty,max=255"`
	Active      *bool  `json:"active"`
}

// ToModel builds the privilege to create
func (r *PrivilegeRequest) ToModel() (*model.Privilege, error) {
	return &model.Privilege{
		Name:        r.Name,
		Module:      r.Module,
		Description: r.Description,
		Audit:       model.Audit{Active: isActive(r.Active)},
	}, nil
}

// Changes returns the columns an update writes
func (r *PrivilegeRequest) Changes() (map[string]any, error) {
	return service.FieldChanges(r), nil
}

// Rules keeps the privilege name unique
func (r *PrivilegeRequest) Rules() []validation.Rule {
	return []validation.Rule{
		validation.Unique("name", &model.Privilege{}, "name", r.Name),
	}
}

// RoleRequest defines the structure for role creation/update requests.
// Privileges are assigned through the role privileges endpoint.
type RoleRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"omitempty,max=255"`
	Active      *bool  `json:"active"`
	TenantID    *uint  `json:"tenant_id"`
}

// ToModel builds the role to create
func (r *RoleRequest) ToModel() (*model.Role, error) {
	return &model.Role{
		Name:        r.Name,
		Description: r.Description,
		TenantScope: model.TenantScope{TenantID: r.TenantID},
		Audit:       model.Audit{Active: isActive(r.Active)},
	}, nil
}

// Changes returns the columns an update writes; the tenant never moves
func (r *RoleRequest) Changes() (map[string]any, error) {
	return service.FieldChanges(r, "tenant_id"), nil
}

// Rules keeps the role name unique within the tenant
func (r *RoleRequest) Rules() []validation.Rule {
	return []validation.Rule{
		validation.Unique("name", &model.Role{}, "name", r.Name),
	}
}

// UserRequest defines the structure for user creation/update requests.
// Password is required on create and optional on update.
type UserRequest struct {
	LoginID  string `json:"login_id" validate:"required,max=100"`
	Name     string `json:"name" validate:"required,max=150"`
	Email    string `json:"email" validate:"omitempty,email,max=100"`
	Mobile   string `json:"mobile" validate:"omitempty,max=20"`
	UserType string `json:"user_type" validate:"required,oneof=SYSTEM TENANT_ADMIN STAFF"`
	RoleID   *uint  `json:"role_id"`
	Password string `json:"password" validate:"omitempty,min=8,max=72"`
	Active   *bool  `json:"active"`
	TenantID *uint  `json:"tenant_id"`
}

// ToModel builds the user to create, hashing the password
func (r *UserRequest) ToModel() (*model.User, error) {
	user := &model.User{
		LoginID:     r.LoginID,
		Name:        r.Name,
		Email:       r.Email,
		Mobile:      r.Mobile,
		UserType:    r.UserType,
		RoleID:      r.RoleID,
		TenantScope: model.TenantScope{TenantID: r.TenantID},
		Audit:       model.Audit{Active: isActive(r.Active)},
	}
	if r.Password != "" {
		hash, err := service.HashPassword(r.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	return user, nil
}

// Changes returns the columns an update writes. A new password replaces the hash.
func (r *UserRequest) Changes() (map[string]any, error) {
	changes := service.FieldChanges(r, "tenant_id", "password")
	if r.Password != "" {
		hash, err := service.HashPassword(r.Password)
		if err != nil {
			return nil, err
		}
		changes["password_hash"] = hash
	}
	return changes, nil
}

// Rules checks the password, the user type and the role against stored data
func (r *UserRequest) Rules() []validation.Rule {
	return []validation.Rule{
		validation.Func("password", func(scope validation.Scope) string {
			if scope.ExcludeID == nil && r.Password == "" {
				return "password is required"
			}
			return ""
		}),
		validation.Func("user_type", func(scope validation.Scope) string {
			switch {
			case r.UserType == model.UserTypeSystem && scope.TenantID != nil:
				return "user_type SYSTEM is reserved for users without a tenant"
			case r.UserType != model.UserTypeSystem && scope.TenantID == nil:
				return "user_type " + r.UserType + " requires a tenant"
			}
			return ""
		}),
		validation.UniqueGlobal("login_id", &model.User{}, "login_id", r.LoginID),
		validation.Exists("role_id", &model.Role{}, "id", r.RoleID),
	}
}

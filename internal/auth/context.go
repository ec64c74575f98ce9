package auth

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"masterdata-service/pkg/jwtutil"
)

const contextKey = "user_context"

// UserContext is the identity resolved for one authenticated request.
// It is built once from token claims and never mutated afterwards.
type UserContext struct {
	UserID     uint
	TenantID   *uint
	LoginID    string
	Mobile     string
	Email      string
	UserType   string
	RoleName   string
	Privileges []string
}

// FromClaims builds a UserContext from validated token claims
func FromClaims(claims *jwtutil.UserClaims) *UserContext {
	uc := &UserContext{
		UserID:     claims.UserID,
		LoginID:    claims.LoginID,
		Mobile:     claims.Mobile,
		Email:      claims.Email,
		UserType:   claims.UserType,
		RoleName:   claims.RoleName,
		Privileges: append([]string(nil), claims.Privileges...),
	}
	if claims.TenantID != nil {
		tenantID := *claims.TenantID
		uc.TenantID = &tenantID
	}
	return uc
}

// HasTenant reports whether the user is bound to a tenant
func (uc *UserContext) HasTenant() bool {
	return uc != nil && uc.TenantID != nil
}

// IsSystem reports whether the user operates across all tenants
func (uc *UserContext) IsSystem() bool {
	return uc != nil && uc.TenantID == nil
}

// Fields returns the identifiers attached to every log line of the request
func (uc *UserContext) Fields() []zap.Field {
	if uc == nil {
		return nil
	}
	fields := []zap.Field{
		zap.Uint("user_id", uc.UserID),
		zap.String("login_id", uc.LoginID),
	}
	if uc.TenantID != nil {
		fields = append(fields, zap.Uint("tenant_id", *uc.TenantID))
	} else {
		fields = append(fields, zap.String("tenant_id", "system"))
	}
	return fields
}

// Set stores the UserContext on the echo context
func Set(c echo.Context, uc *UserContext) {
	c.Set(contextKey, uc)
}

// FromEcho returns the UserContext of the request, or nil when unauthenticated
func FromEcho(c echo.Context) *UserContext {
	uc, _ := c.Get(contextKey).(*UserContext)
	return uc
}

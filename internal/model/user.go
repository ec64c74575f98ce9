package model

import "time"

// User types
const (
	UserTypeSystem      = "SYSTEM"
	UserTypeTenantAdmin = "TENANT_ADMIN"
	UserTypeStaff       = "STAFF"
)

// User represents an account that can log in. System users have no tenant.
type User struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	LoginID      string     `json:"login_id" gorm:"type:varchar(100);uniqueIndex;not null"`
	Name         string     `json:"name" gorm:"type:varchar(150);not null"`
	Email        string     `json:"email" gorm:"type:varchar(100);index"`
	Mobile       string     `json:"mobile" gorm:"type:varchar(20)"`
	UserType     string     `json:"user_type" gorm:"type:varchar(30);not null"`
	RoleID       *uint      `json:"role_id" gorm:"index"`
	PasswordHash string     `json:"-" gorm:"type:varchar(255);not null"`
	Photo        string     `json:"photo" gorm:"type:varchar(255)"`
	LastLoginAt  *time.Time `json:"last_login_at"`
	TenantScope
	Audit
}

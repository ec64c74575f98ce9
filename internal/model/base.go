package model

import "time"

// TenantOwned is implemented by records stored in a table with a tenant_id column
type TenantOwned interface {
	GetTenantID() *uint
	SetTenantID(id *uint)
}

// Audited is implemented by records carrying created_by/updated_by columns
type Audited interface {
	SetCreatedBy(userID uint)
	SetUpdatedBy(userID uint)
}

// TenantScope is embedded by every tenant-owned model.
// A nil TenantID marks a system-global row.
type TenantScope struct {
	TenantID *uint `json:"tenant_id" gorm:"index"`
}

func (t *TenantScope) GetTenantID() *uint { return t.TenantID }

func (t *TenantScope) SetTenantID(id *uint) { t.TenantID = id }

// Audit holds the soft-disable flag and audit columns shared by all models
type Audit struct {
	Active    bool      `json:"active" gorm:"not null;index"`
	CreatedBy uint      `json:"created_by" gorm:"index"`
	UpdatedBy uint      `json:"updated_by"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"index"`
}

func (a *Audit) SetCreatedBy(userID uint) { a.CreatedBy = userID }

func (a *Audit) SetUpdatedBy(userID uint) { a.UpdatedBy = userID }

// All returns every model managed by the service, in migration order
func All() []interface{} {
	return []interface{}{
		&Tenant{},
		&Privilege{},
		&Role{},
		&User{},
		&Company{},
		&Office{},
		&Vehicle{},
		&Customer{},
		&Vendor{},
		&KYCRecord{},
	}
}

package model

// Customer is a consignor or consignee billed by the tenant
type Customer struct {
	ID            uint    `json:"id" gorm:"primaryKey"`
	Code          string  `json:"code" gorm:"type:varchar(50);index;not null"`
	Name          string  `json:"name" gorm:"type:varchar(150);not null"`
	ContactPerson string  `json:"contact_person" gorm:"type:varchar(100)"`
	Email         string  `json:"email" gorm:"type:varchar(100)"`
	Mobile        string  `json:"mobile" gorm:"type:varchar(20)"`
	GSTIN         string  `json:"gstin" gorm:"type:varchar(15)"`
	PAN           string  `json:"pan" gorm:"type:varchar(10)"`
	Address       string  `json:"address" gorm:"type:text"`
	City          string  `json:"city" gorm:"type:varchar(50)"`
	State         string  `json:"state" gorm:"type:varchar(50)"`
	Pincode       string  `json:"pincode" gorm:"type:varchar(10)"`
	CreditDays    int     `json:"credit_days" gorm:"default:0"`
	CreditLimit   float64 `json:"credit_limit" gorm:"default:0"`
	TenantScope
	Audit
}

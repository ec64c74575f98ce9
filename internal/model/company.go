package model

// Company is a legal entity operated by a tenant
type Company struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	Code      string `json:"code" gorm:"type:varchar(50);index;not null"`
	Name      string `json:"name" gorm:"type:varchar(150);not null"`
	LegalName string `json:"legal_name" gorm:"type:varchar(200)"`
	GSTIN     string `json:"gstin" gorm:"type:varchar(15)"`
	PAN       string `json:"pan" gorm:"type:varchar(10)"`
	Email     string `json:"email" gorm:"type:varchar(100)"`
	Phone     string `json:"phone" gorm:"type:varchar(20)"`
	Website   string `json:"website" gorm:"type:varchar(150)"`
	Address   string `json:"address" gorm:"type:text"`
	City      string `json:"city" gorm:"type:varchar(50)"`
	State     string `json:"state" gorm:"type:varchar(50)"`
	Country   string `json:"country" gorm:"type:varchar(50)"`
	Pincode   string `json:"pincode" gorm:"type:varchar(10)"`
	Logo      string `json:"logo" gorm:"type:varchar(255)"`
	TenantScope
	Audit
}

package model

// Office types
const (
	OfficeTypeHead   = "HEAD"
	OfficeTypeBranch = "BRANCH"
	OfficeTypeHub    = "HUB"
)

// Office is a branch, hub or head office belonging to a company
type Office struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	CompanyID  uint   `json:"company_id" gorm:"index;not null"`
	Code       string `json:"code" gorm:"type:varchar(50);index;not null"`
	Name       string `json:"name" gorm:"type:varchar(150);not null"`
	OfficeType string `json:"office_type" gorm:"type:varchar(20);not null"`
	Email      string `json:"email" gorm:"type:varchar(100)"`
	Phone      string `json:"phone" gorm:"type:varchar(20)"`
	Address    string `json:"address" gorm:"type:text"`
	City       string `json:"city" gorm:"type:varchar(50)"`
	State      string `json:"state" gorm:"type:varchar(50)"`
	Pincode    string `json:"pincode" gorm:"type:varchar(10)"`
	TenantScope
	Audit
}

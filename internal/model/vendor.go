package model

// Vendor types
const (
	VendorTypeTransporter = "TRANSPORTER"
	VendorTypeFuel        = "FUEL"
	VendorTypeMaintenance = "MAINTENANCE"
	VendorTypeOther       = "OTHER"
)

// Vendor supplies services such as market vehicles, fuel or repairs
type Vendor struct {
	ID                uint   `json:"id" gorm:"primaryKey"`
	Code              string `json:"code" gorm:"type:varchar(50);index;not null"`
	Name              string `json:"name" gorm:"type:varchar(150);not null"`
	VendorType        string `json:"vendor_type" gorm:"type:varchar(30);not null"`
	ContactPerson     string `json:"contact_person" gorm:"type:varchar(100)"`
	Email             string `json:"email" gorm:"type:varchar(100)"`
	Mobile            string `json:"mobile" gorm:"type:varchar(20)"`
	GSTIN             string `json:"gstin" gorm:"type:varchar(15)"`
	PAN               string `json:"pan" gorm:"type:varchar(10)"`
	Address           string `json:"address" gorm:"type:text"`
	City              string `json:"city" gorm:"type:varchar(50)"`
	State             string `json:"state" gorm:"type:varchar(50)"`
	Pincode           string `json:"pincode" gorm:"type:varchar(10)"`
	BankName          string `json:"bank_name" gorm:"type:varchar(100)"`
	BankAccountNumber string `json:"bank_account_number" gorm:"type:varchar(30)"`
	IFSC              string `json:"ifsc" gorm:"type:varchar(11)"`
	TenantScope
	Audit
}

package model

// Tenant represents a customer organization whose data is isolated from other tenants
type Tenant struct {
	ID      uint   `json:"id" gorm:"primaryKey"`
	Code    string `json:"code" gorm:"type:varchar(50);uniqueIndex;not null"`
	Name    string `json:"name" gorm:"type:varchar(150);not null"`
	Email   string `json:"email" gorm:"type:varchar(100)"`
	Mobile  string `json:"mobile" gorm:"type:varchar(20)"`
	Address string `json:"address" gorm:"type:text"`
	City    string `json:"city" gorm:"type:varchar(50)"`
	State   string `json:"state" gorm:"type:varchar(50)"`
	Country string `json:"country" gorm:"type:varchar(50)"`
	Logo    string `json:"logo" gorm:"type:varchar(255)"`
	Audit
}

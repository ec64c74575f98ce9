package model

// Privilege is a named permission grant. The table is system-global.
type Privilege struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"type:varchar(100);uniqueIndex;not null"`
	Module      string `json:"module" gorm:"type:varchar(50);index;not null"`
	Description string `json:"description" gorm:"type:varchar(255)"`
	Audit
}

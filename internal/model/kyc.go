package model

import "time"

// KYC party types
const (
	PartyTypeCustomer = "CUSTOMER"
	PartyTypeVendor   = "VENDOR"
)

// KYC verification states
const (
	KYCStatusPending  = "PENDING"
	KYCStatusVerified = "VERIFIED"
	KYCStatusRejected = "REJECTED"
)

// KYCRecord is an identity or tax document collected for a customer or vendor
type KYCRecord struct {
	ID                 uint       `json:"id" gorm:"primaryKey"`
	PartyType          string     `json:"party_type" gorm:"type:varchar(20);index;not null"`
	PartyID            uint       `json:"party_id" gorm:"index;not null"`
	DocumentType       string     `json:"document_type" gorm:"type:varchar(30);not null"`
	DocumentNumber     string     `json:"document_number" gorm:"type:varchar(50);not null"`
	DocumentFront      string     `json:"document_front" gorm:"type:varchar(255)"`
	DocumentBack       string     `json:"document_back" gorm:"type:varchar(255)"`
	VerificationStatus string     `json:"verification_status" gorm:"type:varchar(20);not null"`
	VerifiedAt         *time.Time `json:"verified_at"`
	Remarks            string     `json:"remarks" gorm:"type:text"`
	TenantScope
	Audit
}

func (KYCRecord) TableName() string {
	return "kyc_records"
}

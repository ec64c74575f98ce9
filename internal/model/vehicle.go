package model

import "time"

// Vehicle is a fleet vehicle, optionally attached to an office
type Vehicle struct {
	ID                 uint       `json:"id" gorm:"primaryKey"`
	OfficeID           *uint      `json:"office_id" gorm:"index"`
	RegistrationNumber string     `json:"registration_number" gorm:"type:varchar(20);index;not null"`
	VehicleType        string     `json:"vehicle_type" gorm:"type:varchar(30);not null"`
	Make               string     `json:"make" gorm:"type:varchar(50)"`
	Model              string     `json:"model" gorm:"type:varchar(50)"`
	ManufactureYear    int        `json:"manufacture_year"`
	CapacityKg         float64    `json:"capacity_kg"`
	FuelType           string     `json:"fuel_type" gorm:"type:varchar(20)"`
	ChassisNumber      string     `json:"chassis_number" gorm:"type:varchar(50)"`
	EngineNumber       string     `json:"engine_number" gorm:"type:varchar(50)"`
	InsuranceExpiry    *time.Time `json:"insurance_expiry"`
	FitnessExpiry      *time.Time `json:"fitness_expiry"`
	RCDocument         string     `json:"rc_document" gorm:"type:varchar(255)"`
	Photo              string     `json:"photo" gorm:"type:varchar(255)"`
	TenantScope
	Audit
}

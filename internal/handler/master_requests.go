package handler

import (
	"masterdata-service/internal/model"
	"masterdata-service/internal/service"
	"masterdata-service/internal/validation"
)

// CompanyRequest defines the structure for company creation/update requests
type CompanyRequest struct {
	Code      string `json:"code" validate:"required,max=50"`
	Name      string `json:"name" validate:"required,max=150"`
	LegalName string `json:"legal_name" validate:"omitempty,max=200"`
	GSTIN     string `json:"gstin" validate:"omitempty,len=15,alphanum"`
	PAN       string `json:"pan" validate:"omitempty,len=10,alphanum"`
	Email     string `json:"email" validate:"omitempty,email,max=100"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
	Website   string `json:"website" validate:"omitempty,url,max=150"`
	Address   string `json:"address"`
	City      string `json:"city" validate:"omitempty,max=50"`
	State     string `json:"state" validate:"omitempty,max=50"`
	Country   string `json:"country" validate:"omitempty,max=50"`
	Pincode   string `json:"pincode" validate:"omitempty,max=10,numeric"`
	Active    *bool  `json:"active"`
	TenantID  *uint  `json:"tenant_id"`
}

// ToModel builds the company to create
func (r *CompanyRequest) ToModel() (*model.Company, error) {
	return &model.Company{
		Code:        r.Code,
		Name:        r.Name,
		LegalName:   r.LegalName,
		GSTIN:       r.GSTIN,
		PAN:         r.PAN,
		Email:       r.Email,
		Phone:       r.Phone,
		Website:     r.Website,
		Address:     r.Address,
		City:        r.City,
		State:       r.State,
		Country:     r.Country,
		Pincode:     r.Pincode,
		TenantScope: model.TenantScope{TenantID: r.TenantID},
		Audit:       model.Audit{Active: isActive(r.Active)},
	}, nil
}

// Changes returns the columns an update writes
func (r *CompanyRequest) Changes() (map[string]any, error) {
	return service.FieldChanges(r, "tenant_id"), nil
}

// Rules keeps the company code unique within the tenant
func (r *CompanyRequest) Rules() []validation.Rule {
	return []validation.Rule{
		validation.Unique("code", &model.Company{}, "code", r.Code),
	}
}

// OfficeRequest defines the structure for office creation/update requests
type OfficeRequest struct {
	CompanyID  uint   `json:"company_id" validate:"required"`
	Code       string `json:"code" validate:"required,max=50"`
	Name       string `json:"name" validate:"required,max=150"`
	OfficeType string `json:"office_type" validate:"required,oneof=HEAD BRANCH HUB"`
	Email      string `json:"email" validate:"omitempty,email,max=100"`
	Phone      string `json:"phone" validate:"omitempty,max=20"`
	Address    string `json:"address"`
	City       string `json:"city" validate:"omitempty,max=50"`
	State      string `json:"state" validate:"omitempty,max=50"`
	Pincode    string `json:"pincode" validate:"omitempty,max=10,numeric"`
	Active     *bool  `json:"active"`
	TenantID   *uint  `json:"tenant_id"`
}

// ToModel builds the office to create
func (r *OfficeRequest) ToModel() (*model.Office, error) {
	return &model.Office{
		CompanyID:   r.CompanyID,
		Code:        r.Code,
		Name:        r.Name,
		OfficeType:  r.OfficeType,
		Email:       r.Email,
		Phone:       r.Phone,
		Address:     r.Address,
		City:        r.City,
		State:       r.State,
		Pincode:     r.Pincode,
		TenantScope: model.TenantScope{TenantID: r.TenantID},
		Audit:       model.Audit{Active: isActive(r.Active)},
	}, nil
}

// Changes returns the columns an update writes
func (r *OfficeRequest) Changes() (map[string]any, error) {
	return service.FieldChanges(r, "tenant_id"), nil
}

// Rules checks the company and keeps the office code unique
func (r *OfficeRequest) Rules() []validation.Rule {
	return []validation.Rule{
		validation.Exists("company_id", &model.Company{}, "id", r.CompanyID),
		validation.Unique("code", &model.Office{}, "code", r.Code),
	}
}

// VehicleRequest defines the structure for vehicle creation/update requests.
// Expiry dates use the YYYY-MM-DD format.
type VehicleRequest struct {
	OfficeID           *uint   `json:"office_id"`
	RegistrationNumber string  `json:"registration_number" validate:"required,max=20"`
	VehicleType        string  `json:"vehicle_type" validate:"required,max=30"`
	Make               string  `json:"make" validate:"omitempty,max=50"`
	Model              string  `json:"model" validate:"omitempty,max=50"`
	ManufactureYear    int     `json:"manufacture_year" validate:"omitempty,gte=1950,lte=2100"`
	CapacityKg         float64 `json:"capacity_kg" validate:"gte=0"`
	FuelType           string  `json:"fuel_type" validate:"omitempty,oneof=DIESEL PETROL CNG LNG ELECTRIC HYBRID"`
	ChassisNumber      string  `json:"chassis_number" validate:"omitempty,max=50"`
	EngineNumber       string  `json:"engine_number" validate:"omitempty,max=50"`
	InsuranceExpiry    string  `json:"insurance_expiry" validate:"omitempty,datetime=2006-01-02"`
	FitnessExpiry      string  `json:"fitness_expiry" validate:"omitempty,datetime=2006-01-02"`
	Active             *bool   `json:"active"`
	TenantID           *uint   `json:"tenant_id"`
}

// ToModel builds the vehicle to create
func (r *VehicleRequest) ToModel() (*model.Vehicle, error) {
	insurance, err := parseDate("insurance_expiry", r.InsuranceExpiry)
	if err != nil {
		return nil, err
	}
	fitness, err := parseDate("fitness_expiry", r.FitnessExpiry)
	if err != nil {
		return nil, err
	}
	return &model.Vehicle{
		OfficeID:           r.OfficeID,
		RegistrationNumber: r.RegistrationNumber,
		VehicleType:        r.VehicleType,
		Make:               r.Make,
		Model:              r.Model,
		ManufactureYear:    r.ManufactureYear,
		CapacityKg:         r.CapacityKg,
		FuelType:           r.FuelType,
		ChassisNumber:      r.ChassisNumber,
		EngineNumber:       r.EngineNumber,
		InsuranceExpiry:    insurance,
		FitnessExpiry:      fitness,
		TenantScope:        model.TenantScope{TenantID: r.TenantID},
		Audit:              model.Audit{Active: isActive(r.Active)},
	}, nil
}

// Changes returns the columns an update writes with the expiry dates parsed
func (r *VehicleRequest) Changes() (map[string]any, error) {
	changes := service.FieldChanges(r, "tenant_id")
	if err := setDates(changes, map[string]string{
		"insurance_expiry": r.InsuranceExpiry,
		"fitness_expiry":   r.FitnessExpiry,
	}); err != nil {
		return nil, err
	}
	return changes, nil
}

// Rules checks the office and keeps the registration number unique
func (r *VehicleRequest) Rules() []validation.Rule {
	return []validation.Rule{
		validation.Exists("office_id", &model.Office{}, "id", r.OfficeID),
		validation.Unique("registration_number", &model.Vehicle{}, "registration_number", r.RegistrationNumber),
	}
}

// CustomerRequest defines the structure for customer creation/update requests
type CustomerRequest struct {
	Code          string  `json:"code" validate:"required,max=50"`
	Name          string  `json:"name" validate:"required,max=150"`
	ContactPerson string  `json:"contact_person" validate:"omitempty,max=100"`
	Email         string  `json:"email" validate:"omitempty,email,max=100"`
	Mobile        string  `json:"mobile" validate:"omitempty,max=20"`
	GSTIN         string  `json:"gstin" validate:"omitempty,len=15,alphanum"`
	PAN           string  `json:"pan" validate:"omitempty,len=10,alphanum"`
	Address       string  `json:"address"`
	City          string  `json:"city" validate:"omitempty,max=50"`
	State         string  `json:"state" validate:"omitempty,max=50"`
	Pincode       string  `json:"pincode" validate:"omitempty,max=10,numeric"`
	CreditDays    int     `json:"credit_days" validate:"gte=0,lte=365"`
	CreditLimit   float64 `json:"credit_limit" validate:"gte=0"`
	Active        *bool   `json:"active"`
	TenantID      *uint   `json:"tenant_id"`
}

// ToModel builds the customer to create
func (r *CustomerRequest) ToModel() (*model.Customer, error) {
	return &model.Customer{
		Code:          r.Code,
		Name:          r.Name,
		ContactPerson: r.ContactPerson,
		Email:         r.Email,
		Mobile:        r.Mobile,
		GSTIN:         r.GSTIN,
		PAN:           r.PAN,
		Address:       r.Address,
		City:          r.City,
		State:         r.State,
		Pincode:       r.Pincode,
		CreditDays:    r.CreditDays,
		CreditLimit:   r.CreditLimit,
		TenantScope:   model.TenantScope{TenantID: r.TenantID},
		Audit:         model.Audit{Active: isActive(r.Active)},
	}, nil
}

// Changes returns the columns an update writes
func (r *CustomerRequest) Changes() (map[string]any, error) {
	return service.FieldChanges(r, "tenant_id"), nil
}

// Rules keeps the customer code unique within the tenant
func (r *CustomerRequest) Rules() []validation.Rule {
	return []validation.Rule{
		validation.Unique("code", &model.Customer{}, "code", r.Code),
	}
}

// VendorRequest defines the structure for vendor creation/update requests
type VendorRequest struct {
	Code              string `json:"code" validate:"required,max=50"`
	Name              string `json:"name" validate:"required,max=150"`
	VendorType        string `json:"vendor_type" validate:"required,oneof=TRANSPORTER FUEL MAINTENANCE OTHER"`
	ContactPerson     string `json:"contact_person" validate:"omitempty,max=100"`
	Email             string `json:"email" validate:"omitempty,email,max=100"`
	Mobile            string `json:"mobile" validate:"omitempty,max=20"`
	GSTIN             string `json:"gstin" validate:"omitempty,len=15,alphanum"`
	PAN               string `json:"pan" validate:"omitempty,len=10,alphanum"`
	Address           string `json:"address"`
	City              string `json:"city" validate:"omitempty,max=50"`
	State             string `json:"state" validate:"omitempty,max=50"`
	Pincode           string `json:"pincode" validate:"omitempty,max=10,numeric"`
	BankName          string `json:"bank_name" validate:"omitempty,max=100"`
	BankAccountNumber string `json:"bank_account_number" validate:"omitempty,max=30,numeric"`
	IFSC              string `json:"ifsc" validate:"omitempty,len=11,alphanum"`
	Active            *bool  `json:"active"`
	TenantID          *uint  `json:"tenant_id"`
}

// ToModel builds the vendor to create
func (r *VendorRequest) ToModel() (*model.Vendor, error) {
	return &model.Vendor{
		Code:              r.Code,
		Name:              r.Name,
		VendorType:        r.VendorType,
		ContactPerson:     r.ContactPerson,
		Email:             r.Email,
		Mobile:            r.Mobile,
		GSTIN:             r.GSTIN,
		PAN:               r.PAN,
		Address:           r.Address,
		City:              r.City,
		State:             r.State,
		Pincode:           r.Pincode,
		BankName:          r.BankName,
		BankAccountNumber: r.BankAccountNumber,
		IFSC:              r.IFSC,
		TenantScope:       model.TenantScope{TenantID: r.TenantID},
		Audit:             model.Audit{Active: isActive(r.Active)},
	}, nil
}

// Changes returns the columns an update writes
func (r *VendorRequest) Changes() (map[string]any, error) {
	return service.FieldChanges(r, "tenant_id"), nil
}

// Rules keeps the vendor code unique within the tenant
func (r *VendorRequest) Rules() []validation.Rule {
	return []validation.Rule{
		validation.Unique("code", &model.Vendor{}, "code", r.Code),
	}
}

// KYCRequest defines the structure for KYC record creation/update requests
type KYCRequest struct {
	PartyType          string `json:"party_type" validate:"required,oneof=CUSTOMER VENDOR"`
	PartyID            uint   `json:"party_id" validate:"required"`
	DocumentType       string `json:"document_type" validate:"required,oneof=PAN AADHAAR GSTIN PASSPORT DRIVING_LICENSE VOTER_ID OTHER"`
	DocumentNumber     string `json:"document_number" validate:"required,max=50"`
	VerificationStatus string `json:"verification_status" validate:"omitempty,oneof=PENDING VERIFIED REJECTED"`
	VerifiedAt         string `json:"verified_at" validate:"omitempty,datetime=2006-01-02"`
	Remarks            string `json:"remarks"`
	Active             *bool  `json:"active"`
	TenantID           *uint  `json:"tenant_id"`
}

func (r *KYCRequest) status() string {
	if r.VerificationStatus == "" {
		return model.KYCStatusPending
	}
	return r.VerificationStatus
}

// ToModel builds the KYC record to create
func (r *KYCRequest) ToModel() (*model.KYCRecord, error) {
	verified, err := parseDate("verified_at", r.VerifiedAt)
	if err != nil {
		return nil, err
	}
	return &model.KYCRecord{
		PartyType:          r.PartyType,
		PartyID:            r.PartyID,
		DocumentType:       r.DocumentType,
		DocumentNumber:     r.DocumentNumber,
		VerificationStatus: r.status(),
		VerifiedAt:         verified,
		Remarks:            r.Remarks,
		TenantScope:        model.TenantScope{TenantID: r.TenantID},
		Audit:              model.Audit{Active: isActive(r.Active)},
	}, nil
}

// Changes returns the columns an update writes
func (r *KYCRequest) Changes() (map[string]any, error) {
	changes := service.FieldChanges(r, "tenant_id")
	changes["verification_status"] = r.status()
	if err := setDates(changes, map[string]string{"verified_at": r.VerifiedAt}); err != nil {
		return nil, err
	}
	return changes, nil
}

// Rules checks that the party exists in the customer or vendor table
func (r *KYCRequest) Rules() []validation.Rule {
	var party any = &model.Customer{}
	if r.PartyType == model.PartyTypeVendor {
		party = &model.Vendor{}
	}
	return []validation.Rule{
		validation.Exists("party_id", party, "id", r.PartyID),
	}
}

// Package wire 定义远端行格式（snake_case）与领域模型（camelCase）之间的唯一映射。
// postgres repository 与 remote backend client 共用这一份转换，
// 映射必须全量且可无损往返（见 wire_test.go）。
package wire

import (
	"time"

	"relief-data/internal/domain"
)

// CenterRow rescue_centers 行格式
type CenterRow struct {
	ID                        string    `json:"id"`
	Name                      string    `json:"name"`
	Phone                     string    `json:"phone"`
	Address                   string    `json:"address"`
	Lat                       float64   `json:"lat"`
	Lng                       float64   `json:"lng"`
	TotalCapacity             int       `json:"total_capacity"`
	CurrentGuests             int       `json:"current_guests"`
	AvailableCapacity         int       `json:"available_capacity"`
	WaterLevel                int       `json:"water_level"`
	FoodLevel                 int       `json:"food_level"`
	SuppliesMedical           int       `json:"supplies_medical"`
	SuppliesBedding           int       `json:"supplies_bedding"`
	SuppliesClothing          int       `json:"supplies_clothing"`
	Facilities                []string  `json:"facilities"`
	StaffCount                int       `json:"staff_count"`
	EmergencyContactPrimary   string    `json:"emergency_contact_primary"`
	EmergencyContactSecondary string    `json:"emergency_contact_secondary,omitempty"`
	Status                    string    `json:"status"`
	CreatedAt                 time.Time `json:"created_at"`
	UpdatedAt                 time.Time `json:"updated_at"`
	LastUpdated               time.Time `json:"last_updated"`
}

// FromCenter 领域模型 -> 行格式
func FromCenter(c domain.RescueCenter) CenterRow {
	return CenterRow{
		ID:                        c.ID,
		Name:                      c.Name,
		Phone:                     c.Phone,
		Address:                   c.Address,
		Lat:                       c.Lat,
		Lng:                       c.Lng,
		TotalCapacity:             c.TotalCapacity,
		CurrentGuests:             c.CurrentGuests,
		AvailableCapacity:         c.AvailableCapacity,
		WaterLevel:                c.WaterLevel,
		FoodLevel:                 c.FoodLevel,
		SuppliesMedical:           c.Supplies.Medical,
		SuppliesBedding:           c.Supplies.Bedding,
		SuppliesClothing:          c.Supplies.Clothing,
		Facilities:                c.Facilities,
		StaffCount:                c.StaffCount,
		EmergencyContactPrimary:   c.EmergencyContacts.Primary,
		EmergencyContactSecondary: c.EmergencyContacts.Secondary,
		Status:                    c.Status,
		CreatedAt:                 c.CreatedAt,
		UpdatedAt:                 c.UpdatedAt,
		LastUpdated:               c.LastUpdated,
	}
}

// Center 行格式 -> 领域模型
func (r CenterRow) Center() domain.RescueCenter {
	return domain.RescueCenter{
		ID:      r.ID,
		Name:    r.Name,
		Phone:   r.Phone,
		Address: r.Address,
		Lat:     r.Lat,
		Lng:     r.Lng,

		TotalCapacity:     r.TotalCapacity,
		CurrentGuests:     r.CurrentGuests,
		AvailableCapacity: r.AvailableCapacity,

		WaterLevel: r.WaterLevel,
		FoodLevel:  r.FoodLevel,
		Supplies: domain.Supplies{
			Medical:  r.SuppliesMedical,
			Bedding:  r.SuppliesBedding,
			Clothing: r.SuppliesClothing,
		},

		Facilities: r.Facilities,
		StaffCount: r.StaffCount,
		EmergencyContacts: domain.EmergencyContacts{
			Primary:   r.EmergencyContactPrimary,
			Secondary: r.EmergencyContactSecondary,
		},

		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		LastUpdated: r.LastUpdated,
	}
}

// GuestRow guests 行格式
type GuestRow struct {
	ID                       string    `json:"id"`
	CenterID                 string    `json:"center_id"`
	FirstName                string    `json:"first_name"`
	MiddleName               string    `json:"middle_name,omitempty"`
	LastName                 string    `json:"last_name"`
	Gender                   string    `json:"gender"`
	DateOfBirth              string    `json:"date_of_birth,omitempty"`
	Age                      int       `json:"age,omitempty"`
	MobilePhone              string    `json:"mobile_phone"`
	AlternateMobile          string    `json:"alternate_mobile,omitempty"`
	Email                    string    `json:"email,omitempty"`
	PermanentAddress         string    `json:"permanent_address,omitempty"`
	EmergencyContactName     string    `json:"emergency_contact_name,omitempty"`
	EmergencyContactPhone    string    `json:"emergency_contact_phone,omitempty"`
	EmergencyContactRelation string    `json:"emergency_contact_relation,omitempty"`
	MedicalConditions        string    `json:"medical_conditions,omitempty"`
	CurrentMedications       string    `json:"current_medications,omitempty"`
	Allergies                string    `json:"allergies,omitempty"`
	DisabilityStatus         string    `json:"disability_status,omitempty"`
	SpecialNeeds             string    `json:"special_needs,omitempty"`
	CreatedAt                time.Time `json:"created_at"`
	UpdatedAt                time.Time `json:"updated_at"`
}

// FromGuest 领域模型 -> 行格式
func FromGuest(g domain.Guest) GuestRow {
	return GuestRow{
		ID:                       g.ID,
		CenterID:                 g.CenterID,
		FirstName:                g.FirstName,
		MiddleName:               g.MiddleName,
		LastName:                 g.LastName,
		Gender:                   g.Gender,
		DateOfBirth:              g.DateOfBirth,
		Age:                      g.Age,
		MobilePhone:              g.MobilePhone,
		AlternateMobile:          g.AlternateMobile,
		Email:                    g.Email,
		PermanentAddress:         g.PermanentAddress,
		EmergencyContactName:     g.EmergencyContactName,
		EmergencyContactPhone:    g.EmergencyContactPhone,
		EmergencyContactRelation: g.EmergencyContactRelation,
		MedicalConditions:        g.MedicalConditions,
		CurrentMedications:       g.CurrentMedications,
		Allergies:                g.Allergies,
		DisabilityStatus:         g.DisabilityStatus,
		SpecialNeeds:             g.SpecialNeeds,
		CreatedAt:                g.CreatedAt,
		UpdatedAt:                g.UpdatedAt,
	}
}

// Guest 行格式 -> 领域模型
func (r GuestRow) Guest() domain.Guest {
	return domain.Guest{
		ID:                       r.ID,
		CenterID:                 r.CenterID,
		FirstName:                r.FirstName,
		MiddleName:               r.MiddleName,
		LastName:                 r.LastName,
		Gender:                   r.Gender,
		DateOfBirth:              r.DateOfBirth,
		Age:                      r.Age,
		MobilePhone:              r.MobilePhone,
		AlternateMobile:          r.AlternateMobile,
		Email:                    r.Email,
		PermanentAddress:         r.PermanentAddress,
		EmergencyContactName:     r.EmergencyContactName,
		EmergencyContactPhone:    r.EmergencyContactPhone,
		EmergencyContactRelation: r.EmergencyContactRelation,
		MedicalConditions:        r.MedicalConditions,
		CurrentMedications:       r.CurrentMedications,
		Allergies:                r.Allergies,
		DisabilityStatus:         r.DisabilityStatus,
		SpecialNeeds:             r.SpecialNeeds,
		CreatedAt:                r.CreatedAt,
		UpdatedAt:                r.UpdatedAt,
	}
}

// FromCenters 批量转换（保持顺序）
func FromCenters(centers []domain.RescueCenter) []CenterRow {
	rows := make([]CenterRow, 0, len(centers))
	for _, c := range centers {
		rows = append(rows, FromCenter(c))
	}
	return rows
}

// Centers 批量转换（保持顺序）
func Centers(rows []CenterRow) []domain.RescueCenter {
	centers := make([]domain.RescueCenter, 0, len(rows))
	for _, r := range rows {
		centers = append(centers, r.Center())
	}
	return centers
}

// FromGuests 批量转换（保持顺序）
func FromGuests(guests []domain.Guest) []GuestRow {
	rows := make([]GuestRow, 0, len(guests))
	for _, g := range guests {
		rows = append(rows, FromGuest(g))
	}
	return rows
}

// Guests 批量转换（保持顺序）
func Guests(rows []GuestRow) []domain.Guest {
	guests := make([]domain.Guest, 0, len(rows))
	for _, r := range rows {
		guests = append(guests, r.Guest())
	}
	return guests
}

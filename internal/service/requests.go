package service

import (
	"relief-data/internal/domain"
)

// AddCenterRequest 创建中心入参（id/时间戳/派生字段由 facade 生成）
type AddCenterRequest struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone"`
	Address string  `json:"address"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`

	TotalCapacity int `json:"totalCapacity"`

	// 资源水平，零值按 100（满仓）处理
	WaterLevel *int             `json:"waterLevel,omitempty"`
	FoodLevel  *int             `json:"foodLevel,omitempty"`
	Supplies   *domain.Supplies `json:"supplies,omitempty"`

	Facilities        []string                 `json:"facilities,omitempty"`
	StaffCount        int                      `json:"staffCount,omitempty"`
	EmergencyContacts domain.EmergencyContacts `json:"emergencyContacts,omitempty"`

	// 为空默认 active；不允许直接创建为 full
	Status string `json:"status,omitempty"`
}

// UpdateCenterRequest 部分更新：nil 字段保持原值。
// 资源字段是直接覆盖而非增量；Status 不允许设为 full（full 只能由容量同步推导）。
type UpdateCenterRequest struct {
	Name    *string  `json:"name,omitempty"`
	Phone   *string  `json:"phone,omitempty"`
	Address *string  `json:"address,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`

	TotalCapacity *int `json:"totalCapacity,omitempty"`

	WaterLevel *int             `json:"waterLevel,omitempty"`
	FoodLevel  *int             `json:"foodLevel,omitempty"`
	Supplies   *domain.Supplies `json:"supplies,omitempty"`

	Facilities        *[]string                 `json:"facilities,omitempty"`
	StaffCount        *int                      `json:"staffCount,omitempty"`
	EmergencyContacts *domain.EmergencyContacts `json:"emergencyContacts,omitempty"`

	Status *string `json:"status,omitempty"`
}

func (r UpdateCenterRequest) apply(c domain.RescueCenter) domain.RescueCenter {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.Phone != nil {
		c.Phone = *r.Phone
	}
	if r.Address != nil {
		c.Address = *r.Address
	}
	if r.Lat != nil {
		c.Lat = *r.Lat
	}
	if r.Lng != nil {
		c.Lng = *r.Lng
	}
	if r.TotalCapacity != nil {
		c.TotalCapacity = *r.TotalCapacity
	}
	if r.WaterLevel != nil {
		c.WaterLevel = *r.WaterLevel
	}
	if r.FoodLevel != nil {
		c.FoodLevel = *r.FoodLevel
	}
	if r.Supplies != nil {
		c.Supplies = *r.Supplies
	}
	if r.Facilities != nil {
		c.Facilities = append([]string(nil), (*r.Facilities)...)
	}
	if r.StaffCount != nil {
		c.StaffCount = *r.StaffCount
	}
	if r.EmergencyContacts != nil {
		c.EmergencyContacts = *r.EmergencyContacts
	}
	if r.Status != nil {
		c.Status = *r.Status
	}
	return c
}

// AddGuestRequest 登记人员入参（id/时间戳由 facade 生成）。
// 个人字段的格式校验是 UI 协作方的职责；facade 只做 CenterID 引用完整性检查。
type AddGuestRequest struct {
	CenterID string `json:"centerId"`

	FirstName   string `json:"firstName"`
	MiddleName  string `json:"middleName,omitempty"`
	LastName    string `json:"lastName"`
	Gender      string `json:"gender,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Age         int    `json:"age,omitempty"`

	MobilePhone      string `json:"mobilePhone"`
	AlternateMobile  string `json:"alternateMobile,omitempty"`
	Email            string `json:"email,omitempty"`
	PermanentAddress string `json:"permanentAddress,omitempty"`

	EmergencyContactName     string `json:"emergencyContactName,omitempty"`
	EmergencyContactPhone    string `json:"emergencyContactPhone,omitempty"`
	EmergencyContactRelation string `json:"emergencyContactRelation,omitempty"`

	MedicalConditions  string `json:"medicalConditions,omitempty"`
	CurrentMedications string `json:"currentMedications,omitempty"`
	Allergies          string `json:"allergies,omitempty"`
	DisabilityStatus   string `json:"disabilityStatus,omitempty"`
	SpecialNeeds       string `json:"specialNeeds,omitempty"`
}

// UpdateGuestRequest 部分更新：nil 字段保持原值。
// CenterID 变化按转移处理（旧中心减员、新中心增员，两边都重算容量）。
type UpdateGuestRequest struct {
	CenterID *string `json:"centerId,omitempty"`

	FirstName   *string `json:"firstName,omitempty"`
	MiddleName  *string `json:"middleName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
	Age         *int    `json:"age,omitempty"`

	MobilePhone      *string `json:"mobilePhone,omitempty"`
	AlternateMobile  *string `json:"alternateMobile,omitempty"`
	Email            *string `json:"email,omitempty"`
	PermanentAddress *string `json:"permanentAddress,omitempty"`

	EmergencyContactName     *string `json:"emergencyContactName,omitempty"`
	EmergencyContactPhone    *string `json:"emergencyContactPhone,omitempty"`
	EmergencyContactRelation *string `json:"emergencyContactRelation,omitempty"`

	MedicalConditions  *string `json:"medicalConditions,omitempty"`
	CurrentMedications *string `json:"currentMedications,omitempty"`
	Allergies          *string `json:"allergies,omitempty"`
	DisabilityStatus   *string `json:"disabilityStatus,omitempty"`
	SpecialNeeds       *string `json:"specialNeeds,omitempty"`
}

func (r UpdateGuestRequest) apply(g domain.Guest) domain.Guest {
	if r.CenterID != nil {
		g.CenterID = *r.CenterID
	}
	if r.FirstName != nil {
		g.FirstName = *r.FirstName
	}
	if r.MiddleName != nil {
		g.MiddleName = *r.MiddleName
	}
	if r.LastName != nil {
		g.LastName = *r.LastName
	}
	if r.Gender != nil {
		g.Gender = *r.Gender
	}
	if r.DateOfBirth != nil {
		g.DateOfBirth = *r.DateOfBirth
	}
	if r.Age != nil {
		g.Age = *r.Age
	}
	if r.MobilePhone != nil {
		g.MobilePhone = *r.MobilePhone
	}
	if r.AlternateMobile != nil {
		g.AlternateMobile = *r.AlternateMobile
	}
	if r.Email != nil {
		g.Email = *r.Email
	}
	if r.PermanentAddress != nil {
		g.PermanentAddress = *r.PermanentAddress
	}
	if r.EmergencyContactName != nil {
		g.EmergencyContactName = *r.EmergencyContactName
	}
	if r.EmergencyContactPhone != nil {
		g.EmergencyContactPhone = *r.EmergencyContactPhone
	}
	if r.EmergencyContactRelation != nil {
		g.EmergencyContactRelation = *r.EmergencyContactRelation
	}
	if r.MedicalConditions != nil {
		g.MedicalConditions = *r.MedicalConditions
	}
	if r.CurrentMedications != nil {
		g.CurrentMedications = *r.CurrentMedications
	}
	if r.Allergies != nil {
		g.Allergies = *r.Allergies
	}
	if r.DisabilityStatus != nil {
		g.DisabilityStatus = *r.DisabilityStatus
	}
	if r.SpecialNeeds != nil {
		g.SpecialNeeds = *r.SpecialNeeds
	}
	return g
}

// DisasterStats 政府端看板聚合指标
type DisasterStats struct {
	TotalCenters    int     `json:"totalCenters"`
	TotalCapacity   int     `json:"totalCapacity"`
	TotalOccupancy  int     `json:"totalOccupancy"`
	AvailableSpace  int     `json:"availableSpace"`
	CriticalCenters int     `json:"criticalCenters"`
	RecentlyUpdated int     `json:"recentlyUpdated"`
	OccupancyRate   float64 `json:"occupancyRate"`
}

// SyncStatus 离线标记与 last_sync 指示（UI 展示 "last synced at" 用）
type SyncStatus struct {
	Offline         bool   `json:"offline"`
	LastSync        string `json:"lastSync,omitempty"`        // RFC3339，零值省略
	LastRefreshTry  string `json:"lastRefreshTry,omitempty"`  // 最近一次 refresh 尝试
}

package domain

import (
	"time"
)

// 中心状态（active/inactive/full/maintenance）
// full 由容量同步推导，不允许普通更新直接设置
const (
	CenterStatusActive      = "active"
	CenterStatusInactive    = "inactive"
	CenterStatusFull        = "full"
	CenterStatusMaintenance = "maintenance"
)

// Supplies 物资存量（0-100）
type Supplies struct {
	Medical  int `json:"medical"`
	Bedding  int `json:"bedding"`
	Clothing int `json:"clothing"`
}

// EmergencyContacts 中心应急联系方式
type EmergencyContacts struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary,omitempty"`
}

// RescueCenter 救援中心领域模型（对应 rescue_centers 表）
// CurrentGuests / AvailableCapacity / Status=full 均为派生字段，
// 只能经由 SyncCapacity 重算，禁止调用方自行维护
type RescueCenter struct {
	// 主键（如 "RC001"）
	ID string `json:"id"`

	// 基本信息
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`

	// 位置
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`

	// 容量
	TotalCapacity     int `json:"totalCapacity"`     // >= 1
	CurrentGuests     int `json:"currentGuests"`     // 派生：在住人数
	AvailableCapacity int `json:"availableCapacity"` // 派生：TotalCapacity - CurrentGuests

	// 资源水平（0-100）
	WaterLevel int      `json:"waterLevel"`
	FoodLevel  int      `json:"foodLevel"`
	Supplies   Supplies `json:"supplies"`

	// 设施与人员
	Facilities        []string          `json:"facilities"`
	StaffCount        int               `json:"staffCount"`
	EmergencyContacts EmergencyContacts `json:"emergencyContacts"`

	// 状态
	Status string `json:"status"`

	// 时间戳
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// HasCriticalResource 任一资源字段低于阈值即视为告急（government dashboard 的 "critical" 统计口径）
func (c *RescueCenter) HasCriticalResource(threshold int) bool {
	return c.WaterLevel < threshold ||
		c.FoodLevel < threshold ||
		c.Supplies.Medical < threshold ||
		c.Supplies.Bedding < threshold ||
		c.Supplies.Clothing < threshold
}

package domain

import (
	"strings"
	"time"
)

// Guest 避灾登记人员领域模型（对应 guests 表）
// CenterID 外键指向 RescueCenter，创建/删除/转移都必须触发所属中心的容量重算
type Guest struct {
	// 主键（时间戳+随机 token 生成，全局唯一）
	ID string `json:"id"`

	// 外键
	CenterID string `json:"centerId"`

	// 个人信息
	FirstName   string `json:"firstName"`
	MiddleName  string `json:"middleName,omitempty"`
	LastName    string `json:"lastName"`
	Gender      string `json:"gender"`
	DateOfBirth string `json:"dateOfBirth,omitempty"` // "2006-01-02"
	Age         int    `json:"age,omitempty"`

	// 联系方式
	MobilePhone      string `json:"mobilePhone"` // 必填，10 位
	AlternateMobile  string `json:"alternateMobile,omitempty"`
	Email            string `json:"email,omitempty"`
	PermanentAddress string `json:"permanentAddress,omitempty"`

	// 紧急联系人
	EmergencyContactName     string `json:"emergencyContactName,omitempty"`
	EmergencyContactPhone    string `json:"emergencyContactPhone,omitempty"`
	EmergencyContactRelation string `json:"emergencyContactRelation,omitempty"`

	// 医疗信息
	MedicalConditions  string `json:"medicalConditions,omitempty"`
	CurrentMedications string `json:"currentMedications,omitempty"`
	Allergies          string `json:"allergies,omitempty"`
	DisabilityStatus   string `json:"disabilityStatus,omitempty"`
	SpecialNeeds       string `json:"specialNeeds,omitempty"`

	// 时间戳
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FullName 展示用姓名（跳过空的 middle name）
func (g *Guest) FullName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{g.FirstName, g.MiddleName, g.LastName} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// Matches 大小写不敏感的子串匹配：姓名、手机号、邮箱、ID
// query 为空时恒为 true
func (g *Guest) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	for _, field := range []string{
		g.FullName(),
		g.MobilePhone,
		g.AlternateMobile,
		g.Email,
		g.ID,
	} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}

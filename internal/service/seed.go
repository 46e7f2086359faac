package service

import (
	"time"

	"relief-data/internal/domain"
)

// seedCenters 内置种子中心：所有后端层与缓存都为空时装填，
// 保证首次离线启动时看板不是一片空白
func seedCenters() []domain.RescueCenter {
	now := time.Now().UTC()
	base := func(id, name, phone, address string, lat, lng float64, capacity, staff int, facilities []string, primary string) domain.RescueCenter {
		return domain.RescueCenter{
			ID:                id,
			Name:              name,
			Phone:             phone,
			Address:           address,
			Lat:               lat,
			Lng:               lng,
			TotalCapacity:     capacity,
			CurrentGuests:     0,
			AvailableCapacity: capacity,
			WaterLevel:        100,
			FoodLevel:         100,
			Supplies:          domain.Supplies{Medical: 100, Bedding: 100, Clothing: 100},
			Facilities:        facilities,
			StaffCount:        staff,
			EmergencyContacts: domain.EmergencyContacts{Primary: primary},
			Status:            domain.CenterStatusActive,
			CreatedAt:         now,
			UpdatedAt:         now,
			LastUpdated:       now,
		}
	}

	return []domain.RescueCenter{
		base("RC001", "Govt. Model School Relief Camp", "0471-2512345",
			"Pattom, Thiruvananthapuram", 8.5241, 76.9366, 250, 12,
			[]string{"kitchen", "medical-room", "generator", "drinking-water"}, "9847010001"),
		base("RC002", "St. Mary's Community Hall", "0484-2623456",
			"Kaloor, Ernakulam", 9.9816, 76.2999, 150, 8,
			[]string{"kitchen", "drinking-water"}, "9847010002"),
		base("RC003", "District Sports Complex Shelter", "0495-2734567",
			"Mananchira, Kozhikode", 11.2588, 75.7804, 400, 20,
			[]string{"kitchen", "medical-room", "generator", "sanitation-block"}, "9847010003"),
	}
}

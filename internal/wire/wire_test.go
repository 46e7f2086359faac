package wire

import (
	"encoding/json"
	"testing"
	"time"

	"relief-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullCenter() domain.RescueCenter {
	now := time.Date(2026, 8, 20, 10, 30, 0, 0, time.UTC)
	return domain.RescueCenter{
		ID:                "RC042",
		Name:              "Govt. Higher Secondary School Shelter",
		Phone:             "0471-2345678",
		Address:           "MG Road, Thiruvananthapuram",
		Lat:               8.5241,
		Lng:               76.9366,
		TotalCapacity:     250,
		CurrentGuests:     112,
		AvailableCapacity: 138,
		WaterLevel:        65,
		FoodLevel:         48,
		Supplies:          domain.Supplies{Medical: 70, Bedding: 55, Clothing: 40},
		Facilities:        []string{"kitchen", "medical-room", "generator"},
		StaffCount:        14,
		EmergencyContacts: domain.EmergencyContacts{Primary: "9847012345", Secondary: "9847054321"},
		Status:            domain.CenterStatusActive,
		CreatedAt:         now.Add(-72 * time.Hour),
		UpdatedAt:         now,
		LastUpdated:       now,
	}
}

func fullGuest() domain.Guest {
	now := time.Date(2026, 8, 21, 8, 0, 0, 0, time.UTC)
	return domain.Guest{
		ID:                       "G-1755763200000-a1b2c3d4",
		CenterID:                 "RC042",
		FirstName:                "Ravi",
		MiddleName:               "Chandran",
		LastName:                 "Kumar",
		Gender:                   "male",
		DateOfBirth:              "1984-03-11",
		Age:                      42,
		MobilePhone:              "9801234567",
		AlternateMobile:          "9809876543",
		Email:                    "ravi.kumar@example.com",
		PermanentAddress:         "12/3 Beach Road, Kollam",
		EmergencyContactName:     "Lakshmi Kumar",
		EmergencyContactPhone:    "9847098765",
		EmergencyContactRelation: "spouse",
		MedicalConditions:        "diabetes",
		CurrentMedications:       "metformin",
		Allergies:                "penicillin",
		DisabilityStatus:         "none",
		SpecialNeeds:             "wheelchair access",
		CreatedAt:                now,
		UpdatedAt:                now,
	}
}

// TestCenterRoundTrip 所有字段填满时映射可无损往返
func TestCenterRoundTrip(t *testing.T) {
	c := fullCenter()
	got := FromCenter(c).Center()
	assert.Equal(t, c, got)
}

func TestGuestRoundTrip(t *testing.T) {
	g := fullGuest()
	got := FromGuest(g).Guest()
	assert.Equal(t, g, got)
}

// TestCenterRowJSONIsSnakeCase 行格式序列化必须是 snake_case（远端契约）
func TestCenterRowJSONIsSnakeCase(t *testing.T) {
	raw, err := json.Marshal(FromCenter(fullCenter()))
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))

	for _, key := range []string{
		"total_capacity", "current_guests", "available_capacity",
		"water_level", "food_level",
		"supplies_medical", "supplies_bedding", "supplies_clothing",
		"staff_count", "emergency_contact_primary", "created_at", "last_updated",
	} {
		assert.Contains(t, m, key)
	}
	assert.NotContains(t, m, "totalCapacity")
}

func TestGuestRowJSONRoundTripThroughWire(t *testing.T) {
	g := fullGuest()
	raw, err := json.Marshal(FromGuest(g))
	require.NoError(t, err)

	var row GuestRow
	require.NoError(t, json.Unmarshal(raw, &row))
	assert.Equal(t, g, row.Guest())
}

func TestBatchConversionsKeepOrder(t *testing.T) {
	centers := []domain.RescueCenter{fullCenter(), {ID: "RC043", Status: domain.CenterStatusInactive}}
	rows := FromCenters(centers)
	require.Len(t, rows, 2)
	assert.Equal(t, "RC042", rows[0].ID)
	assert.Equal(t, "RC043", rows[1].ID)
	assert.Equal(t, centers, Centers(rows))
}

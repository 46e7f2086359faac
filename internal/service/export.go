package service

import (
	"context"
	"fmt"
	"strconv"

	"relief-data/internal/domain"

	"github.com/xuri/excelize/v2"
)

// CenterExportHeader 中心占用汇总表头
var CenterExportHeader = []string{
	"Center ID",
	"Name",
	"Address",
	"Status",
	"Total Capacity",
	"Current Guests",
	"Available Capacity",
	"Water Level",
	"Food Level",
	"Medical",
	"Bedding",
	"Clothing",
	"Staff Count",
	"Last Updated",
}

// GuestExportHeader 人员名册表头
var GuestExportHeader = []string{
	"Guest ID",
	"Center ID",
	"Name",
	"Gender",
	"Age",
	"Mobile Phone",
	"Email",
	"Emergency Contact",
	"Emergency Phone",
	"Medical Conditions",
	"Special Needs",
	"Registered At",
}

// ExportRoster 导出政府上报用的 xlsx：Sheet "Centers"（占用汇总）+ Sheet "Guests"（名册）
func (s *ReliefService) ExportRoster(ctx context.Context) ([]byte, error) {
	centers, guests := s.mem.Snapshot()

	f := excelize.NewFile()
	// Note: WriteTo 之前不能 Close

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeCenterSheet(f, headerStyle, centers); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeGuestSheet(f, headerStyle, guests); err != nil {
		f.Close()
		return nil, err
	}
	f.DeleteSheet("Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	_ = f.Close()
	return buf.Bytes(), nil
}

func writeCenterSheet(f *excelize.File, headerStyle int, centers []domain.RescueCenter) error {
	const sheet = "Centers"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}
	f.SetActiveSheet(index)

	for col, h := range CenterExportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(CenterExportHeader), 1)
	_ = f.SetCellStyle(sheet, "A1", last, headerStyle)

	for i, c := range centers {
		row := strconv.Itoa(i + 2)
		values := []any{
			c.ID, c.Name, c.Address, c.Status,
			c.TotalCapacity, c.CurrentGuests, c.AvailableCapacity,
			c.WaterLevel, c.FoodLevel,
			c.Supplies.Medical, c.Supplies.Bedding, c.Supplies.Clothing,
			c.StaffCount,
			c.LastUpdated.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write center row %s: %w", row, err)
			}
		}
	}
	return nil
}

func writeGuestSheet(f *excelize.File, headerStyle int, guests []domain.Guest) error {
	const sheet = "Guests"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", sheet, err)
	}

	for col, h := range GuestExportHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(GuestExportHeader), 1)
	_ = f.SetCellStyle(sheet, "A1", last, headerStyle)

	for i, g := range guests {
		values := []any{
			g.ID, g.CenterID, g.FullName(), g.Gender, g.Age,
			g.MobilePhone, g.Email,
			g.EmergencyContactName, g.EmergencyContactPhone,
			g.MedicalConditions, g.SpecialNeeds,
			g.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("failed to write guest row %d: %w", i+2, err)
			}
		}
	}
	return nil
}

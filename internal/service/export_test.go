package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportRoster(t *testing.T) {
	svc := newTestService(t, "")
	ctx := context.Background()

	c := addCenter(t, svc, "Export Camp", 40)
	addGuest(t, svc, c.ID, "Ravi", "9801234567")
	addGuest(t, svc, c.ID, "Meera", "9802345678")

	data, err := svc.ExportRoster(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Centers", "Guests"}, f.GetSheetList())

	centerRows, err := f.GetRows("Centers")
	require.NoError(t, err)
	require.Len(t, centerRows, 2) // 表头 + 1 中心
	assert.Equal(t, CenterExportHeader, centerRows[0][:len(CenterExportHeader)])
	assert.Equal(t, c.ID, centerRows[1][0])
	assert.Equal(t, "Export Camp", centerRows[1][1])
	assert.Equal(t, "2", centerRows[1][5]) // Current Guests

	guestRows, err := f.GetRows("Guests")
	require.NoError(t, err)
	require.Len(t, guestRows, 3) // 表头 + 2 人员
	assert.Equal(t, GuestExportHeader, guestRows[0][:len(GuestExportHeader)])
}

func TestExportRoster_EmptyStateStillValidWorkbook(t *testing.T) {
	svc := newTestService(t, "")

	data, err := svc.ExportRoster(context.Background())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Centers")
	require.NoError(t, err)
	require.Len(t, rows, 1) // 只有表头
}

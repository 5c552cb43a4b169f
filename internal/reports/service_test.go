package reports

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bedtex/dispatch-backend/internal/reconciliation"
	"github.com/bedtex/dispatch-backend/pkg/enums"
)

type stubLister struct {
	rows []reconciliation.SurplusDeficitRow
	err  error
}

func (s *stubLister) ListSurplusDeficit(ctx context.Context, input reconciliation.ListSurplusDeficitInput) ([]reconciliation.SurplusDeficitRow, error) {
	return s.rows, s.err
}

func TestSurplusDeficitWorkbook(t *testing.T) {
	size := "1m6x2m"
	rows := []reconciliation.SurplusDeficitRow{
		{
			OrderID:       uuid.New(),
			ItemID:        uuid.New(),
			Stt:           1,
			ProductName:   "Chan bong hoa tiet",
			Size:          &size,
			Unit:          "cai",
			Warehouse:     enums.WarehouseK01,
			Quantity:      decimal.NewFromInt(10),
			ConfirmedQty:  decimal.NewFromInt(7),
			Deficit:       decimal.NewFromInt(-3),
			OrderDate:     time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
			CustomerName:  "Nha May Det A",
			CreatedByName: "dispatcher-01",
		},
		{
			OrderID:       uuid.New(),
			ItemID:        uuid.New(),
			Stt:           2,
			ProductName:   "Ga chun trang",
			Unit:          "bo",
			Warehouse:     enums.WarehouseK02,
			Quantity:      decimal.NewFromInt(5),
			ConfirmedQty:  decimal.NewFromInt(7),
			Deficit:       decimal.NewFromInt(2),
			OrderDate:     time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
			CustomerName:  "Nha May Det A",
			CreatedByName: "dispatcher-01",
		},
	}

	svc, err := NewService(&stubLister{rows: rows})
	require.NoError(t, err)

	from := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	wb, err := svc.SurplusDeficitWorkbook(context.Background(), reconciliation.ListSurplusDeficitInput{
		Filters: reconciliation.RangeFilters{From: from, To: from},
	})
	require.NoError(t, err)
	assert.Equal(t, "thua-thieu_2026-03-12_2026-03-12.xlsx", wb.Filename)
	require.NotEmpty(t, wb.Content)

	f, err := excelize.OpenReader(bytes.NewReader(wb.Content))
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	require.Equal(t, []string{"Thua Thieu"}, sheets)

	got, err := f.GetRows("Thua Thieu")
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "San pham", got[0][3])
	assert.Equal(t, "Chan bong hoa tiet", got[1][3])
	assert.Equal(t, "K01", got[1][6])
	assert.Equal(t, "-3", got[1][9])
	assert.Equal(t, "2", got[2][9])
}

func TestSurplusDeficitWorkbook_emptyRange(t *testing.T) {
	svc, err := NewService(&stubLister{})
	require.NoError(t, err)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	wb, err := svc.SurplusDeficitWorkbook(context.Background(), reconciliation.ListSurplusDeficitInput{
		Filters: reconciliation.RangeFilters{From: from, To: from},
	})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(wb.Content))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows("Thua Thieu")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

package reports

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/bedtex/dispatch-backend/internal/reconciliation"
	pkgerrors "github.com/bedtex/dispatch-backend/pkg/errors"
)

const surplusDeficitSheet = "Thua Thieu"

// Service renders dispatch data as downloadable XLSX workbooks.
type Service interface {
	SurplusDeficitWorkbook(ctx context.Context, input reconciliation.ListSurplusDeficitInput) (*Workbook, error)
}

// Workbook is a rendered export ready to stream to the client.
type Workbook struct {
	Filename string
	Content  []byte
}

type surplusDeficitLister interface {
	ListSurplusDeficit(ctx context.Context, input reconciliation.ListSurplusDeficitInput) ([]reconciliation.SurplusDeficitRow, error)
}

type service struct {
	reconciliation surplusDeficitLister
}

func NewService(recon surplusDeficitLister) (Service, error) {
	if recon == nil {
		return nil, fmt.Errorf("reconciliation service required")
	}
	return &service{reconciliation: recon}, nil
}

// SurplusDeficitWorkbook exports the surplus/deficit listing for the requested
// range as a single-sheet workbook. Row order matches the on-screen listing.
func (s *service) SurplusDeficitWorkbook(ctx context.Context, input reconciliation.ListSurplusDeficitInput) (*Workbook, error) {
	rows, err := s.reconciliation.ListSurplusDeficit(ctx, input)
	if err != nil {
		return nil, err
	}

	content, err := renderSurplusDeficit(rows)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render workbook")
	}

	name := fmt.Sprintf("thua-thieu_%s_%s.xlsx",
		input.Filters.From.Format("2006-01-02"),
		input.Filters.To.Format("2006-01-02"))
	return &Workbook{Filename: name, Content: content}, nil
}

var surplusDeficitHeader = []string{
	"STT", "Ngay", "Khach hang", "San pham", "Kich thuoc", "DVT",
	"Kho", "SL dat", "SL xuat", "Chenh lech", "Nguoi tao",
}

func renderSurplusDeficit(rows []reconciliation.SurplusDeficitRow) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", surplusDeficitSheet); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	deficitStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "CC0000"},
	})
	if err != nil {
		return nil, err
	}

	for col, title := range surplusDeficitHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(surplusDeficitSheet, cell, title); err != nil {
			return nil, err
		}
	}
	lastHeaderCell, _ := excelize.CoordinatesToCellName(len(surplusDeficitHeader), 1)
	if err := f.SetCellStyle(surplusDeficitSheet, "A1", lastHeaderCell, headerStyle); err != nil {
		return nil, err
	}

	for i, row := range rows {
		r := i + 2
		size := ""
		if row.Size != nil {
			size = *row.Size
		}
		values := []any{
			i + 1,
			row.OrderDate.Format("02/01/2006"),
			row.CustomerName,
			row.ProductName,
			size,
			row.Unit,
			string(row.Warehouse),
			row.Quantity.InexactFloat64(),
			row.ConfirmedQty.InexactFloat64(),
			row.Deficit.InexactFloat64(),
			row.CreatedByName,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, r)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(surplusDeficitSheet, cell, v); err != nil {
				return nil, err
			}
		}
		if row.Deficit.IsNegative() {
			cell, _ := excelize.CoordinatesToCellName(10, r)
			if err := f.SetCellStyle(surplusDeficitSheet, cell, cell, deficitStyle); err != nil {
				return nil, err
			}
		}
	}

	if err := f.SetColWidth(surplusDeficitSheet, "B", "D", 22); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ContentTypeXLSX is the MIME type for generated workbooks.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

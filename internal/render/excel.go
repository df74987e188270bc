package render

import (
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/eggspire/monitor/internal/domain/models"
)

const sheetName = "Report"

// ExcelRenderer writes XLSX reports with a styled header row and proper
// percentage number formats so the values stay sortable in a spreadsheet.
type ExcelRenderer struct {
	Dir string
}

// Render implements the Renderer contract.
func (r *ExcelRenderer) Render(doc *models.ReportDocument) (*models.GeneratedFile, error) {
	path, name, err := outputPath(r.Dir, doc, models.FormatExcel.Extension())
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := r.writeHeaderBlock(f, doc); err != nil {
		return nil, err
	}

	if doc.IsSentinel() {
		if err := r.writeNoDataNotice(f); err != nil {
			return nil, err
		}
	} else if err := r.writeTable(f, doc); err != nil {
		return nil, err
	}

	if err := f.SaveAs(path); err != nil {
		// SaveAs may leave a half-written archive behind.
		_ = os.Remove(path)
		return nil, fmt.Errorf("write xlsx: %w", err)
	}

	return describe(path, name)
}

func (r *ExcelRenderer) writeHeaderBlock(f *excelize.File, doc *models.ReportDocument) error {
	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 16},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("title style: %w", err)
	}
	subtitleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("subtitle style: %w", err)
	}

	if err := f.MergeCell(sheetName, "A1", "D1"); err != nil {
		return fmt.Errorf("merge title: %w", err)
	}
	if err := f.MergeCell(sheetName, "A2", "D2"); err != nil {
		return fmt.Errorf("merge subtitle: %w", err)
	}

	_ = f.SetCellValue(sheetName, "A1", models.AppName)
	_ = f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	_ = f.SetCellValue(sheetName, "A2", doc.Type.DisplayName())
	_ = f.SetCellStyle(sheetName, "A2", "A2", subtitleStyle)
	_ = f.SetCellValue(sheetName, "A3", "Periode: "+models.PeriodDisplay(doc.Period, doc.Dates))
	_ = f.SetCellValue(sheetName, "A4", "Tanggal Generate: "+displayDate(doc.GeneratedAt))

	return nil
}

func (r *ExcelRenderer) writeNoDataNotice(f *excelize.File) error {
	noticeStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Italic: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("notice style: %w", err)
	}
	if err := f.MergeCell(sheetName, "A6", "D6"); err != nil {
		return fmt.Errorf("merge notice: %w", err)
	}
	_ = f.SetCellValue(sheetName, "A6", noDataNotice)
	_ = f.SetCellStyle(sheetName, "A6", "A6", noticeStyle)
	return nil
}

func (r *ExcelRenderer) writeTable(f *excelize.File, doc *models.ReportDocument) error {
	var headers []string
	switch doc.Type {
	case models.ReportEggQuality:
		headers = qualityHeaders()
	case models.ReportProductionStats:
		headers = productionHeadersWide()
	case models.ReportActivityLog:
		headers = activityHeaders()
	}

	const headerRowIdx = 6
	if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", headerRowIdx), &headers); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}
	if err := r.styleHeaderRow(f, headerRowIdx, len(headers)); err != nil {
		return err
	}

	row := headerRowIdx + 1
	switch doc.Type {
	case models.ReportEggQuality:
		for i, item := range doc.Quality {
			values := []any{i + 1, item.EggCode, item.Quality, displayDateTime(item.ScannedAt)}
			if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", row), &values); err != nil {
				return fmt.Errorf("write data row: %w", err)
			}
			row++
		}

	case models.ReportProductionStats:
		percentStyle, err := f.NewStyle(&excelize.Style{NumFmt: 10}) // 0.00%
		if err != nil {
			return fmt.Errorf("percent style: %w", err)
		}
		for _, item := range doc.Production {
			var goodPct, badPct float64
			if item.TotalEggs > 0 {
				goodPct = float64(item.GoodEggs) / float64(item.TotalEggs)
				badPct = float64(item.BadEggs) / float64(item.TotalEggs)
			}
			first, last := "-", "-"
			if item.FirstScan != nil {
				first = displayDateTime(*item.FirstScan)
			}
			if item.LastScan != nil {
				last = displayDateTime(*item.LastScan)
			}
			values := []any{displayDate(item.Date), item.TotalEggs, item.GoodEggs, goodPct, item.BadEggs, badPct, first, last}
			if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", row), &values); err != nil {
				return fmt.Errorf("write data row: %w", err)
			}
			_ = f.SetCellStyle(sheetName, fmt.Sprintf("D%d", row), fmt.Sprintf("D%d", row), percentStyle)
			_ = f.SetCellStyle(sheetName, fmt.Sprintf("F%d", row), fmt.Sprintf("F%d", row), percentStyle)
			row++
		}

	case models.ReportActivityLog:
		for _, item := range doc.Activity {
			values := []any{displayDateTime(item.Timestamp), item.Action, item.Actor, item.Details}
			if err := f.SetSheetRow(sheetName, fmt.Sprintf("A%d", row), &values); err != nil {
				return fmt.Errorf("write data row: %w", err)
			}
			row++
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return fmt.Errorf("column name: %w", err)
	}
	_ = f.SetColWidth(sheetName, "A", lastCol, 20)
	return nil
}

func (r *ExcelRenderer) styleHeaderRow(f *excelize.File, rowIdx, cols int) error {
	thin := excelize.Border{Style: 1, Color: "000000"}
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"E0E0E0"}},
		Border: []excelize.Border{
			{Type: "top", Style: thin.Style, Color: thin.Color},
			{Type: "left", Style: thin.Style, Color: thin.Color},
			{Type: "bottom", Style: thin.Style, Color: thin.Color},
			{Type: "right", Style: thin.Style, Color: thin.Color},
		},
	})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	lastCol, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return fmt.Errorf("column name: %w", err)
	}
	return f.SetCellStyle(sheetName,
		fmt.Sprintf("A%d", rowIdx), fmt.Sprintf("%s%d", lastCol, rowIdx), headerStyle)
}

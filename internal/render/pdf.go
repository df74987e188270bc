package render

import (
	"fmt"
	"os"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/eggspire/monitor/internal/domain/models"
)

// PDFRenderer writes paginated PDF reports. Per-scan tables are capped at
// pdfRowCap displayed rows with a footnote carrying the real total.
type PDFRenderer struct {
	Dir string
}

// Render implements the Renderer contract.
func (r *PDFRenderer) Render(doc *models.ReportDocument) (*models.GeneratedFile, error) {
	path, name, err := outputPath(r.Dir, doc, models.FormatPDF.Extension())
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Halaman %d dari {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	// Header block.
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, models.AppName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 9, doc.Type.DisplayName(), "", 1, "C", false, 0, "")
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 7, "Periode: "+models.PeriodDisplay(doc.Period, doc.Dates), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Tanggal Generate: "+displayDate(doc.GeneratedAt), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	x, y := pdf.GetXY()
	pageW, _ := pdf.GetPageSize()
	pdf.Line(x, y, pageW-10, y)
	pdf.Ln(5)

	if doc.IsSentinel() {
		pdf.SetFont("Helvetica", "", 14)
		pdf.CellFormat(0, 10, noDataNotice, "", 1, "C", false, 0, "")
	} else {
		r.writeTable(pdf, doc)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		// A partially written file may exist; the caller removes it, but
		// try here as well so errors do not rely on one cleanup site.
		_ = os.Remove(path)
		return nil, fmt.Errorf("write pdf: %w", err)
	}

	return describe(path, name)
}

func (r *PDFRenderer) writeTable(pdf *gofpdf.Fpdf, doc *models.ReportDocument) {
	switch doc.Type {
	case models.ReportEggQuality:
		widths := []float64{15, 60, 40, 75}
		r.headerRow(pdf, qualityHeaders(), widths)

		rows := doc.Quality
		capped := false
		if len(rows) > pdfRowCap {
			rows = rows[:pdfRowCap]
			capped = true
		}

		pdf.SetFont("Helvetica", "", 10)
		for i, row := range rows {
			pdf.CellFormat(widths[0], 7, strconv.Itoa(i+1), "", 0, "C", false, 0, "")
			pdf.CellFormat(widths[1], 7, row.EggCode, "", 0, "L", false, 0, "")
			pdf.CellFormat(widths[2], 7, row.Quality, "", 0, "C", false, 0, "")
			pdf.CellFormat(widths[3], 7, displayDateTime(row.ScannedAt), "", 1, "L", false, 0, "")
		}

		if capped {
			pdf.Ln(5)
			pdf.SetFont("Helvetica", "I", 10)
			pdf.CellFormat(0, 7,
				fmt.Sprintf("* Hanya menampilkan %d dari total %d data.", len(rows), len(doc.Quality)),
				"", 1, "C", false, 0, "")
		}

	case models.ReportProductionStats:
		headers := []string{"Tanggal", "Total", "Kualitas Baik", "Kualitas Buruk", "Rentang Waktu"}
		widths := []float64{40, 25, 40, 40, 45}
		r.headerRow(pdf, headers, widths)

		pdf.SetFont("Helvetica", "", 10)
		for _, row := range doc.Production {
			good := fmt.Sprintf("%d (%s)", row.GoodEggs, percentOf(row.GoodEggs, row.TotalEggs))
			bad := fmt.Sprintf("%d (%s)", row.BadEggs, percentOf(row.BadEggs, row.TotalEggs))
			pdf.CellFormat(widths[0], 7, displayDate(row.Date), "", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], 7, strconv.Itoa(row.TotalEggs), "", 0, "C", false, 0, "")
			pdf.CellFormat(widths[2], 7, good, "", 0, "C", false, 0, "")
			pdf.CellFormat(widths[3], 7, bad, "", 0, "C", false, 0, "")
			pdf.CellFormat(widths[4], 7, timeRange(row), "", 1, "C", false, 0, "")
		}

	case models.ReportActivityLog:
		widths := []float64{45, 40, 35, 70}
		r.headerRow(pdf, activityHeaders(), widths)

		pdf.SetFont("Helvetica", "", 10)
		for _, row := range doc.Activity {
			pdf.CellFormat(widths[0], 7, displayDateTime(row.Timestamp), "", 0, "L", false, 0, "")
			pdf.CellFormat(widths[1], 7, row.Action, "", 0, "L", false, 0, "")
			pdf.CellFormat(widths[2], 7, row.Actor, "", 0, "L", false, 0, "")
			pdf.CellFormat(widths[3], 7, row.Details, "", 1, "L", false, 0, "")
		}
	}
}

func (r *PDFRenderer) headerRow(pdf *gofpdf.Fpdf, headers []string, widths []float64) {
	pdf.SetFont("Helvetica", "B", 10)
	for i, header := range headers {
		last := 0
		if i == len(headers)-1 {
			last = 1
		}
		pdf.CellFormat(widths[i], 8, header, "", last, "C", false, 0, "")
	}
}

// Package render turns resolved report documents into downloadable files.
// Each format implements the same contract over the shared tabular model;
// callers own the produced file and are expected to delete it after
// streaming.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/eggspire/monitor/internal/domain/models"
)

// noDataNotice is printed instead of a table when the document carries
// only the sentinel row.
const noDataNotice = "Tidak ada data untuk periode yang dipilih"

// pdfRowCap bounds how many per-scan rows a PDF displays. The full count
// is still reported in a footnote.
const pdfRowCap = 30

// Renderer writes a report document into the reports directory and
// describes the produced file.
type Renderer interface {
	Render(doc *models.ReportDocument) (*models.GeneratedFile, error)
}

// ForFormat returns the renderer matching the requested format. The
// format is a closed enum, so an unknown value here is a programming
// error on the caller's side.
func ForFormat(format models.ReportFormat, dir string) (Renderer, error) {
	switch format {
	case models.FormatPDF:
		return &PDFRenderer{Dir: dir}, nil
	case models.FormatExcel:
		return &ExcelRenderer{Dir: dir}, nil
	case models.FormatCSV:
		return &CSVRenderer{Dir: dir}, nil
	}
	return nil, fmt.Errorf("no renderer for format %q", string(format))
}

// outputPath ensures the reports directory exists and builds the unique
// output filename. The millisecond timestamp keeps concurrent requests
// from colliding on disk.
func outputPath(dir string, doc *models.ReportDocument, ext string) (path, name string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create reports dir: %w", err)
	}
	name = fmt.Sprintf("%s_%s_%d.%s", doc.Type, doc.Period, time.Now().UnixMilli(), ext)
	return filepath.Join(dir, name), name, nil
}

// describe stats the finished file and wraps it in the handoff struct.
func describe(path, name string) (*models.GeneratedFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat rendered file: %w", err)
	}
	return &models.GeneratedFile{Path: path, Name: name, Size: info.Size()}, nil
}

func displayDate(t time.Time) string {
	return t.Format("02/01/2006")
}

func displayDateTime(t time.Time) string {
	return t.Format("02/01/2006 15:04:05")
}

// timeRange formats the first/last scan window of a production row, or
// "-" when the day has no bounds.
func timeRange(row models.ProductionRow) string {
	if row.FirstScan == nil || row.LastScan == nil {
		return "-"
	}
	return row.FirstScan.Format("15:04") + " - " + row.LastScan.Format("15:04")
}

// percentOf renders count as a share of total with one decimal, matching
// the dashboard's display convention.
func percentOf(count, total int) string {
	if total <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%.1f%%", float64(count)/float64(total)*100)
}

func qualityHeaders() []string {
	return []string{"No", "Kode Telur", "Kualitas", "Tanggal Scan"}
}

func productionHeadersWide() []string {
	return []string{"Tanggal", "Total Telur", "Telur Kualitas Baik", "% Baik", "Telur Kualitas Buruk", "% Buruk", "Scan Pertama", "Scan Terakhir"}
}

func activityHeaders() []string {
	return []string{"Waktu", "Aksi", "Pengguna", "Detail"}
}

package render

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/eggspire/monitor/internal/domain/models"
)

// CSVRenderer writes delimited-text reports. Unlike the PDF it never caps
// rows; every resolved row becomes one data line.
type CSVRenderer struct {
	Dir string
}

// Swappable in tests to force write failures.
var createFile = os.Create

// Render implements the Renderer contract. A failure after the file is
// created removes it again; a broken download must never stay on disk.
func (r *CSVRenderer) Render(doc *models.ReportDocument) (file *models.GeneratedFile, err error) {
	path, name, err := outputPath(r.Dir, doc, models.FormatCSV.Extension())
	if err != nil {
		return nil, err
	}

	f, err := createFile(path)
	if err != nil {
		return nil, fmt.Errorf("create csv file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(path)
		}
	}()

	w := csv.NewWriter(f)

	// Header block: one cell per line, same four lines as the other formats.
	header := [][]string{
		{models.AppName},
		{"Laporan: " + doc.Type.DisplayName()},
		{"Periode: " + models.PeriodDisplay(doc.Period, doc.Dates)},
		{"Tanggal Generate: " + displayDate(doc.GeneratedAt)},
		{},
	}
	for _, line := range header {
		if err := w.Write(line); err != nil {
			return nil, fmt.Errorf("write csv header: %w", err)
		}
	}

	if doc.IsSentinel() {
		if err := w.Write([]string{noDataNotice}); err != nil {
			return nil, fmt.Errorf("write csv notice: %w", err)
		}
	} else if err := r.writeTable(w, doc); err != nil {
		return nil, err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close csv file: %w", err)
	}

	return describe(path, name)
}

func (r *CSVRenderer) writeTable(w *csv.Writer, doc *models.ReportDocument) error {
	switch doc.Type {
	case models.ReportEggQuality:
		if err := w.Write(qualityHeaders()); err != nil {
			return err
		}
		for i, row := range doc.Quality {
			record := []string{
				strconv.Itoa(i + 1),
				row.EggCode,
				row.Quality,
				displayDateTime(row.ScannedAt),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}

	case models.ReportProductionStats:
		if err := w.Write(productionHeadersWide()); err != nil {
			return err
		}
		for _, row := range doc.Production {
			first, last := "-", "-"
			if row.FirstScan != nil {
				first = displayDateTime(*row.FirstScan)
			}
			if row.LastScan != nil {
				last = displayDateTime(*row.LastScan)
			}
			record := []string{
				displayDate(row.Date),
				strconv.Itoa(row.TotalEggs),
				strconv.Itoa(row.GoodEggs),
				percentOf(row.GoodEggs, row.TotalEggs),
				strconv.Itoa(row.BadEggs),
				percentOf(row.BadEggs, row.TotalEggs),
				first,
				last,
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}

	case models.ReportActivityLog:
		if err := w.Write(activityHeaders()); err != nil {
			return err
		}
		for _, row := range doc.Activity {
			record := []string{
				displayDateTime(row.Timestamp),
				row.Action,
				row.Actor,
				row.Details,
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
	}
	return nil
}

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// AppName is printed in the header block of every rendered report.
const AppName = "Eggspire IoT Monitoring"

// NoDataCode marks the sentinel row injected when a report query yields
// nothing. Renderers print a notice instead of a table when they see it.
const NoDataCode = "NO_DATA"

// Calendar date layout used for report parameters and predicates.
const DateLayout = "2006-01-02"

// ReportType identifies which dataset a report is built from.
type ReportType string

const (
	ReportEggQuality      ReportType = "egg-quality"
	ReportProductionStats ReportType = "production-stats"
	ReportActivityLog     ReportType = "activity-log"
)

// ParseReportType validates an API-supplied report type value.
func ParseReportType(s string) (ReportType, error) {
	switch t := ReportType(s); t {
	case ReportEggQuality, ReportProductionStats, ReportActivityLog:
		return t, nil
	}
	return "", fmt.Errorf("unknown report type %q", s)
}

// DisplayName returns the localized report title used in headers and the
// ledger's report name.
func (t ReportType) DisplayName() string {
	switch t {
	case ReportEggQuality:
		return "Laporan Kualitas Telur"
	case ReportProductionStats:
		return "Laporan Statistik Produksi"
	case ReportActivityLog:
		return "Laporan Riwayat Aktivitas"
	}
	return fmt.Sprintf("Laporan Tidak Diketahui (%s)", string(t))
}

// ReportPeriod is the date scope selected for a report.
type ReportPeriod string

const (
	PeriodToday      ReportPeriod = "today"
	PeriodLast7Days  ReportPeriod = "last7days"
	PeriodLast30Days ReportPeriod = "last30days"
	PeriodCustom     ReportPeriod = "custom"
	PeriodDateRange  ReportPeriod = "date_range"
)

// ReportFormat is the closed set of output formats.
type ReportFormat string

const (
	FormatPDF   ReportFormat = "pdf"
	FormatExcel ReportFormat = "excel"
	FormatCSV   ReportFormat = "csv"
)

// ParseReportFormat validates an API-supplied format value.
func ParseReportFormat(s string) (ReportFormat, error) {
	switch f := ReportFormat(s); f {
	case FormatPDF, FormatExcel, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

// Extension returns the file extension without a leading dot.
func (f ReportFormat) Extension() string {
	switch f {
	case FormatExcel:
		return "xlsx"
	default:
		return string(f)
	}
}

// ContentType returns the MIME type streamed with the file.
func (f ReportFormat) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatCSV:
		return "text/csv"
	}
	return "application/octet-stream"
}

// DateRange is an inclusive calendar date interval.
type DateRange struct {
	Start string `json:"start_date"`
	End   string `json:"end_date"`
}

// DateInfo carries whichever date selection the period requires. Date is
// set for custom periods, Range for date_range periods.
type DateInfo struct {
	Date  string
	Range *DateRange
}

// PeriodDisplay renders the localized period description printed in
// report headers.
func PeriodDisplay(period ReportPeriod, dates DateInfo) string {
	switch period {
	case PeriodToday:
		return "Hari Ini"
	case PeriodLast7Days:
		return "7 Hari Terakhir"
	case PeriodLast30Days:
		return "30 Hari Terakhir"
	case PeriodCustom:
		if dates.Date != "" {
			return "Tanggal " + displayDate(dates.Date)
		}
		return "Tanggal Tertentu"
	case PeriodDateRange:
		if dates.Range != nil && dates.Range.Start != "" && dates.Range.End != "" {
			return fmt.Sprintf("Periode %s - %s", displayDate(dates.Range.Start), displayDate(dates.Range.End))
		}
		return "Periode Tertentu"
	}
	return fmt.Sprintf("Periode Tidak Diketahui (%s)", string(period))
}

func displayDate(date string) string {
	if t, err := time.Parse(DateLayout, date); err == nil {
		return t.Format("02/01/2006")
	}
	return date
}

// QualityRow is one per-scan line of an egg-quality report.
type QualityRow struct {
	ScanID    *int64    `db:"egg_id"`
	EggCode   string    `db:"egg_code"`
	Quality   string    `db:"quality"`
	ScannedAt time.Time `db:"created_at"`
}

// ProductionRow is one per-day line of a production-stats report.
type ProductionRow struct {
	Date      time.Time  `db:"date"`
	TotalEggs int        `db:"total_eggs"`
	GoodEggs  int        `db:"good_eggs"`
	BadEggs   int        `db:"bad_eggs"`
	FirstScan *time.Time `db:"first_scan"`
	LastScan  *time.Time `db:"last_scan"`
}

// ActivityRow is one line of the activity-log report.
type ActivityRow struct {
	Timestamp time.Time
	Action    string
	Actor     string
	Details   string
}

// ReportDocument is the tabular model handed to renderers: resolved rows
// plus the metadata printed in the header block. Exactly one of the row
// slices is populated, matching Type.
type ReportDocument struct {
	Type        ReportType
	Period      ReportPeriod
	Dates       DateInfo
	GeneratedAt time.Time

	Quality    []QualityRow
	Production []ProductionRow
	Activity   []ActivityRow
}

// IsSentinel reports whether the document holds only the "no data"
// placeholder row rather than real data.
func (d *ReportDocument) IsSentinel() bool {
	switch d.Type {
	case ReportEggQuality:
		return len(d.Quality) == 1 && d.Quality[0].EggCode == NoDataCode
	case ReportProductionStats:
		return len(d.Production) == 1 && d.Production[0].TotalEggs == 0
	}
	return false
}

// RowCount returns the number of data rows for the active report type.
func (d *ReportDocument) RowCount() int {
	switch d.Type {
	case ReportEggQuality:
		return len(d.Quality)
	case ReportProductionStats:
		return len(d.Production)
	case ReportActivityLog:
		return len(d.Activity)
	}
	return 0
}

// GeneratedFile describes a rendered report written to the reports
// directory. The file lives only for the duration of one request.
type GeneratedFile struct {
	Path string
	Name string
	Size int64
}

// Report is one ledger row persisted per generated report.
type Report struct {
	ReportID      int64      `db:"report_id" json:"id"`
	UserID        int64      `db:"user_id" json:"-"`
	ReportName    string     `db:"report_name" json:"report_name"`
	ReportType    string     `db:"report_type" json:"report_type"`
	Parameters    string     `db:"parameters" json:"-"`
	FilePath      string     `db:"file_path" json:"-"`
	FileFormat    string     `db:"file_format" json:"format"`
	FileSize      int64      `db:"file_size" json:"file_size"`
	GeneratedAt   time.Time  `db:"generated_at" json:"created_at"`
	ExpiresAt     *time.Time `db:"expires_at" json:"expires_at"`
	DownloadCount int        `db:"download_count" json:"download_count"`

	// Deserialized from Parameters for history listings.
	Period string  `db:"-" json:"period"`
	Date   *string `db:"-" json:"date"`
}

// ReportParameters is the JSON shape stored in the ledger's parameters
// column so a history entry can show what was requested.
type ReportParameters struct {
	ReportType ReportType   `json:"report_type"`
	Period     ReportPeriod `json:"period"`
	Date       string       `json:"date,omitempty"`
	StartDate  string       `json:"start_date,omitempty"`
	EndDate    string       `json:"end_date,omitempty"`
	Format     ReportFormat `json:"format"`
}

// EncodeParameters serializes report parameters for the ledger.
func EncodeParameters(p ReportParameters) string {
	raw, err := json.Marshal(p)
	if err != nil {
		return "{}"
	}
	return string(raw)
}

// DecorateFromParameters fills the display fields from the stored
// parameters blob. Malformed blobs degrade to period "unknown" and a nil
// date instead of failing the listing.
func (r *Report) DecorateFromParameters() {
	var p ReportParameters
	if err := json.Unmarshal([]byte(r.Parameters), &p); err != nil || p.Period == "" {
		r.Period = "unknown"
		r.Date = nil
		return
	}
	r.Period = string(p.Period)
	switch {
	case p.Date != "":
		d := p.Date
		r.Date = &d
	case p.StartDate != "" && p.EndDate != "":
		d := p.StartDate + " - " + p.EndDate
		r.Date = &d
	default:
		r.Date = nil
	}
}

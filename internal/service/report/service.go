package report

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/eggspire/monitor/internal/domain/models"
	"github.com/eggspire/monitor/internal/render"
	"github.com/eggspire/monitor/internal/repository/mysql"
)

// ErrInvalidRequest marks request validation failures. Handlers map it to
// a 400 response; everything else generated here is a 500.
var ErrInvalidRequest = errors.New("invalid report request")

// GenerateRequest is the POST /reports/generate body.
type GenerateRequest struct {
	ReportType string `json:"report_type"`
	Period     string `json:"period"`
	Date       string `json:"date"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Format     string `json:"format"`
}

// Ledger persists generated-report records. Implemented by the MySQL
// report repository.
type Ledger interface {
	Insert(ctx context.Context, report *models.Report) (int64, error)
	History(ctx context.Context, userID int64, reportType, format string, limit, offset int) ([]models.Report, int, error)
	GetForDownload(ctx context.Context, reportID, userID int64) (*models.Report, error)
	IncrementDownloadCount(ctx context.Context, reportID int64) error
	Delete(ctx context.Context, reportID, userID int64) (string, error)
	DeleteExpired(ctx context.Context) ([]string, error)
}

// Service orchestrates report generation: validate the request, resolve
// data, render to a temp file, record the ledger entry, and serve
// history, download, and delete against the ledger.
type Service struct {
	provider      *DataProvider
	ledger        Ledger
	reportsDir    string
	retentionDays int
	logger        *zap.Logger
	now           func() time.Time

	// Swappable in tests to avoid exercising the real renderers.
	newRenderer func(models.ReportFormat, string) (render.Renderer, error)
}

// NewService wires the report orchestrator.
func NewService(source ScanSource, ledger Ledger, reportsDir string, retentionDays int, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		provider:      NewDataProvider(source, logger.Named("provider")),
		ledger:        ledger,
		reportsDir:    reportsDir,
		retentionDays: retentionDays,
		logger:        logger,
		now:           time.Now,
		newRenderer:   render.ForFormat,
	}
}

// Generate validates the request, renders the report into the reports
// directory and records the ledger entry. The caller owns the returned
// file and must delete it once streamed (or on failure).
func (s *Service) Generate(ctx context.Context, userID int64, req GenerateRequest) (*models.GeneratedFile, models.ReportFormat, error) {
	reportType, period, format, dates, err := s.validate(req)
	if err != nil {
		return nil, "", err
	}

	doc := s.provider.Fetch(ctx, reportType, period, dates)

	renderer, err := s.newRenderer(format, s.reportsDir)
	if err != nil {
		return nil, "", err
	}
	file, err := renderer.Render(doc)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate %s report: %w", format, err)
	}

	s.persistLedgerEntry(ctx, userID, reportType, period, format, dates, file)

	return file, format, nil
}

// persistLedgerEntry records the generated report. Persistence is not on
// the critical path of delivering the file: a failed insert is logged and
// the download still completes.
func (s *Service) persistLedgerEntry(ctx context.Context, userID int64, reportType models.ReportType, period models.ReportPeriod, format models.ReportFormat, dates models.DateInfo, file *models.GeneratedFile) {
	params := models.ReportParameters{
		ReportType: reportType,
		Period:     period,
		Date:       dates.Date,
		Format:     format,
	}
	if dates.Range != nil {
		params.StartDate = dates.Range.Start
		params.EndDate = dates.Range.End
	}

	expiresAt := s.now().AddDate(0, 0, s.retentionDays)
	entry := &models.Report{
		UserID:     userID,
		ReportName: reportType.DisplayName() + " - " + models.PeriodDisplay(period, dates),
		ReportType: string(reportType),
		Parameters: models.EncodeParameters(params),
		FilePath:   file.Name,
		FileFormat: string(format),
		FileSize:   file.Size,
		ExpiresAt:  &expiresAt,
	}

	if _, err := s.ledger.Insert(ctx, entry); err != nil {
		s.logger.Error("failed to save report record, continuing with download",
			zap.Error(err), zap.String("file", file.Name), zap.Int64("user_id", userID))
	}
}

func (s *Service) validate(req GenerateRequest) (models.ReportType, models.ReportPeriod, models.ReportFormat, models.DateInfo, error) {
	var dates models.DateInfo

	if req.ReportType == "" || req.Period == "" || req.Format == "" {
		return "", "", "", dates, fmt.Errorf("%w: missing required fields: report_type, period, format", ErrInvalidRequest)
	}

	reportType, err := models.ParseReportType(req.ReportType)
	if err != nil {
		return "", "", "", dates, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	format, err := models.ParseReportFormat(req.Format)
	if err != nil {
		return "", "", "", dates, fmt.Errorf("%w: unsupported format %q, use pdf, excel, or csv", ErrInvalidRequest, req.Format)
	}

	period := models.ReportPeriod(req.Period)
	switch period {
	case models.PeriodCustom:
		date, err := normalizeDate(req.Date)
		if err != nil {
			return "", "", "", dates, fmt.Errorf("%w: custom period requires a valid date", ErrInvalidRequest)
		}
		dates.Date = date

	case models.PeriodDateRange:
		start, err := normalizeDate(req.StartDate)
		if err != nil {
			return "", "", "", dates, fmt.Errorf("%w: date_range period requires valid start_date and end_date", ErrInvalidRequest)
		}
		end, err := normalizeDate(req.EndDate)
		if err != nil {
			return "", "", "", dates, fmt.Errorf("%w: date_range period requires valid start_date and end_date", ErrInvalidRequest)
		}
		if start > end {
			return "", "", "", dates, fmt.Errorf("%w: start_date must not be after end_date", ErrInvalidRequest)
		}
		dates.Range = &models.DateRange{Start: start, End: end}
	}

	return reportType, period, format, dates, nil
}

// normalizeDate validates a calendar date and reserializes it so only the
// canonical layout reaches SQL parameters and the ledger.
func normalizeDate(raw string) (string, error) {
	if raw == "" {
		return "", errors.New("empty date")
	}
	t, err := time.Parse(models.DateLayout, raw)
	if err != nil {
		return "", err
	}
	return t.Format(models.DateLayout), nil
}

// History lists the caller's non-expired reports, newest first.
func (s *Service) History(ctx context.Context, userID int64, reportType, format string, limit, offset int) ([]models.Report, int, error) {
	return s.ledger.History(ctx, userID, reportType, format, limit, offset)
}

// Download resolves a stored report for the caller and returns the ledger
// entry plus the on-disk path. A ledger row whose file has gone missing
// is reported as not found rather than a server error.
func (s *Service) Download(ctx context.Context, userID, reportID int64) (*models.Report, string, error) {
	entry, err := s.ledger.GetForDownload(ctx, reportID, userID)
	if err != nil {
		return nil, "", err
	}

	path := filepath.Join(s.reportsDir, entry.FilePath)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, "", mysql.ErrNotFound
		}
		return nil, "", fmt.Errorf("stat report file: %w", err)
	}

	// Counting is a side effect of a successful download; a failed update
	// never blocks the stream.
	if err := s.ledger.IncrementDownloadCount(ctx, reportID); err != nil {
		s.logger.Warn("failed to increment download count", zap.Int64("report_id", reportID), zap.Error(err))
	}

	return entry, path, nil
}

// Delete removes the caller's ledger row and best-effort deletes the
// backing file. A failed file removal does not undo the row deletion.
func (s *Service) Delete(ctx context.Context, userID, reportID int64) error {
	storedFile, err := s.ledger.Delete(ctx, reportID, userID)
	if err != nil {
		return err
	}

	if storedFile != "" {
		path := filepath.Join(s.reportsDir, storedFile)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to delete report file", zap.String("path", path), zap.Error(err))
		}
	}
	return nil
}

// SweepExpired reaps expired ledger rows and their files, then removes
// any file in the reports directory older than the retention window. The
// second pass catches files orphaned by crashes between rendering and
// cleanup, which never got a ledger row. Called by the retention
// scheduler, not by request handlers.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	files, err := s.ledger.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	for _, name := range files {
		path := filepath.Join(s.reportsDir, name)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			s.logger.Warn("failed to delete expired report file", zap.String("path", path), zap.Error(err))
		}
	}
	return len(files) + s.sweepOrphans(), nil
}

// sweepOrphans deletes reports-directory files whose mtime predates the
// retention window. Any ledger-backed file that old is already expired,
// so only abandoned files are left to match.
func (s *Service) sweepOrphans() int {
	entries, err := os.ReadDir(s.reportsDir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn("failed to read reports dir", zap.String("dir", s.reportsDir), zap.Error(err))
		}
		return 0
	}

	cutoff := s.now().AddDate(0, 0, -s.retentionDays)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.reportsDir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.logger.Warn("failed to delete orphaned report file", zap.String("path", path), zap.Error(err))
			continue
		}
		removed++
	}
	return removed
}

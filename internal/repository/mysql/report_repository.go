package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/eggspire/monitor/internal/domain/models"
)

const reportColumns = `report_id, user_id, report_name, report_type, parameters,
	file_path, file_format, file_size, generated_at, expires_at, download_count`

// ReportRepository is the ledger of generated reports. Rows outlive the
// temporary files streamed at generation time; expired rows are hidden
// from reads and reaped by the retention sweeper.
type ReportRepository struct {
	db *sqlx.DB
}

// NewReportRepository wires a report ledger over the shared pool.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Insert records a generated report and returns the ledger id.
func (r *ReportRepository) Insert(ctx context.Context, report *models.Report) (int64, error) {
	query := `
		INSERT INTO reports (user_id, report_name, report_type, parameters,
			file_path, file_format, file_size, generated_at, expires_at, download_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, NOW(), ?, 0)`
	res, err := r.db.ExecContext(ctx, query,
		report.UserID, report.ReportName, report.ReportType, report.Parameters,
		report.FilePath, report.FileFormat, report.FileSize, report.ExpiresAt)
	if err != nil {
		return 0, fmt.Errorf("insert report: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert report id: %w", err)
	}
	return id, nil
}

// History lists a user's non-expired reports, newest first. Stored
// parameters are deserialized for display; malformed blobs degrade to
// period "unknown" rather than failing the listing.
func (r *ReportRepository) History(ctx context.Context, userID int64, reportType, format string, limit, offset int) ([]models.Report, int, error) {
	where := `WHERE user_id = ? AND (expires_at IS NULL OR expires_at > NOW())`
	args := []any{userID}
	if reportType != "" {
		where += ` AND report_type = ?`
		args = append(args, reportType)
	}
	if format != "" {
		where += ` AND file_format = ?`
		args = append(args, format)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM reports `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count reports: %w", err)
	}

	reports := []models.Report{}
	query := `SELECT ` + reportColumns + ` FROM reports ` + where + ` ORDER BY generated_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	if err := r.db.SelectContext(ctx, &reports, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list reports: %w", err)
	}

	for i := range reports {
		reports[i].DecorateFromParameters()
	}
	return reports, total, nil
}

// GetForDownload returns a report only if it exists, belongs to the
// caller, and has not expired. Anything else is ErrNotFound.
func (r *ReportRepository) GetForDownload(ctx context.Context, reportID, userID int64) (*models.Report, error) {
	var report models.Report
	query := `SELECT ` + reportColumns + ` FROM reports
		WHERE report_id = ? AND user_id = ? AND (expires_at IS NULL OR expires_at > NOW())`
	if err := r.db.GetContext(ctx, &report, query, reportID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get report: %w", err)
	}
	return &report, nil
}

// IncrementDownloadCount bumps the counter after a successful download.
func (r *ReportRepository) IncrementDownloadCount(ctx context.Context, reportID int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE reports SET download_count = download_count + 1 WHERE report_id = ?`, reportID); err != nil {
		return fmt.Errorf("increment download count: %w", err)
	}
	return nil
}

// Delete removes a user's ledger row and returns the stored filename so
// the caller can best-effort remove the backing file afterwards.
func (r *ReportRepository) Delete(ctx context.Context, reportID, userID int64) (string, error) {
	var storedFile string
	err := r.db.GetContext(ctx, &storedFile,
		`SELECT file_path FROM reports WHERE report_id = ? AND user_id = ?`, reportID, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("find report for delete: %w", err)
	}

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM reports WHERE report_id = ? AND user_id = ?`, reportID, userID); err != nil {
		return "", fmt.Errorf("delete report: %w", err)
	}
	return storedFile, nil
}

// DeleteExpired reaps expired ledger rows and returns their stored
// filenames for file cleanup.
func (r *ReportRepository) DeleteExpired(ctx context.Context) ([]string, error) {
	files := []string{}
	if err := r.db.SelectContext(ctx, &files,
		`SELECT file_path FROM reports WHERE expires_at IS NOT NULL AND expires_at <= NOW()`); err != nil {
		return nil, fmt.Errorf("list expired reports: %w", err)
	}
	if len(files) == 0 {
		return nil, nil
	}

	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM reports WHERE expires_at IS NOT NULL AND expires_at <= NOW()`); err != nil {
		return nil, fmt.Errorf("delete expired reports: %w", err)
	}
	return files, nil
}

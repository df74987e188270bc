package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/eggspire/monitor/internal/domain/models"
)

// ScanRepository reads persisted egg-scan rows. The sorting devices write
// them out of band; this side only queries.
type ScanRepository struct {
	db *sqlx.DB
}

// NewScanRepository wires a scan repository over the shared pool.
func NewScanRepository(db *sqlx.DB) *ScanRepository {
	return &ScanRepository{db: db}
}

// ScanFilter narrows List results.
type ScanFilter struct {
	Quality   string
	StartDate string
	EndDate   string
}

// List returns scans newest first with optional quality/date filters.
func (r *ScanRepository) List(ctx context.Context, filter ScanFilter, limit, offset int) ([]models.EggScan, int, error) {
	where := `WHERE 1=1`
	args := []any{}
	if filter.Quality != "" {
		where += ` AND quality = ?`
		args = append(args, filter.Quality)
	}
	if filter.StartDate != "" {
		where += ` AND DATE(scanned_at) >= ?`
		args = append(args, filter.StartDate)
	}
	if filter.EndDate != "" {
		where += ` AND DATE(scanned_at) <= ?`
		args = append(args, filter.EndDate)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM egg_scans `+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count scans: %w", err)
	}

	scans := []models.EggScan{}
	query := `SELECT scan_id, egg_code, quality, scanned_at FROM egg_scans ` + where +
		` ORDER BY scanned_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)
	if err := r.db.SelectContext(ctx, &scans, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list scans: %w", err)
	}
	return scans, total, nil
}

// GetByID returns a single scan record.
func (r *ScanRepository) GetByID(ctx context.Context, scanID int64) (*models.EggScan, error) {
	var scan models.EggScan
	query := `SELECT scan_id, egg_code, quality, scanned_at FROM egg_scans WHERE scan_id = ?`
	if err := r.db.GetContext(ctx, &scan, query, scanID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get scan: %w", err)
	}
	return &scan, nil
}

// Recent returns the most recent scans.
func (r *ScanRepository) Recent(ctx context.Context, limit int) ([]models.EggScan, error) {
	scans := []models.EggScan{}
	query := `SELECT scan_id, egg_code, quality, scanned_at FROM egg_scans ORDER BY scanned_at DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &scans, query, limit); err != nil {
		return nil, fmt.Errorf("recent scans: %w", err)
	}
	return scans, nil
}

// Statistics aggregates scan outcomes, optionally restricted to a
// trailing number of days (0 means all time).
func (r *ScanRepository) Statistics(ctx context.Context, days int) (*models.ScanStatistics, error) {
	where := ""
	args := []any{}
	if days > 0 {
		where = `WHERE scanned_at >= DATE_SUB(NOW(), INTERVAL ? DAY)`
		args = append(args, days)
	}

	var stats models.ScanStatistics
	query := `
		SELECT
			COUNT(*) AS total_eggs,
			COALESCE(SUM(CASE WHEN quality = 'good' THEN 1 ELSE 0 END), 0) AS good_eggs,
			COALESCE(SUM(CASE WHEN quality = 'bad' THEN 1 ELSE 0 END), 0) AS bad_eggs,
			COALESCE(SUM(CASE WHEN quality = 'uncertain' THEN 1 ELSE 0 END), 0) AS uncertain_eggs
		FROM egg_scans ` + where
	if err := r.db.GetContext(ctx, &stats, query, args...); err != nil {
		return nil, fmt.Errorf("scan statistics: %w", err)
	}
	if stats.TotalEggs > 0 {
		stats.GoodRate = float64(stats.GoodEggs) / float64(stats.TotalEggs) * 100
		stats.BadRate = float64(stats.BadEggs) / float64(stats.TotalEggs) * 100
	}
	return &stats, nil
}

// DailySummaries groups counts by day over the trailing window.
func (r *ScanRepository) DailySummaries(ctx context.Context, days int) ([]models.DailyScanSummary, error) {
	summaries := []models.DailyScanSummary{}
	query := `
		SELECT
			DATE_FORMAT(scanned_at, '%Y-%m-%d') AS date,
			COUNT(*) AS total_eggs,
			SUM(CASE WHEN quality = 'good' THEN 1 ELSE 0 END) AS good_eggs,
			SUM(CASE WHEN quality = 'bad' THEN 1 ELSE 0 END) AS bad_eggs,
			MIN(scanned_at) AS first_scan,
			MAX(scanned_at) AS last_scan
		FROM egg_scans
		WHERE scanned_at >= DATE_SUB(NOW(), INTERVAL ? DAY)
		GROUP BY DATE_FORMAT(scanned_at, '%Y-%m-%d')
		ORDER BY date DESC`
	if err := r.db.SelectContext(ctx, &summaries, query, days); err != nil {
		return nil, fmt.Errorf("daily summaries: %w", err)
	}
	return summaries, nil
}

// LatestScanTime returns the most recent scan timestamp, or nil when the
// table is empty.
func (r *ScanRepository) LatestScanTime(ctx context.Context) (*time.Time, error) {
	var latest sql.NullTime
	if err := r.db.GetContext(ctx, &latest, `SELECT MAX(scanned_at) FROM egg_scans`); err != nil {
		return nil, fmt.Errorf("latest scan time: %w", err)
	}
	if !latest.Valid {
		return nil, nil
	}
	return &latest.Time, nil
}

// Ping verifies database liveness for health checks.
func (r *ScanRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// QualityRows runs the per-scan report query. An empty predicate means no
// date restriction; limit 0 means unbounded.
func (r *ScanRepository) QualityRows(ctx context.Context, predicate string, args []any, limit int) ([]models.QualityRow, error) {
	query := `
		SELECT
			scan_id AS egg_id,
			egg_code,
			quality,
			scanned_at AS created_at
		FROM egg_scans`
	if predicate != "" {
		query += ` WHERE ` + predicate
	}
	query += ` ORDER BY scanned_at DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows := []models.QualityRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("quality report rows: %w", err)
	}
	return rows, nil
}

// ProductionRows runs the per-day aggregate report query. An empty
// predicate means no date restriction; limit 0 means unbounded.
func (r *ScanRepository) ProductionRows(ctx context.Context, predicate string, args []any, limit int) ([]models.ProductionRow, error) {
	query := `
		SELECT
			DATE(scanned_at) AS date,
			COUNT(*) AS total_eggs,
			SUM(CASE WHEN quality = 'good' THEN 1 ELSE 0 END) AS good_eggs,
			SUM(CASE WHEN quality = 'bad' THEN 1 ELSE 0 END) AS bad_eggs,
			MIN(scanned_at) AS first_scan,
			MAX(scanned_at) AS last_scan
		FROM egg_scans`
	if predicate != "" {
		query += ` WHERE ` + predicate
	}
	query += ` GROUP BY DATE(scanned_at) ORDER BY date DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows := []models.ProductionRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("production report rows: %w", err)
	}
	return rows, nil
}

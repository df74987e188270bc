package report

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/eggspire/monitor/internal/domain/models"
)

// Bounds on the unscoped fallback queries so an empty period can never
// trigger a whole-table render.
const (
	fallbackScanLimit  = 50
	fallbackDailyLimit = 30
)

// ScanSource runs the type-specific report queries. Implemented by the
// MySQL scan repository.
type ScanSource interface {
	QualityRows(ctx context.Context, predicate string, args []any, limit int) ([]models.QualityRow, error)
	ProductionRows(ctx context.Context, predicate string, args []any, limit int) ([]models.ProductionRow, error)
}

// DataProvider resolves the rows for a report. Renderers always receive
// at least one row: if the period-scoped query fails or comes back empty
// the provider retries unscoped (bounded, newest first), and if that also
// yields nothing it injects the sentinel "no data" row. Query failures
// are therefore absorbed here, never surfaced to the renderer.
type DataProvider struct {
	source ScanSource
	logger *zap.Logger
	now    func() time.Time
}

// NewDataProvider wires a data provider.
func NewDataProvider(source ScanSource, logger *zap.Logger) *DataProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataProvider{source: source, logger: logger, now: time.Now}
}

// Fetch builds the report document for the requested type and period.
func (p *DataProvider) Fetch(ctx context.Context, reportType models.ReportType, period models.ReportPeriod, dates models.DateInfo) *models.ReportDocument {
	doc := &models.ReportDocument{
		Type:        reportType,
		Period:      period,
		Dates:       dates,
		GeneratedAt: p.now(),
	}

	filter := ResolvePeriod(period, dates)

	switch reportType {
	case models.ReportEggQuality:
		doc.Quality = p.qualityRows(ctx, filter)
	case models.ReportProductionStats:
		doc.Production = p.productionRows(ctx, filter)
	case models.ReportActivityLog:
		// Not wired to a real audit table yet; serves fixed illustrative
		// entries so the report type stays exercisable end to end.
		doc.Activity = p.activityRows()
	}

	return doc
}

func (p *DataProvider) qualityRows(ctx context.Context, filter Filter) []models.QualityRow {
	rows, err := p.source.QualityRows(ctx, filter.Predicate, filter.Args, 0)
	if err != nil {
		p.logger.Warn("scoped quality query failed, falling back", zap.Error(err))
	}
	if len(rows) > 0 {
		return rows
	}

	rows, err = p.source.QualityRows(ctx, "", nil, fallbackScanLimit)
	if err != nil {
		p.logger.Warn("fallback quality query failed", zap.Error(err))
	}
	if len(rows) > 0 {
		return rows
	}

	return []models.QualityRow{{
		EggCode:   models.NoDataCode,
		Quality:   "-",
		ScannedAt: p.now(),
	}}
}

func (p *DataProvider) productionRows(ctx context.Context, filter Filter) []models.ProductionRow {
	rows, err := p.source.ProductionRows(ctx, filter.Predicate, filter.Args, 0)
	if err != nil {
		p.logger.Warn("scoped production query failed, falling back", zap.Error(err))
	}
	if len(rows) > 0 {
		return rows
	}

	rows, err = p.source.ProductionRows(ctx, "", nil, fallbackDailyLimit)
	if err != nil {
		p.logger.Warn("fallback production query failed", zap.Error(err))
	}
	if len(rows) > 0 {
		return rows
	}

	return []models.ProductionRow{{Date: p.now()}}
}

func (p *DataProvider) activityRows() []models.ActivityRow {
	now := p.now()
	return []models.ActivityRow{
		{Timestamp: now, Action: "System Start", Actor: "System", Details: "Monitoring system started"},
		{Timestamp: now, Action: "Scan Complete", Actor: "Scanner-001", Details: "Egg batch scanned successfully"},
	}
}

package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eggspire/monitor/internal/domain/models"
)

func TestResolvePeriod(t *testing.T) {
	tests := []struct {
		name      string
		period    models.ReportPeriod
		dates     models.DateInfo
		predicate string
		args      []any
	}{
		{
			name:      "today",
			period:    models.PeriodToday,
			predicate: "DATE(scanned_at) = CURDATE()",
		},
		{
			name:      "last 7 days",
			period:    models.PeriodLast7Days,
			predicate: "scanned_at >= DATE_SUB(NOW(), INTERVAL 7 DAY)",
		},
		{
			name:      "last 30 days",
			period:    models.PeriodLast30Days,
			predicate: "scanned_at >= DATE_SUB(NOW(), INTERVAL 30 DAY)",
		},
		{
			name:      "custom date binds the date",
			period:    models.PeriodCustom,
			dates:     models.DateInfo{Date: "2026-03-15"},
			predicate: "DATE(scanned_at) = ?",
			args:      []any{"2026-03-15"},
		},
		{
			name:   "date range binds both bounds",
			period: models.PeriodDateRange,
			dates: models.DateInfo{
				Range: &models.DateRange{Start: "2026-03-01", End: "2026-03-15"},
			},
			predicate: "DATE(scanned_at) BETWEEN ? AND ?",
			args:      []any{"2026-03-01", "2026-03-15"},
		},
		{
			name:      "custom without date degrades to unfiltered",
			period:    models.PeriodCustom,
			predicate: "",
		},
		{
			name:      "unknown period degrades to unfiltered",
			period:    models.ReportPeriod("fortnight"),
			predicate: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filter := ResolvePeriod(tt.period, tt.dates)
			assert.Equal(t, tt.predicate, filter.Predicate)
			assert.Equal(t, tt.args, filter.Args)
		})
	}
}

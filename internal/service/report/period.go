package report

import (
	"github.com/eggspire/monitor/internal/domain/models"
)

// Filter is a resolved SQL date predicate over scanned_at plus its bound
// parameters. An empty predicate means whole-table scope.
type Filter struct {
	Predicate string
	Args      []any
}

// ResolvePeriod maps a period selection to its date predicate. Pure
// mapping, no I/O. An unrecognized period degrades to the unfiltered
// whole-table scope instead of erroring; request validation upstream is
// what keeps garbage out, this stays permissive so stored parameters from
// older clients still resolve.
func ResolvePeriod(period models.ReportPeriod, dates models.DateInfo) Filter {
	switch period {
	case models.PeriodToday:
		return Filter{Predicate: "DATE(scanned_at) = CURDATE()"}
	case models.PeriodLast7Days:
		return Filter{Predicate: "scanned_at >= DATE_SUB(NOW(), INTERVAL 7 DAY)"}
	case models.PeriodLast30Days:
		return Filter{Predicate: "scanned_at >= DATE_SUB(NOW(), INTERVAL 30 DAY)"}
	case models.PeriodCustom:
		if dates.Date != "" {
			return Filter{Predicate: "DATE(scanned_at) = ?", Args: []any{dates.Date}}
		}
	case models.PeriodDateRange:
		if dates.Range != nil && dates.Range.Start != "" && dates.Range.End != "" {
			return Filter{
				Predicate: "DATE(scanned_at) BETWEEN ? AND ?",
				Args:      []any{dates.Range.Start, dates.Range.End},
			}
		}
	}
	return Filter{}
}

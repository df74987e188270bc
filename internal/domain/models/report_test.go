package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReportType(t *testing.T) {
	for _, valid := range []string{"egg-quality", "production-stats", "activity-log"} {
		got, err := ParseReportType(valid)
		require.NoError(t, err)
		assert.Equal(t, valid, string(got))
	}

	_, err := ParseReportType("feed-usage")
	assert.Error(t, err)
}

func TestFormatExtensionAndContentType(t *testing.T) {
	assert.Equal(t, "pdf", FormatPDF.Extension())
	assert.Equal(t, "xlsx", FormatExcel.Extension())
	assert.Equal(t, "csv", FormatCSV.Extension())

	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", FormatExcel.ContentType())
	assert.Equal(t, "text/csv", FormatCSV.ContentType())

	_, err := ParseReportFormat("docx")
	assert.Error(t, err)
}

func TestPeriodDisplay(t *testing.T) {
	tests := []struct {
		name   string
		period ReportPeriod
		dates  DateInfo
		want   string
	}{
		{"today", PeriodToday, DateInfo{}, "Hari Ini"},
		{"last 7 days", PeriodLast7Days, DateInfo{}, "7 Hari Terakhir"},
		{"last 30 days", PeriodLast30Days, DateInfo{}, "30 Hari Terakhir"},
		{"custom with date", PeriodCustom, DateInfo{Date: "2026-08-17"}, "Tanggal 17/08/2026"},
		{"custom without date", PeriodCustom, DateInfo{}, "Tanggal Tertentu"},
		{
			"date range",
			PeriodDateRange,
			DateInfo{Range: &DateRange{Start: "2026-08-01", End: "2026-08-15"}},
			"Periode 01/08/2026 - 15/08/2026",
		},
		{"date range without bounds", PeriodDateRange, DateInfo{}, "Periode Tertentu"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PeriodDisplay(tt.period, tt.dates))
		})
	}
}

func TestIsSentinel(t *testing.T) {
	quality := &ReportDocument{
		Type:    ReportEggQuality,
		Quality: []QualityRow{{EggCode: NoDataCode, Quality: "-"}},
	}
	assert.True(t, quality.IsSentinel())

	quality.Quality = []QualityRow{{EggCode: "EGG-001", Quality: "good"}}
	assert.False(t, quality.IsSentinel())

	production := &ReportDocument{
		Type:       ReportProductionStats,
		Production: []ProductionRow{{Date: time.Now()}},
	}
	assert.True(t, production.IsSentinel())

	production.Production[0].TotalEggs = 12
	assert.False(t, production.IsSentinel())

	activity := &ReportDocument{Type: ReportActivityLog}
	assert.False(t, activity.IsSentinel())
}

func TestDecorateFromParameters(t *testing.T) {
	entry := Report{Parameters: EncodeParameters(ReportParameters{
		ReportType: ReportEggQuality,
		Period:     PeriodCustom,
		Date:       "2026-08-17",
		Format:     FormatPDF,
	})}
	entry.DecorateFromParameters()
	assert.Equal(t, "custom", entry.Period)
	require.NotNil(t, entry.Date)
	assert.Equal(t, "2026-08-17", *entry.Date)

	ranged := Report{Parameters: EncodeParameters(ReportParameters{
		ReportType: ReportProductionStats,
		Period:     PeriodDateRange,
		StartDate:  "2026-08-01",
		EndDate:    "2026-08-15",
		Format:     FormatCSV,
	})}
	ranged.DecorateFromParameters()
	assert.Equal(t, "date_range", ranged.Period)
	require.NotNil(t, ranged.Date)
	assert.Equal(t, "2026-08-01 - 2026-08-15", *ranged.Date)
}

func TestDecorateFromParametersMalformed(t *testing.T) {
	for _, blob := range []string{"", "not json", "{}"} {
		entry := Report{Parameters: blob}
		entry.DecorateFromParameters()
		assert.Equal(t, "unknown", entry.Period)
		assert.Nil(t, entry.Date)
	}
}

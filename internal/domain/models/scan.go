package models

import "time"

// EggQuality is the outcome assigned to a scanned egg by the sorter.
type EggQuality string

const (
	QualityGood      EggQuality = "good"
	QualityBad       EggQuality = "bad"
	QualityUncertain EggQuality = "uncertain"
)

// EggScan is one persisted scan record produced by the sorting pipeline.
// The backend only reads these rows; devices write them out of band.
type EggScan struct {
	ScanID    int64      `db:"scan_id" json:"scan_id"`
	EggCode   string     `db:"egg_code" json:"egg_code"`
	Quality   EggQuality `db:"quality" json:"quality"`
	ScannedAt time.Time  `db:"scanned_at" json:"scanned_at"`
}

// ScanStatistics aggregates scan outcomes over a window.
type ScanStatistics struct {
	TotalEggs     int     `db:"total_eggs" json:"total_eggs"`
	GoodEggs      int     `db:"good_eggs" json:"good_eggs"`
	BadEggs       int     `db:"bad_eggs" json:"bad_eggs"`
	UncertainEggs int     `db:"uncertain_eggs" json:"uncertain_eggs"`
	GoodRate      float64 `json:"good_rate"`
	BadRate       float64 `json:"bad_rate"`
}

// DailyScanSummary groups scan counts by calendar day.
type DailyScanSummary struct {
	Date      string     `db:"date" json:"date"`
	TotalEggs int        `db:"total_eggs" json:"total_eggs"`
	GoodEggs  int        `db:"good_eggs" json:"good_eggs"`
	BadEggs   int        `db:"bad_eggs" json:"bad_eggs"`
	FirstScan *time.Time `db:"first_scan" json:"first_scan,omitempty"`
	LastScan  *time.Time `db:"last_scan" json:"last_scan,omitempty"`
}

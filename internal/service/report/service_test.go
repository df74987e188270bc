package report

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eggspire/monitor/internal/domain/models"
	"github.com/eggspire/monitor/internal/render"
	"github.com/eggspire/monitor/internal/repository/mysql"
)

type mockLedger struct {
	inserted  []*models.Report
	insertErr error

	downloadEntry *models.Report
	downloadErr   error
	incremented   []int64

	deletedFile string
	deleteErr   error

	expiredFiles []string
}

func (m *mockLedger) Insert(_ context.Context, report *models.Report) (int64, error) {
	m.inserted = append(m.inserted, report)
	if m.insertErr != nil {
		return 0, m.insertErr
	}
	return int64(len(m.inserted)), nil
}

func (m *mockLedger) History(_ context.Context, _ int64, _, _ string, _, _ int) ([]models.Report, int, error) {
	return nil, 0, nil
}

func (m *mockLedger) GetForDownload(_ context.Context, _, _ int64) (*models.Report, error) {
	return m.downloadEntry, m.downloadErr
}

func (m *mockLedger) IncrementDownloadCount(_ context.Context, reportID int64) error {
	m.incremented = append(m.incremented, reportID)
	return nil
}

func (m *mockLedger) Delete(_ context.Context, _, _ int64) (string, error) {
	return m.deletedFile, m.deleteErr
}

func (m *mockLedger) DeleteExpired(_ context.Context) ([]string, error) {
	return m.expiredFiles, nil
}

// stubRenderer skips real rendering so orchestration can be tested in
// isolation.
type stubRenderer struct {
	file *models.GeneratedFile
	err  error
}

func (s *stubRenderer) Render(_ *models.ReportDocument) (*models.GeneratedFile, error) {
	return s.file, s.err
}

func newTestService(t *testing.T, source ScanSource, ledger Ledger, renderer render.Renderer) *Service {
	t.Helper()
	svc := NewService(source, ledger, t.TempDir(), 30, nil)
	if renderer != nil {
		svc.newRenderer = func(models.ReportFormat, string) (render.Renderer, error) {
			return renderer, nil
		}
	}
	return svc
}

func TestGenerateValidation(t *testing.T) {
	tests := []struct {
		name string
		req  GenerateRequest
	}{
		{"missing fields", GenerateRequest{ReportType: "egg-quality"}},
		{"unknown report type", GenerateRequest{ReportType: "feed-usage", Period: "today", Format: "pdf"}},
		{"unsupported format", GenerateRequest{ReportType: "egg-quality", Period: "today", Format: "docx"}},
		{"custom without date", GenerateRequest{ReportType: "egg-quality", Period: "custom", Format: "csv"}},
		{"custom with garbage date", GenerateRequest{ReportType: "egg-quality", Period: "custom", Date: "soon", Format: "csv"}},
		{"range missing end", GenerateRequest{ReportType: "egg-quality", Period: "date_range", StartDate: "2026-01-01", Format: "csv"}},
		{"range start after end", GenerateRequest{ReportType: "egg-quality", Period: "date_range", StartDate: "2026-02-01", EndDate: "2026-01-01", Format: "csv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &mockScanSource{}
			ledger := &mockLedger{}
			svc := newTestService(t, source, ledger, &stubRenderer{})

			_, _, err := svc.Generate(context.Background(), 1, tt.req)

			require.ErrorIs(t, err, ErrInvalidRequest)
			assert.Empty(t, source.qualityCalls, "validation failures must not reach the data provider")
			assert.Empty(t, ledger.inserted)
		})
	}
}

func TestGenerateRecordsLedgerEntry(t *testing.T) {
	source := &mockScanSource{qualityResults: [][]models.QualityRow{qualityRows(3)}}
	ledger := &mockLedger{}
	file := &models.GeneratedFile{Path: "/tmp/x", Name: "egg-quality_today_1.csv", Size: 512}
	svc := newTestService(t, source, ledger, &stubRenderer{file: file})

	got, format, err := svc.Generate(context.Background(), 7, GenerateRequest{
		ReportType: "egg-quality", Period: "today", Format: "csv",
	})

	require.NoError(t, err)
	assert.Equal(t, models.FormatCSV, format)
	assert.Equal(t, file, got)

	require.Len(t, ledger.inserted, 1)
	entry := ledger.inserted[0]
	assert.Equal(t, int64(7), entry.UserID)
	assert.Equal(t, "Laporan Kualitas Telur - Hari Ini", entry.ReportName)
	assert.Equal(t, "egg-quality", entry.ReportType)
	assert.Equal(t, "csv", entry.FileFormat)
	assert.Equal(t, int64(512), entry.FileSize)
	assert.Equal(t, file.Name, entry.FilePath)
	require.NotNil(t, entry.ExpiresAt)
	assert.WithinDuration(t, time.Now().AddDate(0, 0, 30), *entry.ExpiresAt, time.Minute)

	var params models.ReportParameters
	require.NoError(t, json.Unmarshal([]byte(entry.Parameters), &params))
	assert.Equal(t, models.ReportEggQuality, params.ReportType)
	assert.Equal(t, models.PeriodToday, params.Period)
	assert.Equal(t, models.FormatCSV, params.Format)
}

func TestGenerateSurvivesLedgerFailure(t *testing.T) {
	source := &mockScanSource{qualityResults: [][]models.QualityRow{qualityRows(1)}}
	ledger := &mockLedger{insertErr: errors.New("reports table locked")}
	file := &models.GeneratedFile{Path: "/tmp/x", Name: "x.csv", Size: 10}
	svc := newTestService(t, source, ledger, &stubRenderer{file: file})

	got, _, err := svc.Generate(context.Background(), 1, GenerateRequest{
		ReportType: "egg-quality", Period: "today", Format: "csv",
	})

	require.NoError(t, err, "a failed ledger insert must not fail the download")
	assert.Equal(t, file, got)
}

func TestGenerateWrapsRenderFailure(t *testing.T) {
	source := &mockScanSource{qualityResults: [][]models.QualityRow{qualityRows(1)}}
	svc := newTestService(t, source, &mockLedger{}, &stubRenderer{err: errors.New("disk full")})

	_, _, err := svc.Generate(context.Background(), 1, GenerateRequest{
		ReportType: "egg-quality", Period: "today", Format: "pdf",
	})

	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidRequest)
	assert.Contains(t, err.Error(), "failed to generate pdf report")
}

func TestDownloadMissingFileIsNotFound(t *testing.T) {
	ledger := &mockLedger{downloadEntry: &models.Report{ReportID: 3, FilePath: "gone.pdf"}}
	svc := newTestService(t, &mockScanSource{}, ledger, nil)

	_, _, err := svc.Download(context.Background(), 1, 3)

	require.ErrorIs(t, err, mysql.ErrNotFound)
	assert.Empty(t, ledger.incremented, "a failed download must not count")
}

func TestDownloadCountsAndReturnsPath(t *testing.T) {
	ledger := &mockLedger{downloadEntry: &models.Report{ReportID: 3, FilePath: "kept.pdf"}}
	svc := newTestService(t, &mockScanSource{}, ledger, nil)
	require.NoError(t, os.WriteFile(filepath.Join(svc.reportsDir, "kept.pdf"), []byte("%PDF"), 0o644))

	entry, path, err := svc.Download(context.Background(), 1, 3)

	require.NoError(t, err)
	assert.Equal(t, int64(3), entry.ReportID)
	assert.Equal(t, filepath.Join(svc.reportsDir, "kept.pdf"), path)
	assert.Equal(t, []int64{3}, ledger.incremented)
}

func TestDeleteRemovesBackingFile(t *testing.T) {
	ledger := &mockLedger{deletedFile: "old.xlsx"}
	svc := newTestService(t, &mockScanSource{}, ledger, nil)
	path := filepath.Join(svc.reportsDir, "old.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("PK"), 0o644))

	require.NoError(t, svc.Delete(context.Background(), 1, 9))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteNotOwnedPropagatesNotFound(t *testing.T) {
	ledger := &mockLedger{deleteErr: mysql.ErrNotFound}
	svc := newTestService(t, &mockScanSource{}, ledger, nil)

	err := svc.Delete(context.Background(), 1, 9)

	require.ErrorIs(t, err, mysql.ErrNotFound)
}

func TestSweepExpiredReapsOrphanedFiles(t *testing.T) {
	svc := newTestService(t, &mockScanSource{}, &mockLedger{}, nil)

	stale := filepath.Join(svc.reportsDir, "egg-quality_today_1000000000000.csv")
	require.NoError(t, os.WriteFile(stale, []byte("x"), 0o644))
	old := time.Now().AddDate(0, 0, -90)
	require.NoError(t, os.Chtimes(stale, old, old))

	fresh := filepath.Join(svc.reportsDir, "production-stats_today_2000000000000.pdf")
	require.NoError(t, os.WriteFile(fresh, []byte("y"), 0o644))

	reaped, err := svc.SweepExpired(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, reaped)
	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "a file older than the retention window must be swept")
	_, err = os.Stat(fresh)
	assert.NoError(t, err, "a fresh file must survive the sweep")
}

func TestSweepExpiredRemovesFiles(t *testing.T) {
	ledger := &mockLedger{expiredFiles: []string{"a.pdf", "b.csv"}}
	svc := newTestService(t, &mockScanSource{}, ledger, nil)
	for _, name := range ledger.expiredFiles {
		require.NoError(t, os.WriteFile(filepath.Join(svc.reportsDir, name), []byte("x"), 0o644))
	}

	reaped, err := svc.SweepExpired(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, reaped)
	entries, err := os.ReadDir(svc.reportsDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

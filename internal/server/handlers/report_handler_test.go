package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eggspire/monitor/internal/domain/models"
	"github.com/eggspire/monitor/internal/repository/mysql"
	"github.com/eggspire/monitor/internal/service/report"
)

type fakeScans struct{}

func (fakeScans) QualityRows(_ context.Context, _ string, _ []any, _ int) ([]models.QualityRow, error) {
	id := int64(1)
	return []models.QualityRow{{ScanID: &id, EggCode: "EGG-001", Quality: "good", ScannedAt: time.Now()}}, nil
}

func (fakeScans) ProductionRows(_ context.Context, _ string, _ []any, _ int) ([]models.ProductionRow, error) {
	return nil, nil
}

type fakeLedger struct {
	inserted int
}

func (f *fakeLedger) Insert(context.Context, *models.Report) (int64, error) {
	f.inserted++
	return 1, nil
}

func (f *fakeLedger) History(context.Context, int64, string, string, int, int) ([]models.Report, int, error) {
	return []models.Report{}, 0, nil
}

func (f *fakeLedger) GetForDownload(context.Context, int64, int64) (*models.Report, error) {
	return nil, mysql.ErrNotFound
}

func (f *fakeLedger) IncrementDownloadCount(context.Context, int64) error { return nil }

func (f *fakeLedger) Delete(context.Context, int64, int64) (string, error) {
	return "", mysql.ErrNotFound
}

func (f *fakeLedger) DeleteExpired(context.Context) ([]string, error) { return nil, nil }

// injectUser stands in for the auth middleware.
func injectUser(user *models.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("currentUser", user)
		c.Next()
	}
}

func reportTestRouter(t *testing.T) (*gin.Engine, *fakeLedger, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	ledger := &fakeLedger{}
	svc := report.NewService(fakeScans{}, ledger, dir, 30, nil)
	h := NewReportHandler(svc, nil)

	r := gin.New()
	r.Use(injectUser(&models.User{UserID: 1, Role: models.RoleAdmin}))
	r.POST("/api/reports/generate", h.Generate)
	r.GET("/api/reports/history", h.History)
	r.GET("/api/reports/download/:reportId", h.Download)
	r.DELETE("/api/reports/:reportId", h.Delete)
	return r, ledger, dir
}

func TestGenerateStreamsCSVAndCleansUp(t *testing.T) {
	r, ledger, dir := reportTestRouter(t)

	body := `{"report_type":"egg-quality","period":"today","format":"csv"}`
	req := httptest.NewRequest(http.MethodPost, "/api/reports/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `attachment; filename="egg-quality_today_`)
	assert.Contains(t, w.Body.String(), "EGG-001")
	assert.Equal(t, 1, ledger.inserted)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "the temp file must be removed after streaming")
}

func TestGenerateRejectsMalformedBody(t *testing.T) {
	r, _, _ := reportTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/reports/generate", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid request body")
}

func TestGenerateRejectsInvalidRequest(t *testing.T) {
	r, ledger, _ := reportTestRouter(t)

	body := `{"report_type":"egg-quality","period":"today","format":"docx"}`
	req := httptest.NewRequest(http.MethodPost, "/api/reports/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unsupported format")
	assert.Zero(t, ledger.inserted)
}

func TestHistoryEnvelope(t *testing.T) {
	r, _, _ := reportTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/history?limit=5", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"success":true`)
	assert.Contains(t, w.Body.String(), `"reports":[]`)
	assert.Contains(t, w.Body.String(), `"total":0`)
}

func TestDownloadUnknownReport(t *testing.T) {
	r, _, _ := reportTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/download/42", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Report not found or expired")
}

func TestDownloadBadID(t *testing.T) {
	r, _, _ := reportTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/reports/download/abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteUnknownReport(t *testing.T) {
	r, _, _ := reportTestRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/reports/42", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "permission to delete")
}

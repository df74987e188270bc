package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eggspire/monitor/internal/domain/models"
	"github.com/eggspire/monitor/internal/repository/mysql"
	"github.com/eggspire/monitor/internal/server/middleware"
	"github.com/eggspire/monitor/internal/service/report"
)

// ReportHandler exposes report generation, history, download and delete.
type ReportHandler struct {
	svc    *report.Service
	logger *zap.Logger
}

// NewReportHandler constructs the HTTP handler adapter.
func NewReportHandler(svc *report.Service, logger *zap.Logger) *ReportHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{svc: svc, logger: logger}
}

// Generate renders a report and streams it back as an attachment. The
// temporary file is removed once the response is written, on the error
// path included.
func (h *ReportHandler) Generate(c *gin.Context) {
	var req report.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid request body"})
		return
	}

	user := middleware.CurrentUser(c)
	file, format, err := h.svc.Generate(c.Request.Context(), user.UserID, req)
	if err != nil {
		if errors.Is(err, report.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}
		h.logger.Error("report generation failed", zap.Error(err),
			zap.String("request_id", middleware.GetRequestID(c)))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	defer func() {
		if err := os.Remove(file.Path); err != nil && !os.IsNotExist(err) {
			h.logger.Warn("failed to delete temp report file", zap.String("path", file.Path), zap.Error(err))
		}
	}()

	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, file.Name))
	c.Header("Content-Length", strconv.FormatInt(file.Size, 10))
	c.File(file.Path)
}

// History lists the caller's non-expired generated reports.
func (h *ReportHandler) History(c *gin.Context) {
	limit := queryInt(c, "limit", 10)
	offset := queryInt(c, "offset", 0)
	reportType := c.Query("report_type")
	format := c.Query("format")

	user := middleware.CurrentUser(c)
	reports, total, err := h.svc.History(c.Request.Context(), user.UserID, reportType, format, limit, offset)
	if err != nil {
		h.logger.Error("failed to fetch report history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch report history"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"reports": reports, "total": total},
	})
}

// Download streams a previously generated report by ledger id.
func (h *ReportHandler) Download(c *gin.Context) {
	reportID, err := strconv.ParseInt(c.Param("reportId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid report id"})
		return
	}

	user := middleware.CurrentUser(c)
	entry, path, err := h.svc.Download(c.Request.Context(), user.UserID, reportID)
	if err != nil {
		if errors.Is(err, mysql.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Report not found or expired"})
			return
		}
		h.logger.Error("failed to download report", zap.Int64("report_id", reportID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to download report"})
		return
	}

	format := models.ReportFormat(entry.FileFormat)
	c.Header("Content-Type", format.ContentType())
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, entry.FilePath))
	c.File(path)
}

// Delete removes a report from the caller's history.
func (h *ReportHandler) Delete(c *gin.Context) {
	reportID, err := strconv.ParseInt(c.Param("reportId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid report id"})
		return
	}

	user := middleware.CurrentUser(c)
	if err := h.svc.Delete(c.Request.Context(), user.UserID, reportID); err != nil {
		if errors.Is(err, mysql.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Report not found or you do not have permission to delete it",
			})
			return
		}
		h.logger.Error("failed to delete report", zap.Int64("report_id", reportID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to delete report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Report deleted successfully"})
}

// queryInt parses a non-negative integer query parameter with a default.
func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

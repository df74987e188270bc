package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eggspire/monitor/internal/repository/mysql"
)

// DashboardHandler serves the aggregate views behind the landing page.
type DashboardHandler struct {
	scans  *mysql.ScanRepository
	logger *zap.Logger
}

// NewDashboardHandler constructs the HTTP handler adapter.
func NewDashboardHandler(scans *mysql.ScanRepository, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{scans: scans, logger: logger}
}

// Summary returns today's scan totals and quality rates.
func (h *DashboardHandler) Summary(c *gin.Context) {
	stats, err := h.scans.Statistics(c.Request.Context(), 1)
	if err != nil {
		h.logger.Error("failed to build dashboard summary", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch dashboard summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// WeeklyStats returns per-day counts for the trailing seven days.
func (h *DashboardHandler) WeeklyStats(c *gin.Context) {
	summaries, err := h.scans.DailySummaries(c.Request.Context(), 7)
	if err != nil {
		h.logger.Error("failed to build weekly stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch weekly stats"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"days": summaries}})
}

// SystemHealth reports database liveness and scan-feed freshness.
func (h *DashboardHandler) SystemHealth(c *gin.Context) {
	dbStatus := "connected"
	if err := h.scans.Ping(c.Request.Context()); err != nil {
		h.logger.Warn("database health check failed", zap.Error(err))
		dbStatus = "unreachable"
	}

	scannerStatus := "idle"
	latest, err := h.scans.LatestScanTime(c.Request.Context())
	if err != nil {
		h.logger.Warn("failed to read latest scan time", zap.Error(err))
		scannerStatus = "unknown"
	} else if latest != nil && time.Since(*latest) < 15*time.Minute {
		scannerStatus = "active"
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"database":  dbStatus,
			"scanner":   scannerStatus,
			"last_scan": latest,
		},
	})
}

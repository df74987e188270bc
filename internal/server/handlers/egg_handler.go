package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/eggspire/monitor/internal/repository/mysql"
)

// EggHandler exposes read access to persisted egg-scan records.
type EggHandler struct {
	scans  *mysql.ScanRepository
	logger *zap.Logger
}

// NewEggHandler constructs the HTTP handler adapter.
func NewEggHandler(scans *mysql.ScanRepository, logger *zap.Logger) *EggHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EggHandler{scans: scans, logger: logger}
}

// List returns scans newest first with optional quality/date filters.
func (h *EggHandler) List(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)
	filter := mysql.ScanFilter{
		Quality:   c.Query("quality"),
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}

	scans, total, err := h.scans.List(c.Request.Context(), filter, limit, offset)
	if err != nil {
		h.logger.Error("failed to list scans", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch egg scans"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"eggs": scans, "total": total},
	})
}

// Recent returns the latest scans for the live dashboard feed.
func (h *EggHandler) Recent(c *gin.Context) {
	limit := queryInt(c, "limit", 10)

	scans, err := h.scans.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed to fetch recent scans", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch recent eggs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"eggs": scans}})
}

// Statistics aggregates scan outcomes over a trailing window (days=0
// means all time).
func (h *EggHandler) Statistics(c *gin.Context) {
	days := queryInt(c, "days", 0)

	stats, err := h.scans.Statistics(c.Request.Context(), days)
	if err != nil {
		h.logger.Error("failed to compute statistics", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch egg statistics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// DailySummary groups counts by day over the trailing window.
func (h *EggHandler) DailySummary(c *gin.Context) {
	days := queryInt(c, "days", 7)

	summaries, err := h.scans.DailySummaries(c.Request.Context(), days)
	if err != nil {
		h.logger.Error("failed to fetch daily summaries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch daily summary"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"days": summaries}})
}

// Get returns one scan record by id.
func (h *EggHandler) Get(c *gin.Context) {
	scanID, err := strconv.ParseInt(c.Param("scanId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "invalid scan id"})
		return
	}

	scan, err := h.scans.GetByID(c.Request.Context(), scanID)
	if err != nil {
		if errors.Is(err, mysql.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Egg scan not found"})
			return
		}
		h.logger.Error("failed to get scan", zap.Int64("scan_id", scanID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch egg scan"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{"egg": scan}})
}

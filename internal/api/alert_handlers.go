package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dbward/dbward/internal/middleware"
	"github.com/dbward/dbward/internal/service"
)

type AlertHandler struct {
	alerting *service.AlertingService
}

func NewAlertHandler(alerting *service.AlertingService) *AlertHandler {
	return &AlertHandler{alerting: alerting}
}

// ListAlerts handles GET /api/alerts
func (h *AlertHandler) ListAlerts(c *gin.Context) {
	counters, err := h.alerting.Feed()
	if err != nil {
		middleware.HandleAppError(c, middleware.NewInternalError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"threshold": h.alerting.Threshold(),
		"alerts":    counters,
		"count":     len(counters),
	})
}

// GetDatabaseStatus handles GET /api/databases/:id/status
func (h *AlertHandler) GetDatabaseStatus(c *gin.Context) {
	counter, alerting, err := h.alerting.Status(c.Param("id"))
	if err != nil {
		middleware.HandleAppError(c, middleware.NewInternalError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"database_id":          counter.DatabaseID,
		"consecutive_failures": counter.ConsecutiveFailures,
		"last_error":           counter.LastError,
		"alerting":             alerting,
	})
}

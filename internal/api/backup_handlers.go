package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dbward/dbward/internal/middleware"
	"github.com/dbward/dbward/internal/models"
	"github.com/dbward/dbward/internal/repository"
	"github.com/dbward/dbward/internal/service"
)

type BackupHandler struct {
	scheduler  *service.Scheduler
	resultRepo *repository.ResultRepository
}

func NewBackupHandler(scheduler *service.Scheduler, resultRepo *repository.ResultRepository) *BackupHandler {
	return &BackupHandler{
		scheduler:  scheduler,
		resultRepo: resultRepo,
	}
}

// TriggerBackup handles POST /api/databases/:id/backups
func (h *BackupHandler) TriggerBackup(c *gin.Context) {
	databaseID := c.Param("id")

	var req struct {
		Tier string `json:"tier" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleAppError(c, middleware.NewBadRequestError(err.Error()))
		return
	}

	tier, ok := parseTier(req.Tier)
	if !ok {
		middleware.HandleAppError(c, middleware.NewBadRequestError("unknown tier: "+req.Tier))
		return
	}

	job, err := h.scheduler.EnqueueManual(databaseID, tier)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrJobInFlight):
			middleware.HandleAppError(c, middleware.NewConflictError(err.Error()))
		case errors.Is(err, gorm.ErrRecordNotFound):
			middleware.HandleAppError(c, middleware.NewNotFoundError("database"))
		default:
			middleware.HandleAppError(c, middleware.NewInternalError(err))
		}
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"message": "backup job enqueued",
		"job":     job,
	})
}

// ListBackups handles GET /api/databases/:id/backups
func (h *BackupHandler) ListBackups(c *gin.Context) {
	databaseID := c.Param("id")

	var tier models.TierKind
	if t := c.Query("tier"); t != "" {
		parsed, ok := parseTier(t)
		if !ok {
			middleware.HandleAppError(c, middleware.NewBadRequestError("unknown tier: "+t))
			return
		}
		tier = parsed
	}

	limit := 50
	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			middleware.HandleAppError(c, middleware.NewBadRequestError("limit must be a positive integer"))
			return
		}
		limit = parsed
	}

	results, err := h.resultRepo.FindByDatabase(databaseID, tier, limit)
	if err != nil {
		middleware.HandleAppError(c, middleware.NewInternalError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"backups": results,
		"count":   len(results),
	})
}

// GetBackup handles GET /api/backups/:id
func (h *BackupHandler) GetBackup(c *gin.Context) {
	result, err := h.resultRepo.FindByID(c.Param("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			middleware.HandleAppError(c, middleware.NewNotFoundError("backup"))
			return
		}
		middleware.HandleAppError(c, middleware.NewInternalError(err))
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseTier(s string) (models.TierKind, bool) {
	for _, kind := range models.AllTiers {
		if string(kind) == s {
			return kind, true
		}
	}
	return "", false
}

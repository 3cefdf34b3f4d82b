package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dbward/dbward/internal/events"
	"github.com/dbward/dbward/internal/middleware"
)

// EventHandler exposes the stored event stream
type EventHandler struct{}

func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// ListEvents handles GET /api/events
func (h *EventHandler) ListEvents(c *gin.Context) {
	filters := events.EventFilters{
		DatabaseID: c.Query("database_id"),
	}

	for _, t := range c.QueryArray("type") {
		filters.Types = append(filters.Types, events.EventType(t))
	}

	if s := c.Query("start"); s != "" {
		parsed, err := time.Parse(time.RFC3339, s)
		if err != nil {
			middleware.HandleAppError(c, middleware.NewBadRequestError("start must be RFC3339"))
			return
		}
		filters.StartTime = parsed
	}

	if e := c.Query("end"); e != "" {
		parsed, err := time.Parse(time.RFC3339, e)
		if err != nil {
			middleware.HandleAppError(c, middleware.NewBadRequestError("end must be RFC3339"))
			return
		}
		filters.EndTime = parsed
	}

	if l := c.Query("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			middleware.HandleAppError(c, middleware.NewBadRequestError("limit must be a positive integer"))
			return
		}
		filters.Limit = parsed
	}

	list, err := events.GetEventBus().Query(filters)
	if err != nil {
		middleware.HandleAppError(c, middleware.NewInternalError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events": list,
		"count":  len(list),
	})
}

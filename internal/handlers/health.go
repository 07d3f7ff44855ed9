package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/taskhive/taskhive/internal/models"
	"github.com/taskhive/taskhive/internal/services"
)

// HealthHandler provides health check endpoints.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// CheckHealth returns the health status of all subsystems.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	// Database check
	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	// Queue mode
	notifyQueue := services.GetNotifyQueue()
	queueMode := "sync"
	if notifyQueue != nil && notifyQueue.IsAsync() {
		queueMode = "async (Redis)"
	}

	var pendingInvites int64
	models.GetDB().Model(&models.WorkspaceInvite{}).
		Where("accepted_at IS NULL").
		Count(&pendingInvites)

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "taskhive",
		"components": gin.H{
			"database":        dbStatus,
			"queue_mode":      queueMode,
			"pending_invites": pendingInvites,
		},
	})
}

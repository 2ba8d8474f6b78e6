package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"citypulse/internal/models"
	"citypulse/internal/repository"
)

// ResetNotifications - POST /api/notifications/reset
// Очистить журнал отправленных уведомлений
func (h *Handlers) ResetNotifications(c *gin.Context) {
	if err := h.engine.Notifier().Reset(c.Request.Context()); err != nil {
		slog.Error("Failed to reset notification ledger", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset notifications"})
		return
	}
	c.Status(http.StatusNoContent)
}

// SetNotificationsEnabled - PUT /api/notifications/enabled
func (h *Handlers) SetNotificationsEnabled(c *gin.Context) {
	var req models.SetNotificationsEnabledRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Enabled == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "enabled is required"})
		return
	}

	h.engine.Notifier().SetEnabled(*req.Enabled)

	// Настройка переживает перезапуск, если подключено хранилище
	if h.preferences != nil {
		if err := h.preferences.SetBool(c.Request.Context(), repository.PrefNotificationsEnabled, *req.Enabled); err != nil {
			slog.Error("Failed to persist notification preference", "error", err)
		}
	}

	c.Status(http.StatusNoContent)
}

// internal/handler/settings.go
package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"card-assistant/internal/domain"
	"card-assistant/internal/storage"
)

type SettingsHandler struct {
	store *storage.Store
}

func NewSettingsHandler(store *storage.Store) *SettingsHandler {
	return &SettingsHandler{store: store}
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Settings(c.Request.Context()))
}

func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req domain.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := h.store.SaveSettings(c.Request.Context(), req); err != nil {
		slog.Error("Failed to save settings", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

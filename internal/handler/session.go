// internal/handler/session.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"card-assistant/internal/session"
)

type SessionHandler struct {
	manager *session.Manager
}

func NewSessionHandler(manager *session.Manager) *SessionHandler {
	return &SessionHandler{manager: manager}
}

type PageUpdateRequest struct {
	URL  string `json:"url" validate:"notblank"`
	HTML string `json:"html" validate:"notblank"`
}

// UpdatePage feeds the latest snapshot of a monitored page into its
// session, creating the session on first contact.
func (h *SessionHandler) UpdatePage(c *gin.Context) {
	id := c.Param("id")
	var req PageUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if err := validateStruct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctrl := h.manager.GetOrCreate(id)
	if err := ctrl.UpdatePage(req.URL, req.HTML); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Recommendation returns the currently surfaced recommendation for a
// session, or null when nothing is shown.
func (h *SessionHandler) Recommendation(c *gin.Context) {
	ctrl := h.manager.Get(c.Param("id"))
	if ctrl == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendation": ctrl.Recommendation()})
}

// Dismiss hides the recommendation on explicit user request.
func (h *SessionHandler) Dismiss(c *gin.Context) {
	ctrl := h.manager.Get(c.Param("id"))
	if ctrl == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown session"})
		return
	}
	ctrl.Dismiss(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Close tears a session down when the page goes away.
func (h *SessionHandler) Close(c *gin.Context) {
	h.manager.Close(c.Param("id"))
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

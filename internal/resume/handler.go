package resume

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler exposes the session marker to the web client
type Handler struct {
	tracker *Tracker
	logger  *zap.Logger
}

// NewHandler creates a resume handler
func NewHandler(tracker *Tracker, logger *zap.Logger) *Handler {
	return &Handler{tracker: tracker, logger: logger}
}

// RegisterRoutes registers session marker routes
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	session := router.Group("/session")
	{
		session.GET("/:client", h.getMarker)
		session.PUT("/:client", h.putMarker)
		session.DELETE("/:client", h.clearMarker)
	}
}

// getMarker handles GET /api/v1/session/:client
func (h *Handler) getMarker(c *gin.Context) {
	marker, err := h.tracker.Load(c.Request.Context(), c.Param("client"))
	if err != nil {
		h.logger.Error("Failed to load session marker", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if marker == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no stored session"})
		return
	}
	c.JSON(http.StatusOK, marker)
}

// putMarker handles PUT /api/v1/session/:client
func (h *Handler) putMarker(c *gin.Context) {
	var marker Marker
	if err := c.ShouldBindJSON(&marker); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if marker.CurrentPage == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "current_page is required"})
		return
	}

	if err := h.tracker.Save(c.Request.Context(), c.Param("client"), marker); err != nil {
		h.logger.Error("Failed to save session marker", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, marker)
}

// clearMarker handles DELETE /api/v1/session/:client
func (h *Handler) clearMarker(c *gin.Context) {
	if err := h.tracker.Clear(c.Request.Context(), c.Param("client")); err != nil {
		h.logger.Error("Failed to clear session marker", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

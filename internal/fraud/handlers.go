package fraud

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler exposes the on-demand scan endpoint.
type Handler struct {
	detector *Detector
}

// NewHandler creates a fraud handler.
func NewHandler(detector *Detector) *Handler {
	return &Handler{detector: detector}
}

// RegisterRoutes sets up fraud routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/fraud/scan", h.RunScan)
}

// RunScan handles POST /v1/fraud/scan
func (h *Handler) RunScan(c *gin.Context) {
	summary, err := h.detector.RunOnce(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"scan": summary})
}

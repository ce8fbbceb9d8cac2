package alerts

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Handler provides HTTP endpoints for the operator alert console.
type Handler struct {
	store Store
}

// NewHandler creates an alerts handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes sets up alert routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/alerts", h.ListAlerts)
	r.POST("/alerts/:id/dismiss", h.DismissAlert)
}

// ListAlerts handles GET /v1/alerts?status=pending&user_id=...&limit=...
func (h *Handler) ListAlerts(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 500 {
			limit = parsed
		}
	}

	var (
		list []*Alert
		err  error
	)
	if userID := c.Query("user_id"); userID != "" {
		list, err = h.store.ListByUser(c.Request.Context(), userID, limit)
	} else {
		// Only the pending view exists; resolved alerts are reachable
		// per user or by ID.
		list, err = h.store.ListPending(c.Request.Context(), limit)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	if list == nil {
		list = []*Alert{}
	}
	c.JSON(http.StatusOK, gin.H{"alerts": list, "count": len(list)})
}

// DismissAlert handles POST /v1/alerts/:id/dismiss
func (h *Handler) DismissAlert(c *gin.Context) {
	id := c.Param("id")

	if err := h.store.Dismiss(c.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "No alert with this ID",
			})
		case errors.Is(err, ErrAlreadyResolved):
			c.JSON(http.StatusConflict, gin.H{
				"error":   "already_resolved",
				"message": "Alert was already dismissed",
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "internal_error",
				"message": err.Error(),
			})
		}
		return
	}

	alert, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"dismissed": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"dismissed": true, "alert": alert})
}

package trust

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mindhaven/trustengine/internal/validation"
)

// Handler exposes read-only trust record access for operator tooling.
type Handler struct {
	service *Service
}

// NewHandler creates a trust handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes sets up trust routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/trust/:user_id", h.GetTrustScore)
}

// GetTrustScore handles GET /v1/trust/:user_id
func (h *Handler) GetTrustScore(c *gin.Context) {
	userID := c.Param("user_id")
	if !validation.IsValidUserID(userID) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "user_id is not valid",
		})
		return
	}

	record, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "not_found",
				"message": "No trust record for this user",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"trust": gin.H{
			"userId":                   record.UserID,
			"level":                    record.Level,
			"confidence":               record.Confidence,
			"verificationCount":        record.VerificationCount,
			"ipConsistency":            record.IPConsistency,
			"behavioralConsistency":    record.BehavioralConsistency,
			"paymentConsistency":       record.PaymentConsistency,
			"availableDiscountPercent": h.service.AvailableDiscount(record.Level),
			"updatedAt":                record.UpdatedAt,
		},
	})
}

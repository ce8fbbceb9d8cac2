package region

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mindhaven/trustengine/internal/geoip"
	"github.com/mindhaven/trustengine/internal/validation"
)

// Handler provides HTTP endpoints for region detection and preferences.
type Handler struct {
	service  *Service
	resolver geoip.Resolver
}

// NewHandler creates a region handler.
func NewHandler(service *Service, resolver geoip.Resolver) *Handler {
	return &Handler{service: service, resolver: resolver}
}

// RegisterRoutes sets up region routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/region/detect", h.DetectRegion)
	r.PUT("/region/preference", h.SetPreference)
}

type detectRequest struct {
	UserID             string `json:"user_id" binding:"required"`
	TimezoneOffset     int    `json:"timezone_offset"`
	LanguagePreference string `json:"language_preference"`
}

// DetectRegion handles POST /v1/region/detect
func (h *Handler) DetectRegion(c *gin.Context) {
	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}
	if !validation.IsValidUserID(req.UserID) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "user_id is not valid",
		})
		return
	}

	prefs, err := h.service.Detect(c.Request.Context(), req.UserID, h.signals(c, req))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

type preferenceRequest struct {
	UserID             string `json:"user_id" binding:"required"`
	Country            string `json:"country" binding:"required"`
	TimezoneOffset     int    `json:"timezone_offset"`
	LanguagePreference string `json:"language_preference"`
}

// SetPreference handles PUT /v1/region/preference
func (h *Handler) SetPreference(c *gin.Context) {
	var req preferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}
	if !validation.IsValidUserID(req.UserID) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": "user_id is not valid",
		})
		return
	}

	sig := h.signals(c, detectRequest{
		UserID:             req.UserID,
		TimezoneOffset:     req.TimezoneOffset,
		LanguagePreference: req.LanguagePreference,
	})
	prefs, err := h.service.SetPreference(c.Request.Context(), req.UserID, req.Country, sig)
	if err != nil {
		if errors.Is(err, ErrInvalidCountry) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid_country",
				"message": "country must be an ISO 3166-1 alpha-2 code",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

func (h *Handler) signals(c *gin.Context, req detectRequest) Signals {
	return Signals{
		DetectedCountry:    h.resolver.Country(c.Request),
		IPAddress:          c.ClientIP(),
		TimezoneOffset:     req.TimezoneOffset,
		LanguagePreference: req.LanguagePreference,
		UserAgent:          c.Request.UserAgent(),
	}
}

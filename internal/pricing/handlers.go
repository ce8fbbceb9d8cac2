package pricing

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mindhaven/trustengine/internal/behavior"
	"github.com/mindhaven/trustengine/internal/geoip"
)

// Handler provides the pricing calculation endpoint.
type Handler struct {
	calculator *Calculator
	recorder   *behavior.Recorder
	resolver   geoip.Resolver
	logger     *slog.Logger
}

// NewHandler creates a pricing handler.
func NewHandler(calculator *Calculator, recorder *behavior.Recorder, resolver geoip.Resolver, logger *slog.Logger) *Handler {
	return &Handler{calculator: calculator, recorder: recorder, resolver: resolver, logger: logger}
}

// RegisterRoutes sets up pricing routes.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/pricing/calculate", h.CalculatePricing)
}

type calculateRequest struct {
	BasePrice       float64 `json:"base_price" binding:"required"`
	CountryCode     string  `json:"country_code"`
	OverrideCountry string  `json:"override_country"`
	EnablePPP       *bool   `json:"enable_ppp"` // regional discounts are on unless explicitly disabled
	IsBusiness      bool    `json:"is_business"`
	VATNumber       string  `json:"vat_number"`
	UserID          string  `json:"user_id"`
}

// CalculatePricing handles POST /v1/pricing/calculate
func (h *Handler) CalculatePricing(c *gin.Context) {
	var req calculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}

	detected := h.resolver.Country(c.Request)
	country := req.CountryCode
	if country == "" {
		country = detected
	}

	enablePPP := true
	if req.EnablePPP != nil {
		enablePPP = *req.EnablePPP
	}

	result, err := h.calculator.Calculate(c.Request.Context(), Request{
		BasePrice:       req.BasePrice,
		CountryCode:     country,
		OverrideCountry: req.OverrideCountry,
		EnablePPP:       enablePPP,
		IsBusiness:      req.IsBusiness,
		VATNumber:       req.VATNumber,
		UserID:          req.UserID,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid_request",
			"message": err.Error(),
		})
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "pricing_unavailable",
			"message": "No pricing rule for the requested region",
		})
		return
	}

	if req.UserID != "" {
		if _, err := h.recorder.Record(c.Request.Context(), req.UserID, behavior.EventPricingCalculation, behavior.Signals{
			CountryClaimed:  result.CountryCode,
			CountryDetected: detected,
			IPAddress:       c.ClientIP(),
			UserAgent:       c.Request.UserAgent(),
		}); err != nil {
			h.logger.Warn("pricing event not recorded", "user_id", req.UserID, "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"pricing": result})
}

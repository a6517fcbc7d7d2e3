package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tableside-api/internal/application/service"
	"github.com/sangkips/tableside-api/internal/presentation/http/dto/request"
	"github.com/sangkips/tableside-api/internal/presentation/http/dto/response"
)

// SettingsHandler handles outlet settings requests
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// GetSettings returns the current outlet and its settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	outlet, err := h.settingsService.GetSettings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Settings retrieved successfully", outlet)
}

// UpdateSettings replaces the current outlet's settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req request.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	outlet, err := h.settingsService.UpdateSettings(c.Request.Context(), &service.UpdateSettingsInput{
		Currency:          req.Currency,
		DefaultTaxPercent: req.DefaultTaxPercent,
		TaxLabel:          req.TaxLabel,
		Address:           req.Address,
		Phone:             req.Phone,
		TaxID:             req.TaxID,
		ReceiptFooter:     req.ReceiptFooter,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Settings updated successfully", outlet)
}

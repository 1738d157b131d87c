package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scopecraft/estimation-api/internal/logger"
	"github.com/scopecraft/estimation-api/internal/metrics"
	"github.com/scopecraft/estimation-api/internal/middleware"
	"github.com/scopecraft/estimation-api/internal/model"
	"github.com/scopecraft/estimation-api/internal/repository"
	"github.com/scopecraft/estimation-api/internal/service"
)

// SettingsHandler serves per-company estimation settings
type SettingsHandler struct {
	settings  *repository.SettingsRepository
	estimates *service.EstimateService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings *repository.SettingsRepository, estimates *service.EstimateService) *SettingsHandler {
	return &SettingsHandler{
		settings:  settings,
		estimates: estimates,
	}
}

// Get returns the company's estimation settings
func (h *SettingsHandler) Get(c *gin.Context) {
	settings, err := h.settings.Get(c.Request.Context(), middleware.GetCompanyID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Response{Success: true, Data: settings})
}

// Update applies a partial settings update, creating the row with defaults
// when the company has none yet.
func (h *SettingsHandler) Update(c *gin.Context) {
	var payload model.SettingsUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}

	companyID := middleware.GetCompanyID(c)
	settings, err := h.settings.Upsert(c.Request.Context(), companyID, payload)
	if err != nil {
		respondError(c, err)
		return
	}

	h.estimates.InvalidateCompany(companyID)

	metrics.Get().IncrementSettingsUpdates()
	logger.Audit(c.Request.Context(), logger.AuditEvent{
		Action:   logger.AuditActionSettingsUpdate,
		Resource: "estimation_settings",
		Success:  true,
	})

	c.JSON(http.StatusOK, model.Response{
		Success: true,
		Message: "estimation settings updated successfully",
		Data:    settings,
	})
}

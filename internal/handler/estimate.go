package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scopecraft/estimation-api/internal/logger"
	"github.com/scopecraft/estimation-api/internal/middleware"
	"github.com/scopecraft/estimation-api/internal/model"
	"github.com/scopecraft/estimation-api/internal/service"
)

// EstimateHandler serves ad-hoc estimation calculations
type EstimateHandler struct {
	estimates *service.EstimateService
	webhooks  *service.WebhookService
}

// NewEstimateHandler creates a new estimate handler
func NewEstimateHandler(estimates *service.EstimateService, webhooks *service.WebhookService) *EstimateHandler {
	return &EstimateHandler{
		estimates: estimates,
		webhooks:  webhooks,
	}
}

// Calculate runs an estimation for the posted breakdown structure.
// With webhook_url set, the calculation runs in the background and the
// report is delivered to the webhook; the response only acknowledges.
func (h *EstimateHandler) Calculate(c *gin.Context) {
	var req model.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if len(req.WBS.Modules) == 0 {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "wbs.modules cannot be empty",
		})
		return
	}

	companyID := middleware.GetCompanyID(c)

	if req.WebhookURL != "" {
		go h.processAsync(c.Request.Context(), companyID, req)

		c.JSON(http.StatusAccepted, model.Response{Success: true})
		return
	}

	report, err := h.estimates.Calculate(c.Request.Context(), companyID, req.WBS, req.Pricing)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Audit(c.Request.Context(), logger.AuditEvent{
		Action:   logger.AuditActionEstimateCalculate,
		Resource: "estimate",
		Success:  true,
		Details: map[string]interface{}{
			"modules":     len(req.WBS.Modules),
			"total_hours": report.Totals.Hours,
		},
	})

	c.JSON(http.StatusOK, model.Response{Success: true, Data: report})
}

// processAsync calculates in the background and pushes the result to the
// caller's webhook.
func (h *EstimateHandler) processAsync(parent context.Context, companyID string, req model.EstimateRequest) {
	// Detach from the request lifecycle but keep the request logger fields
	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), 2*time.Minute)
	defer cancel()

	log := logger.Get(ctx)

	report, err := h.estimates.Calculate(ctx, companyID, req.WBS, req.Pricing)
	if err != nil {
		log.Warn().Err(err).Msg("Async estimation failed")
		if webhookErr := h.webhooks.SendError(ctx, req.WebhookURL, err); webhookErr != nil {
			log.Error().Err(webhookErr).Msg("Failed to deliver error webhook")
		}
		return
	}

	if err := h.webhooks.SendReport(ctx, req.WebhookURL, report); err != nil {
		log.Error().Err(err).Msg("Failed to deliver report webhook")
	}
}

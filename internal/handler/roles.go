package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/scopecraft/estimation-api/internal/logger"
	"github.com/scopecraft/estimation-api/internal/metrics"
	"github.com/scopecraft/estimation-api/internal/middleware"
	"github.com/scopecraft/estimation-api/internal/model"
	"github.com/scopecraft/estimation-api/internal/repository"
	"github.com/scopecraft/estimation-api/internal/service"
)

// RoleHandler serves resource role management
type RoleHandler struct {
	rates     *repository.RateRepository
	estimates *service.EstimateService
}

// NewRoleHandler creates a new role handler
func NewRoleHandler(rates *repository.RateRepository, estimates *service.EstimateService) *RoleHandler {
	return &RoleHandler{
		rates:     rates,
		estimates: estimates,
	}
}

// List returns the roles visible to the company
func (h *RoleHandler) List(c *gin.Context) {
	roles, err := h.rates.ListRoles(c.Request.Context(), middleware.GetCompanyID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if roles == nil {
		roles = []model.ResourceRole{}
	}
	c.JSON(http.StatusOK, model.Response{Success: true, Data: roles})
}

// Create adds a company custom role
func (h *RoleHandler) Create(c *gin.Context) {
	var payload model.RoleCreate
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}

	companyID := middleware.GetCompanyID(c)
	role, err := h.rates.CreateCustom(c.Request.Context(), companyID, payload)
	if err != nil {
		respondError(c, err)
		return
	}

	// Rate map changed; drop the cached copy
	h.estimates.InvalidateCompany(companyID)

	metrics.Get().IncrementRoles()
	logger.Audit(c.Request.Context(), logger.AuditEvent{
		Action:     logger.AuditActionRoleCreate,
		Resource:   "resource_role",
		ResourceID: role.Name,
		Success:    true,
	})

	c.JSON(http.StatusCreated, model.Response{Success: true, Data: role})
}

// Update applies a partial role update
func (h *RoleHandler) Update(c *gin.Context) {
	roleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "invalid role ID",
		})
		return
	}

	var payload model.RoleUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}

	companyID := middleware.GetCompanyID(c)

	before, err := h.rates.GetRole(c.Request.Context(), companyID, roleID)
	if err != nil {
		respondError(c, err)
		return
	}

	role, err := h.rates.UpdateRole(c.Request.Context(), companyID, roleID, payload)
	if err != nil {
		respondError(c, err)
		return
	}

	h.estimates.InvalidateCompany(companyID)

	if role.HourlyRate != before.HourlyRate {
		metrics.Get().IncrementRateChanges()
		logger.AuditRateChange(c.Request.Context(), role.Name, before.HourlyRate, role.HourlyRate)
	}

	c.JSON(http.StatusOK, model.Response{Success: true, Data: role})
}

// Delete deactivates a custom role
func (h *RoleHandler) Delete(c *gin.Context) {
	roleID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "invalid role ID",
		})
		return
	}

	companyID := middleware.GetCompanyID(c)
	if err := h.rates.DeactivateRole(c.Request.Context(), companyID, roleID); err != nil {
		respondError(c, err)
		return
	}

	h.estimates.InvalidateCompany(companyID)

	logger.Audit(c.Request.Context(), logger.AuditEvent{
		Action:     logger.AuditActionRoleDelete,
		Resource:   "resource_role",
		ResourceID: strconv.Itoa(roleID),
		Success:    true,
	})

	c.JSON(http.StatusOK, model.Response{Success: true, Message: "role removed successfully"})
}

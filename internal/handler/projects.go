package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/scopecraft/estimation-api/internal/logger"
	"github.com/scopecraft/estimation-api/internal/metrics"
	"github.com/scopecraft/estimation-api/internal/middleware"
	"github.com/scopecraft/estimation-api/internal/model"
	"github.com/scopecraft/estimation-api/internal/repository"
	"github.com/scopecraft/estimation-api/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ProjectHandler serves project CRUD and the persisted estimation flow
type ProjectHandler struct {
	projects  *repository.ProjectRepository
	estimates *service.EstimateService
	exporter  *service.ExcelExporter
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(projects *repository.ProjectRepository, estimates *service.EstimateService, exporter *service.ExcelExporter) *ProjectHandler {
	return &ProjectHandler{
		projects:  projects,
		estimates: estimates,
		exporter:  exporter,
	}
}

// Create registers a new project in DRAFT status
func (h *ProjectHandler) Create(c *gin.Context) {
	var payload model.ProjectCreate
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}

	project, err := h.projects.Create(c.Request.Context(), middleware.GetCompanyID(c), payload)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.Get().IncrementProjects(true)
	logger.Audit(c.Request.Context(), logger.AuditEvent{
		Action:     logger.AuditActionProjectCreate,
		Resource:   "project",
		ResourceID: project.ID,
		Success:    true,
	})

	c.JSON(http.StatusCreated, model.Response{Success: true, Data: project})
}

// List returns the company's projects, newest first
func (h *ProjectHandler) List(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "invalid pagination params",
		})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 100 {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "invalid pagination params",
		})
		return
	}

	projects, err := h.projects.List(c.Request.Context(), middleware.GetCompanyID(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	if projects == nil {
		projects = []model.Project{}
	}
	c.JSON(http.StatusOK, model.Response{Success: true, Data: projects})
}

// Get returns a single project
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projects.Get(c.Request.Context(), middleware.GetCompanyID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Response{Success: true, Data: project})
}

// Update applies a partial project update
func (h *ProjectHandler) Update(c *gin.Context) {
	var payload model.ProjectUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		bindError(c, err)
		return
	}

	project, err := h.projects.Update(c.Request.Context(), middleware.GetCompanyID(c), c.Param("id"), payload)
	if err != nil {
		respondError(c, err)
		return
	}

	logger.Audit(c.Request.Context(), logger.AuditEvent{
		Action:     logger.AuditActionProjectUpdate,
		Resource:   "project",
		ResourceID: project.ID,
		Success:    true,
	})

	c.JSON(http.StatusOK, model.Response{Success: true, Data: project})
}

// Delete removes a project and its snapshot
func (h *ProjectHandler) Delete(c *gin.Context) {
	projectID := c.Param("id")

	if err := h.projects.Delete(c.Request.Context(), middleware.GetCompanyID(c), projectID); err != nil {
		respondError(c, err)
		return
	}

	metrics.Get().IncrementProjects(false)
	logger.Audit(c.Request.Context(), logger.AuditEvent{
		Action:     logger.AuditActionProjectDelete,
		Resource:   "project",
		ResourceID: projectID,
		Success:    true,
	})

	c.JSON(http.StatusOK, model.Response{Success: true, Message: "project deleted successfully"})
}

// Estimate calculates the posted breakdown structure with the project's
// pricing parameters and persists the report as the project snapshot.
func (h *ProjectHandler) Estimate(c *gin.Context) {
	var wbs model.WBS
	if err := c.ShouldBindJSON(&wbs); err != nil {
		bindError(c, err)
		return
	}

	if len(wbs.Modules) == 0 {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "modules cannot be empty",
		})
		return
	}

	report, err := h.estimates.EstimateProject(c.Request.Context(), middleware.GetCompanyID(c), c.Param("id"), wbs)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.Response{Success: true, Data: report})
}

// ExportEstimate downloads the project's estimate snapshot as xlsx
func (h *ProjectHandler) ExportEstimate(c *gin.Context) {
	project, err := h.projects.Get(c.Request.Context(), middleware.GetCompanyID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	if project.Estimate == nil {
		respondError(c, model.ErrNoEstimate)
		return
	}

	buf, err := h.exporter.Generate(project.Name, project.Estimate)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.Get().IncrementExports()
	logger.Audit(c.Request.Context(), logger.AuditEvent{
		Action:     logger.AuditActionReportExport,
		Resource:   "project",
		ResourceID: project.ID,
		Success:    true,
	})

	filename := fmt.Sprintf("estimate_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Length", strconv.Itoa(buf.Len()))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

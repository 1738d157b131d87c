package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scopecraft/estimation-api/internal/logger"
	"github.com/scopecraft/estimation-api/internal/model"
)

// respondError maps domain errors to HTTP statuses. WBS content errors are
// 400, configuration errors 422, so clients can tell what to fix.
func respondError(c *gin.Context, err error) {
	logger.FromGin(c).Warn().Err(err).Msg("Request failed")

	var unknownRole *model.UnknownRoleError
	if errors.As(err, &unknownRole) {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   "unknown role",
			Details: unknownRole.Error(),
		})
		return
	}

	var invalidConfig *model.InvalidConfigurationError
	if errors.As(err, &invalidConfig) {
		c.JSON(http.StatusUnprocessableEntity, model.ErrorResponse{
			Success: false,
			Error:   "invalid estimation configuration",
			Details: invalidConfig.Error(),
		})
		return
	}

	switch {
	case errors.Is(err, model.ErrSettingsNotFound):
		c.JSON(http.StatusUnprocessableEntity, model.ErrorResponse{
			Success: false,
			Error:   "estimation settings not configured for this company",
		})
	case errors.Is(err, model.ErrProjectNotFound),
		errors.Is(err, model.ErrRoleNotFound),
		errors.Is(err, model.ErrNoEstimate):
		c.JSON(http.StatusNotFound, model.ErrorResponse{
			Success: false,
			Error:   err.Error(),
		})
	case errors.Is(err, model.ErrDuplicateProject),
		errors.Is(err, model.ErrDuplicateRole):
		c.JSON(http.StatusConflict, model.ErrorResponse{
			Success: false,
			Error:   err.Error(),
		})
	case errors.Is(err, model.ErrDefaultRoleRename):
		c.JSON(http.StatusBadRequest, model.ErrorResponse{
			Success: false,
			Error:   err.Error(),
		})
	default:
		logger.FromGin(c).Error().Err(err).Msg("Internal error")
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{
			Success: false,
			Error:   "internal error",
			Details: err.Error(),
		})
	}
}

func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, model.ErrorResponse{
		Success: false,
		Error:   "invalid payload",
		Details: err.Error(),
	})
}

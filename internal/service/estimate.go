package service

import (
	"context"
	"fmt"
	"time"

	"github.com/scopecraft/estimation-api/internal/cache"
	"github.com/scopecraft/estimation-api/internal/engine"
	"github.com/scopecraft/estimation-api/internal/logger"
	"github.com/scopecraft/estimation-api/internal/metrics"
	"github.com/scopecraft/estimation-api/internal/model"
)

// RateResolver supplies the role -> hourly rate mapping for a tenant
type RateResolver interface {
	RateMap(ctx context.Context, companyID string) (map[string]float64, error)
}

// SettingsProvider supplies the tenant's estimation settings
type SettingsProvider interface {
	Get(ctx context.Context, companyID string) (model.Settings, error)
}

// ProjectStore is the slice of project persistence the estimation flow needs
type ProjectStore interface {
	Get(ctx context.Context, companyID, projectID string) (*model.Project, error)
	SaveEstimate(ctx context.Context, companyID, projectID string, report *model.Report) error
}

// EstimateService assembles engine inputs from the rate and settings
// collaborators, runs the calculation, and persists project snapshots.
type EstimateService struct {
	rates    RateResolver
	settings SettingsProvider
	projects ProjectStore
	cache    *cache.Cache
}

// NewEstimateService creates a new estimation service
func NewEstimateService(rates RateResolver, settings SettingsProvider, projects ProjectStore, c *cache.Cache) *EstimateService {
	return &EstimateService{
		rates:    rates,
		settings: settings,
		projects: projects,
		cache:    c,
	}
}

// Calculate runs an ad-hoc estimation for a company. Nothing is persisted.
func (s *EstimateService) Calculate(ctx context.Context, companyID string, wbs model.WBS, pricing model.PricingParams) (*model.Report, error) {
	log := logger.Get(ctx)

	rateMap, err := s.resolveRateMap(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("resolve rate map: %w", err)
	}

	settings, err := s.resolveSettings(ctx, companyID)
	if err != nil {
		return nil, err
	}

	report, err := engine.Calculate(wbs, rateMap, settings, pricing)
	if err != nil {
		metrics.Get().IncrementEstimates(false)
		return nil, err
	}
	metrics.Get().IncrementEstimates(true)

	log.Info().
		Int("modules", len(wbs.Modules)).
		Float64("total_hours", report.Totals.Hours).
		Msg("Estimation calculated")

	return report, nil
}

// EstimateProject calculates an estimate for a stored project using its
// pricing parameters and persists the report as the project's snapshot.
// On recalculation, rates already frozen in the previous snapshot are kept;
// only roles new to the project pull current rates.
func (s *EstimateService) EstimateProject(ctx context.Context, companyID, projectID string, wbs model.WBS) (*model.Report, error) {
	log := logger.Get(ctx)

	project, err := s.projects.Get(ctx, companyID, projectID)
	if err != nil {
		return nil, err
	}

	rateMap, err := s.resolveRateMap(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("resolve rate map: %w", err)
	}

	if project.Estimate != nil {
		rateMap = engine.MergeRateSnapshot(project.Estimate.RateSnapshot, rateMap)
	}

	settings, err := s.resolveSettings(ctx, companyID)
	if err != nil {
		return nil, err
	}

	report, err := engine.Calculate(wbs, rateMap, settings, project.PricingParams())
	if err != nil {
		metrics.Get().IncrementEstimates(false)
		logger.Audit(ctx, logger.AuditEvent{
			Action:     logger.AuditActionEstimateFailed,
			Resource:   "project",
			ResourceID: projectID,
			Success:    false,
			Error:      err.Error(),
		})
		return nil, err
	}
	metrics.Get().IncrementEstimates(true)

	if err := s.projects.SaveEstimate(ctx, companyID, projectID, report); err != nil {
		return nil, fmt.Errorf("persist snapshot: %w", err)
	}
	metrics.Get().IncrementSnapshots()

	logger.Audit(ctx, logger.AuditEvent{
		Action:     logger.AuditActionSnapshotPersist,
		Resource:   "project",
		ResourceID: projectID,
		Success:    true,
		Details: map[string]interface{}{
			"total_hours": report.Totals.Hours,
			"final_price": report.Pricing.FinalPrice,
		},
	})

	log.Info().
		Str("project_id", projectID).
		Float64("final_price", report.Pricing.FinalPrice).
		Msg("Project estimate persisted")

	return report, nil
}

// InvalidateCompany drops the cached rate map and settings for a company.
// Called after role or settings edits so the next calculation sees them.
func (s *EstimateService) InvalidateCompany(companyID string) {
	s.cache.Delete(rateCacheKey(companyID))
	s.cache.Delete(settingsCacheKey(companyID))
}

func (s *EstimateService) resolveRateMap(ctx context.Context, companyID string) (map[string]float64, error) {
	key := rateCacheKey(companyID)
	if cached, ok := s.cache.Get(key); ok {
		if rateMap, ok := cached.(map[string]float64); ok {
			return rateMap, nil
		}
	}

	rateMap, err := s.rates.RateMap(ctx, companyID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, rateMap)
	return rateMap, nil
}

func (s *EstimateService) resolveSettings(ctx context.Context, companyID string) (model.Settings, error) {
	key := settingsCacheKey(companyID)
	if cached, ok := s.cache.Get(key); ok {
		if settings, ok := cached.(model.Settings); ok {
			return settings, nil
		}
	}

	settings, err := s.settings.Get(ctx, companyID)
	if err != nil {
		return model.Settings{}, err
	}

	s.cache.SetWithTTL(key, settings, 5*time.Minute)
	return settings, nil
}

func rateCacheKey(companyID string) string {
	return "rates:" + companyID
}

func settingsCacheKey(companyID string) string {
	return "settings:" + companyID
}

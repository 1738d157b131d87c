package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopecraft/estimation-api/internal/cache"
	"github.com/scopecraft/estimation-api/internal/model"
)

type fakeRates struct {
	rates map[string]float64
	err   error
	calls int
}

func (f *fakeRates) RateMap(ctx context.Context, companyID string) (map[string]float64, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]float64, len(f.rates))
	for k, v := range f.rates {
		out[k] = v
	}
	return out, nil
}

type fakeSettings struct {
	settings model.Settings
	err      error
}

func (f *fakeSettings) Get(ctx context.Context, companyID string) (model.Settings, error) {
	if f.err != nil {
		return model.Settings{}, f.err
	}
	return f.settings, nil
}

type fakeProjects struct {
	project *model.Project
	saved   *model.Report
}

func (f *fakeProjects) Get(ctx context.Context, companyID, projectID string) (*model.Project, error) {
	if f.project == nil {
		return nil, model.ErrProjectNotFound
	}
	return f.project, nil
}

func (f *fakeProjects) SaveEstimate(ctx context.Context, companyID, projectID string, report *model.Report) error {
	f.saved = report
	return nil
}

func testWBS() model.WBS {
	return model.WBS{Modules: []model.Module{{
		Name: "Core",
		Features: []model.Feature{{
			Name:  "F",
			Tasks: []model.Task{{Name: "t", Hours: 40, Role: "backenddeveloper", Level: model.LevelLow}},
		}},
	}}}
}

func newTestService(rates *fakeRates, settings *fakeSettings, projects *fakeProjects) *EstimateService {
	return NewEstimateService(rates, settings, projects, cache.NewCache(time.Minute))
}

func TestEstimateServiceCalculate(t *testing.T) {
	rates := &fakeRates{rates: map[string]float64{"backenddeveloper": 50}}
	settings := &fakeSettings{settings: model.DefaultSettings()}
	svc := newTestService(rates, settings, &fakeProjects{})

	pricing := model.PricingParams{RiskBuffer: 10, TargetMargin: 20, NegotiationBuffer: 5, EstimatedTeamSize: 2}

	report, err := svc.Calculate(context.Background(), "company-1", testWBS(), pricing)
	require.NoError(t, err)

	assert.Equal(t, 40.0, report.Totals.Hours)
	assert.Equal(t, map[string]float64{"backenddeveloper": 50}, report.RateSnapshot)
}

func TestEstimateServiceCachesRateMap(t *testing.T) {
	rates := &fakeRates{rates: map[string]float64{"backenddeveloper": 50}}
	settings := &fakeSettings{settings: model.DefaultSettings()}
	svc := newTestService(rates, settings, &fakeProjects{})

	pricing := model.PricingParams{EstimatedTeamSize: 2}

	_, err := svc.Calculate(context.Background(), "company-1", testWBS(), pricing)
	require.NoError(t, err)
	_, err = svc.Calculate(context.Background(), "company-1", testWBS(), pricing)
	require.NoError(t, err)

	assert.Equal(t, 1, rates.calls, "second calculation should hit the cache")

	svc.InvalidateCompany("company-1")
	_, err = svc.Calculate(context.Background(), "company-1", testWBS(), pricing)
	require.NoError(t, err)
	assert.Equal(t, 2, rates.calls, "invalidation should force a reload")
}

func TestEstimateServiceSettingsNotConfigured(t *testing.T) {
	rates := &fakeRates{rates: map[string]float64{"backenddeveloper": 50}}
	settings := &fakeSettings{err: model.ErrSettingsNotFound}
	svc := newTestService(rates, settings, &fakeProjects{})

	_, err := svc.Calculate(context.Background(), "company-1", testWBS(), model.PricingParams{EstimatedTeamSize: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrSettingsNotFound))
}

func TestEstimateServiceUnknownRole(t *testing.T) {
	rates := &fakeRates{rates: map[string]float64{}}
	settings := &fakeSettings{settings: model.DefaultSettings()}
	svc := newTestService(rates, settings, &fakeProjects{})

	_, err := svc.Calculate(context.Background(), "company-1", testWBS(), model.PricingParams{EstimatedTeamSize: 2})
	require.Error(t, err)

	var unknownRole *model.UnknownRoleError
	require.True(t, errors.As(err, &unknownRole))
	assert.Equal(t, "backenddeveloper", unknownRole.Role)
}

func TestEstimateProjectPersistsSnapshot(t *testing.T) {
	rates := &fakeRates{rates: map[string]float64{"backenddeveloper": 50}}
	settings := &fakeSettings{settings: model.DefaultSettings()}
	projects := &fakeProjects{project: &model.Project{
		ID:                "p1",
		CompanyID:         "company-1",
		Name:              "CRM Rebuild",
		RiskBuffer:        10,
		TargetMargin:      20,
		NegotiationBuffer: 5,
		EstimatedTeamSize: 3,
	}}
	svc := newTestService(rates, settings, projects)

	report, err := svc.EstimateProject(context.Background(), "company-1", "p1", testWBS())
	require.NoError(t, err)
	require.NotNil(t, projects.saved)
	assert.Equal(t, report, projects.saved)
	assert.Equal(t, 10.0, report.Pricing.RiskBufferPercent)
}

func TestEstimateProjectFreezesPreviousRates(t *testing.T) {
	// The project already has a snapshot priced at 50/h; the current rate
	// map says 100/h. The frozen rate must win.
	previous := &model.Report{RateSnapshot: map[string]float64{"backenddeveloper": 50}}

	rates := &fakeRates{rates: map[string]float64{"backenddeveloper": 100, "qaengineer": 35}}
	settings := &fakeSettings{settings: model.DefaultSettings()}
	projects := &fakeProjects{project: &model.Project{
		ID:                "p1",
		CompanyID:         "company-1",
		EstimatedTeamSize: 3,
		Estimate:          previous,
	}}
	svc := newTestService(rates, settings, projects)

	wbs := testWBS()
	wbs.Modules[0].Features[0].Tasks = append(wbs.Modules[0].Features[0].Tasks,
		model.Task{Name: "qa", Hours: 8, Role: "qaengineer", Level: model.LevelLow})

	report, err := svc.EstimateProject(context.Background(), "company-1", "p1", wbs)
	require.NoError(t, err)

	assert.Equal(t, 50.0, report.RateSnapshot["backenddeveloper"], "frozen rate must survive the rate edit")
	assert.Equal(t, 35.0, report.RateSnapshot["qaengineer"], "new role pulls the current rate")
}

func TestEstimateProjectNotFound(t *testing.T) {
	rates := &fakeRates{rates: map[string]float64{"backenddeveloper": 50}}
	settings := &fakeSettings{settings: model.DefaultSettings()}
	svc := newTestService(rates, settings, &fakeProjects{})

	_, err := svc.EstimateProject(context.Background(), "company-1", "missing", testWBS())
	assert.True(t, errors.Is(err, model.ErrProjectNotFound))
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopecraft/estimation-api/internal/cache"
	"github.com/scopecraft/estimation-api/internal/middleware"
	"github.com/scopecraft/estimation-api/internal/model"
	"github.com/scopecraft/estimation-api/internal/service"
)

type stubRates struct {
	rates map[string]float64
}

func (s *stubRates) RateMap(ctx context.Context, companyID string) (map[string]float64, error) {
	return s.rates, nil
}

type stubSettings struct {
	settings model.Settings
	err      error
}

func (s *stubSettings) Get(ctx context.Context, companyID string) (model.Settings, error) {
	if s.err != nil {
		return model.Settings{}, s.err
	}
	return s.settings, nil
}

type stubProjects struct{}

func (s *stubProjects) Get(ctx context.Context, companyID, projectID string) (*model.Project, error) {
	return nil, model.ErrProjectNotFound
}

func (s *stubProjects) SaveEstimate(ctx context.Context, companyID, projectID string, report *model.Report) error {
	return nil
}

func setupEstimateRouter(rates map[string]float64, settingsErr error) *gin.Engine {
	gin.SetMode(gin.TestMode)

	settings := &stubSettings{settings: model.DefaultSettings(), err: settingsErr}
	svc := service.NewEstimateService(&stubRates{rates: rates}, settings, &stubProjects{}, cache.NewCache(time.Minute))
	h := NewEstimateHandler(svc, service.NewWebhookService())

	r := gin.New()
	r.Use(middleware.CompanyID())
	r.POST("/api/v1/estimates/calculate", h.Calculate)
	return r
}

func postCalculate(t *testing.T, router *gin.Engine, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	encoded, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/estimates/calculate", bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderCompanyID, "company-1")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func calculateRequest() model.EstimateRequest {
	return model.EstimateRequest{
		WBS: model.WBS{Modules: []model.Module{{
			Name: "Core",
			Features: []model.Feature{{
				Name:  "F",
				Tasks: []model.Task{{Name: "t", Hours: 100, Role: "backenddeveloper", Level: model.LevelLow}},
			}},
		}}},
		Pricing: model.PricingParams{RiskBuffer: 10, TargetMargin: 20, NegotiationBuffer: 5, EstimatedTeamSize: 4},
	}
}

func TestCalculateEndpoint(t *testing.T) {
	router := setupEstimateRouter(map[string]float64{"backenddeveloper": 10}, nil)

	w := postCalculate(t, router, calculateRequest())
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool         `json:"success"`
		Data    model.Report `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Equal(t, 100.0, resp.Data.Totals.Hours)
	assert.Equal(t, 850.0, resp.Data.Totals.BaseCost) // 100h * 10 * 0.85
	assert.Equal(t, 80, resp.Data.Timeline.Assumptions.ResourceEfficiencyPercent)
}

func TestCalculateEndpointUnknownRole(t *testing.T) {
	router := setupEstimateRouter(map[string]float64{}, nil)

	w := postCalculate(t, router, calculateRequest())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "backenddeveloper")
}

func TestCalculateEndpointInvalidConfiguration(t *testing.T) {
	router := setupEstimateRouter(map[string]float64{"backenddeveloper": 10}, nil)

	req := calculateRequest()
	req.Pricing.EstimatedTeamSize = 0

	w := postCalculate(t, router, req)

	// Gin binding rejects a missing/zero team size before the engine runs
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalculateEndpointSettingsMissing(t *testing.T) {
	router := setupEstimateRouter(map[string]float64{"backenddeveloper": 10}, model.ErrSettingsNotFound)

	w := postCalculate(t, router, calculateRequest())
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestCalculateEndpointEmptyWBS(t *testing.T) {
	router := setupEstimateRouter(map[string]float64{"backenddeveloper": 10}, nil)

	req := calculateRequest()
	req.WBS.Modules = nil

	w := postCalculate(t, router, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

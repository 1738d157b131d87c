package engine

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scopecraft/estimation-api/internal/model"
)

func testSettings() model.Settings {
	return model.DefaultSettings()
}

func singleTaskWBS(hours float64, role, level string) model.WBS {
	return model.WBS{Modules: []model.Module{{
		Name: "Core",
		Features: []model.Feature{{
			Name:  "Feature A",
			Tasks: []model.Task{{Name: "Task 1", Hours: hours, Role: role, Level: level}},
		}},
	}}}
}

func TestCalculateTaskCost(t *testing.T) {
	rates := map[string]float64{"backenddeveloper": 50}

	t.Run("applies multiplier and productivity factor", func(t *testing.T) {
		task := model.Task{Name: "api", Hours: 10, Role: "backenddeveloper", Level: model.LevelMedium}

		tc, err := CalculateTaskCost(task, rates, testSettings())
		require.NoError(t, err)

		assert.InDelta(t, 13.0, tc.AdjustedHours, 1e-9) // 10 * 1.3
		assert.InDelta(t, 552.5, tc.Cost, 1e-9)         // 13 * 50 * 0.85
		assert.Equal(t, "backenddeveloper", tc.Role)
		assert.Equal(t, 50.0, tc.HourlyRate)
	})

	t.Run("unknown role fails with role name", func(t *testing.T) {
		task := model.Task{Name: "api", Hours: 10, Role: "nonexistent_role", Level: model.LevelLow}

		_, err := CalculateTaskCost(task, rates, testSettings())
		require.Error(t, err)

		var unknownRole *model.UnknownRoleError
		require.True(t, errors.As(err, &unknownRole))
		assert.Equal(t, "nonexistent_role", unknownRole.Role)
		assert.Contains(t, err.Error(), "nonexistent_role")
	})

	t.Run("unknown level falls back to 1.0 multiplier", func(t *testing.T) {
		task := model.Task{Name: "api", Hours: 10, Role: "backenddeveloper", Level: "legendary"}

		tc, err := CalculateTaskCost(task, rates, testSettings())
		require.NoError(t, err)

		assert.InDelta(t, 10.0, tc.AdjustedHours, 1e-9)
		assert.InDelta(t, 425.0, tc.Cost, 1e-9) // 10 * 50 * 0.85
	})
}

func TestCalculatePricingCascade(t *testing.T) {
	// One task producing exactly 1000 of base cost: 100h * rate 10,
	// low complexity, productivity 1.0.
	settings := testSettings()
	settings.ProductivityFactor = 1.0

	wbs := singleTaskWBS(100, "backenddeveloper", model.LevelLow)
	rates := map[string]float64{"backenddeveloper": 10}
	pricing := model.PricingParams{
		RiskBuffer:        10,
		TargetMargin:      20,
		NegotiationBuffer: 5,
		EstimatedTeamSize: 4,
	}

	report, err := Calculate(wbs, rates, settings, pricing)
	require.NoError(t, err)

	assert.Equal(t, 1000.0, report.Totals.BaseCost)
	assert.Equal(t, 100.0, report.Pricing.RiskBufferAmount)
	assert.Equal(t, 1100.0, report.Pricing.CostWithRisk)
	assert.Equal(t, 220.0, report.Pricing.MarginAmount)
	assert.Equal(t, 1320.0, report.Pricing.PriceBeforeNegotiation)
	assert.Equal(t, 66.0, report.Pricing.NegotiationBufferAmount)
	assert.Equal(t, 1386.0, report.Pricing.FinalPrice)
	assert.Equal(t, 386.0, report.Pricing.Profit)
	assert.Equal(t, 38.6, report.Pricing.ProfitMarginPercent)

	// Percent inputs are echoed unchanged
	assert.Equal(t, 10.0, report.Pricing.RiskBufferPercent)
	assert.Equal(t, 20.0, report.Pricing.TargetMarginPercent)
	assert.Equal(t, 5.0, report.Pricing.NegotiationBufferPercent)
}

func TestCalculateTimeline(t *testing.T) {
	// 400 adjusted hours, 8h/day * 5d/week * 5 people * 0.8 = 160h/week
	wbs := singleTaskWBS(400, "backenddeveloper", model.LevelLow)
	rates := map[string]float64{"backenddeveloper": 50}
	pricing := model.PricingParams{EstimatedTeamSize: 5}

	report, err := Calculate(wbs, rates, testSettings(), pricing)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Timeline.WeeksRequired)
	assert.Equal(t, 2, report.Timeline.SprintsRequired)
	assert.Equal(t, 1, report.Timeline.MonthsEstimate)
	assert.Equal(t, 5, report.Timeline.EstimatedTeamSize)
	assert.Equal(t, 80, report.Timeline.Assumptions.ResourceEfficiencyPercent)
	assert.Equal(t, 8, report.Timeline.Assumptions.WorkingHoursPerDay)
	assert.Equal(t, 5, report.Timeline.Assumptions.WorkingDaysPerWeek)
	assert.Equal(t, 2, report.Timeline.Assumptions.SprintDurationWeeks)
}

func TestCalculateEmptyWBS(t *testing.T) {
	report, err := Calculate(model.WBS{}, map[string]float64{}, testSettings(), model.PricingParams{EstimatedTeamSize: 3})
	require.NoError(t, err)

	assert.Equal(t, 0.0, report.Totals.Hours)
	assert.Equal(t, 0.0, report.Totals.BaseCost)
	assert.Equal(t, 0.0, report.Pricing.ProfitMarginPercent)
	assert.Equal(t, 0, report.Timeline.WeeksRequired)
	assert.Equal(t, 0, report.Timeline.SprintsRequired)
	assert.Empty(t, report.ResourceAllocation)
	assert.Empty(t, report.RateSnapshot)
}

func TestCalculateInvalidConfiguration(t *testing.T) {
	wbs := singleTaskWBS(10, "backenddeveloper", model.LevelLow)
	rates := map[string]float64{"backenddeveloper": 50}

	tests := []struct {
		name     string
		mutate   func(*model.Settings, *model.PricingParams)
		wantParm string
	}{
		{
			name:     "zero team size",
			mutate:   func(s *model.Settings, p *model.PricingParams) { p.EstimatedTeamSize = 0 },
			wantParm: "estimated_team_size",
		},
		{
			name:     "zero working hours per day",
			mutate:   func(s *model.Settings, p *model.PricingParams) { s.WorkingHoursPerDay = 0 },
			wantParm: "working_hours_per_day",
		},
		{
			name:     "zero working days per week",
			mutate:   func(s *model.Settings, p *model.PricingParams) { s.WorkingDaysPerWeek = 0 },
			wantParm: "working_days_per_week",
		},
		{
			name:     "zero sprint duration",
			mutate:   func(s *model.Settings, p *model.PricingParams) { s.SprintDurationWeeks = 0 },
			wantParm: "sprint_duration_weeks",
		},
		{
			name:     "productivity factor above 1",
			mutate:   func(s *model.Settings, p *model.PricingParams) { s.ProductivityFactor = 1.5 },
			wantParm: "productivity_factor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings := testSettings()
			pricing := model.PricingParams{EstimatedTeamSize: 3}
			tt.mutate(&settings, &pricing)

			report, err := Calculate(wbs, rates, settings, pricing)
			require.Error(t, err)
			assert.Nil(t, report)

			var invalid *model.InvalidConfigurationError
			require.True(t, errors.As(err, &invalid))
			assert.Equal(t, tt.wantParm, invalid.Param)
		})
	}
}

func TestCalculateModuleBreakdown(t *testing.T) {
	wbs := model.WBS{Modules: []model.Module{
		{
			Name: "Auth",
			Features: []model.Feature{{
				Name: "Login",
				Tasks: []model.Task{
					{Name: "api", Hours: 10, Role: "backenddeveloper", Level: model.LevelMedium},
					{Name: "ui", Hours: 6, Role: "frontenddeveloper", Level: model.LevelLow},
				},
			}},
		},
		{
			Name: "Billing",
			Features: []model.Feature{{
				Name: "Invoices",
				Tasks: []model.Task{
					{Name: "engine", Hours: 20, Role: "backenddeveloper", Level: model.LevelHigh},
				},
			}},
		},
	}}
	rates := map[string]float64{"backenddeveloper": 50, "frontenddeveloper": 40}

	report, err := Calculate(wbs, rates, testSettings(), model.PricingParams{EstimatedTeamSize: 2})
	require.NoError(t, err)

	require.Len(t, report.WBS.Modules, 2)

	// Auth: 10*1.3=13h @50 + 6*1.0=6h @40, productivity 0.85
	auth := report.WBS.Modules[0]
	assert.Equal(t, "Auth", auth.Name)
	assert.Equal(t, 19.0, auth.Hours)
	assert.Equal(t, math.Round(13*50*0.85+6*40*0.85), auth.Cost)

	// Billing: 20*1.6=32h @50
	billing := report.WBS.Modules[1]
	assert.Equal(t, "Billing", billing.Name)
	assert.Equal(t, 32.0, billing.Hours)
	assert.Equal(t, math.Round(32*50*0.85), billing.Cost)

	assert.Equal(t, 51.0, report.Totals.Hours)

	// Allocation is sorted by role and covers both roles
	require.Len(t, report.ResourceAllocation, 2)
	assert.Equal(t, "backenddeveloper", report.ResourceAllocation[0].Role)
	assert.Equal(t, 45.0, report.ResourceAllocation[0].Hours)
	assert.Equal(t, "frontenddeveloper", report.ResourceAllocation[1].Role)
	assert.Equal(t, 6.0, report.ResourceAllocation[1].Hours)

	assert.Equal(t, map[string]float64{"backenddeveloper": 50, "frontenddeveloper": 40}, report.RateSnapshot)
}

func TestCalculateNoPartialReportOnUnknownRole(t *testing.T) {
	wbs := model.WBS{Modules: []model.Module{{
		Name: "Core",
		Features: []model.Feature{{
			Name: "F",
			Tasks: []model.Task{
				{Name: "ok", Hours: 10, Role: "backenddeveloper", Level: model.LevelLow},
				{Name: "broken", Hours: 5, Role: "ghost", Level: model.LevelLow},
			},
		}},
	}}}
	rates := map[string]float64{"backenddeveloper": 50}

	report, err := Calculate(wbs, rates, testSettings(), model.PricingParams{EstimatedTeamSize: 2})
	require.Error(t, err)
	assert.Nil(t, report)
}

// genWBS builds small random breakdown structures over a fixed role set.
func genWBS(roles []string) gopter.Gen {
	genTask := gopter.CombineGens(
		gen.Float64Range(0.5, 80),
		gen.IntRange(0, len(roles)-1),
		gen.OneConstOf(model.LevelLow, model.LevelMedium, model.LevelHigh, model.LevelExtreme),
	).Map(func(vals []interface{}) model.Task {
		return model.Task{
			Name:  "task",
			Hours: vals[0].(float64),
			Role:  roles[vals[1].(int)],
			Level: vals[2].(string),
		}
	})

	genFeature := gen.SliceOfN(3, genTask).Map(func(tasks []model.Task) model.Feature {
		return model.Feature{Name: "feature", Tasks: tasks}
	})

	genModule := gen.SliceOfN(2, genFeature).Map(func(features []model.Feature) model.Module {
		return model.Module{Name: "module", Features: features}
	})

	return gen.SliceOfN(2, genModule).Map(func(modules []model.Module) model.WBS {
		for i := range modules {
			modules[i].Name = fmt.Sprintf("module-%d", i)
		}
		return model.WBS{Modules: modules}
	})
}

// TestCalculateProperties checks the numeric invariants of the engine over
// randomly generated breakdown structures.
func TestCalculateProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	roles := []string{"backenddeveloper", "frontenddeveloper", "qaengineer"}
	rates := map[string]float64{
		"backenddeveloper":  55,
		"frontenddeveloper": 45,
		"qaengineer":        35,
	}
	pricing := model.PricingParams{
		RiskBuffer:        15,
		TargetMargin:      30,
		NegotiationBuffer: 10,
		EstimatedTeamSize: 4,
	}

	// Fixed inputs always produce identical output.
	properties.Property("calculation is deterministic", prop.ForAll(
		func(wbs model.WBS) bool {
			first, err1 := Calculate(wbs, rates, testSettings(), pricing)
			second, err2 := Calculate(wbs, rates, testSettings(), pricing)
			if err1 != nil || err2 != nil {
				return false
			}
			return reflect.DeepEqual(first, second)
		},
		genWBS(roles),
	))

	// Increasing any task's hours strictly increases totals and final price.
	properties.Property("totals are monotonic in task hours", prop.ForAll(
		func(wbs model.WBS, extra float64) bool {
			before, err := Calculate(wbs, rates, testSettings(), pricing)
			if err != nil {
				return false
			}

			grown := wbs
			grown.Modules[0].Features[0].Tasks[0].Hours += extra

			after, err := Calculate(grown, rates, testSettings(), pricing)
			if err != nil {
				return false
			}

			return after.Totals.Hours > before.Totals.Hours &&
				after.Totals.BaseCost > before.Totals.BaseCost &&
				after.Pricing.FinalPrice > before.Pricing.FinalPrice
		},
		genWBS(roles),
		gen.Float64Range(10, 100),
	))

	// Allocation percentages account for all hours, within per-entry
	// rounding tolerance.
	properties.Property("allocation percentages sum to 100", prop.ForAll(
		func(wbs model.WBS) bool {
			report, err := Calculate(wbs, rates, testSettings(), pricing)
			if err != nil {
				return false
			}
			if report.Totals.Hours == 0 {
				return len(report.ResourceAllocation) == 0
			}

			var sum float64
			for _, a := range report.ResourceAllocation {
				sum += a.Percentage
			}
			tolerance := 0.1 * float64(len(report.ResourceAllocation))
			return math.Abs(sum-100) <= tolerance
		},
		genWBS(roles),
	))

	// With non-negative buffers the cascade never prices below base cost.
	properties.Property("final price is never below base cost", prop.ForAll(
		func(wbs model.WBS) bool {
			report, err := Calculate(wbs, rates, testSettings(), pricing)
			if err != nil {
				return false
			}
			return report.Pricing.FinalPrice >= report.Totals.BaseCost &&
				report.Pricing.Profit >= 0
		},
		genWBS(roles),
	))

	properties.TestingRun(t)
}

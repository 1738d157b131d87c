// Package engine implements the estimation calculation: a pure
// transformation of a work breakdown structure, a role rate map, company
// settings, and pricing markups into a cost, pricing, timeline, and
// resource-allocation report. It performs no I/O and keeps no state, so it
// is safe to call from any number of concurrent requests.
package engine

import (
	"math"
	"sort"

	"github.com/scopecraft/estimation-api/internal/model"
)

// resourceEfficiency is the fixed share of team capacity assumed available
// for project work. Echoed in the report assumptions; not configurable.
const resourceEfficiency = 0.8

// TaskCost is the per-task calculation result before aggregation.
type TaskCost struct {
	AdjustedHours float64
	Cost          float64
	Role          string
	HourlyRate    float64
}

// CalculateTaskCost resolves one task against the rate map and settings.
// A role missing from the rate map is a fatal input error; an unrecognized
// complexity level silently uses a 1.0 multiplier (see Settings.MultiplierFor).
func CalculateTaskCost(task model.Task, rates map[string]float64, settings model.Settings) (TaskCost, error) {
	hourlyRate, ok := rates[task.Role]
	if !ok {
		return TaskCost{}, &model.UnknownRoleError{Role: task.Role}
	}

	adjusted := task.Hours * settings.MultiplierFor(task.Level)

	return TaskCost{
		AdjustedHours: adjusted,
		Cost:          adjusted * hourlyRate * settings.ProductivityFactor,
		Role:          task.Role,
		HourlyRate:    hourlyRate,
	}, nil
}

// Calculate produces the full estimation report for a breakdown structure.
// It fails on the first task whose role is not in the rate map and never
// returns a partial report. Zero team size or zero working-hour settings
// are rejected before any division happens.
func Calculate(wbs model.WBS, rates map[string]float64, settings model.Settings, pricing model.PricingParams) (*model.Report, error) {
	if err := validateConfig(settings, pricing); err != nil {
		return nil, err
	}

	var totalHours, totalCost float64
	moduleBreakdowns := make([]model.ModuleBreakdown, 0, len(wbs.Modules))
	resourceHours := make(map[string]float64)
	rateSnapshot := make(map[string]float64)

	for _, mod := range wbs.Modules {
		var moduleHours, moduleCost float64

		for _, feature := range mod.Features {
			for _, task := range feature.Tasks {
				tc, err := CalculateTaskCost(task, rates, settings)
				if err != nil {
					return nil, err
				}

				moduleHours += tc.AdjustedHours
				moduleCost += tc.Cost
				totalHours += tc.AdjustedHours
				totalCost += tc.Cost

				resourceHours[tc.Role] += tc.AdjustedHours
				rateSnapshot[tc.Role] = tc.HourlyRate
			}
		}

		moduleBreakdowns = append(moduleBreakdowns, model.ModuleBreakdown{
			Name:  mod.Name,
			Hours: round1(moduleHours),
			Cost:  math.Round(moduleCost),
		})
	}

	// Pricing cascade: each stage compounds on the previous subtotal.
	riskAmount := totalCost * pricing.RiskBuffer / 100
	costWithRisk := totalCost + riskAmount

	marginAmount := costWithRisk * pricing.TargetMargin / 100
	priceBeforeNegotiation := costWithRisk + marginAmount

	negotiationAmount := priceBeforeNegotiation * pricing.NegotiationBuffer / 100
	finalPrice := priceBeforeNegotiation + negotiationAmount

	profit := finalPrice - totalCost
	var profitPercent float64
	if totalCost > 0 {
		profitPercent = profit / totalCost * 100
	}

	// Timeline
	hoursPerWeek := float64(settings.WorkingHoursPerDay * settings.WorkingDaysPerWeek)
	availablePerWeek := hoursPerWeek * float64(pricing.EstimatedTeamSize) * resourceEfficiency

	weeksRequired := int(math.Ceil(totalHours / availablePerWeek))
	sprintsRequired := int(math.Ceil(float64(weeksRequired) / float64(settings.SprintDurationWeeks)))
	monthsEstimate := int(math.Ceil(float64(weeksRequired) / 4))

	return &model.Report{
		Totals: model.Totals{
			Hours:    round1(totalHours),
			BaseCost: math.Round(totalCost),
		},
		WBS: model.WBSBreakdown{Modules: moduleBreakdowns},
		Pricing: model.Pricing{
			RiskBufferPercent:        pricing.RiskBuffer,
			RiskBufferAmount:         math.Round(riskAmount),
			CostWithRisk:             math.Round(costWithRisk),
			TargetMarginPercent:      pricing.TargetMargin,
			MarginAmount:             math.Round(marginAmount),
			PriceBeforeNegotiation:   math.Round(priceBeforeNegotiation),
			NegotiationBufferPercent: pricing.NegotiationBuffer,
			NegotiationBufferAmount:  math.Round(negotiationAmount),
			FinalPrice:               math.Round(finalPrice),
			Profit:                   math.Round(profit),
			ProfitMarginPercent:      round1(profitPercent),
		},
		Timeline: model.Timeline{
			WeeksRequired:     weeksRequired,
			MonthsEstimate:    monthsEstimate,
			SprintsRequired:   sprintsRequired,
			EstimatedTeamSize: pricing.EstimatedTeamSize,
			Assumptions: model.TimelineAssumptions{
				WorkingHoursPerDay:        settings.WorkingHoursPerDay,
				WorkingDaysPerWeek:        settings.WorkingDaysPerWeek,
				SprintDurationWeeks:       settings.SprintDurationWeeks,
				ResourceEfficiencyPercent: int(resourceEfficiency * 100),
			},
		},
		ResourceAllocation: allocation(resourceHours, rateSnapshot, totalHours),
		RateSnapshot:       rateSnapshot,
	}, nil
}

// allocation reports each role's share of the total adjusted hours, sorted
// by role name so the output is deterministic.
func allocation(resourceHours, rateSnapshot map[string]float64, totalHours float64) []model.RoleAllocation {
	roles := make([]string, 0, len(resourceHours))
	for role := range resourceHours {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	out := make([]model.RoleAllocation, 0, len(roles))
	for _, role := range roles {
		hrs := resourceHours[role]

		var pct float64
		if totalHours > 0 {
			pct = hrs / totalHours * 100
		}

		out = append(out, model.RoleAllocation{
			Role:       role,
			Hours:      round1(hrs),
			HourlyRate: rateSnapshot[role],
			Percentage: round1(pct),
		})
	}
	return out
}

func validateConfig(settings model.Settings, pricing model.PricingParams) error {
	if pricing.EstimatedTeamSize <= 0 {
		return &model.InvalidConfigurationError{Param: "estimated_team_size", Value: float64(pricing.EstimatedTeamSize)}
	}
	if settings.WorkingHoursPerDay <= 0 {
		return &model.InvalidConfigurationError{Param: "working_hours_per_day", Value: float64(settings.WorkingHoursPerDay)}
	}
	if settings.WorkingDaysPerWeek <= 0 {
		return &model.InvalidConfigurationError{Param: "working_days_per_week", Value: float64(settings.WorkingDaysPerWeek)}
	}
	if settings.SprintDurationWeeks <= 0 {
		return &model.InvalidConfigurationError{Param: "sprint_duration_weeks", Value: float64(settings.SprintDurationWeeks)}
	}
	if settings.ProductivityFactor <= 0 || settings.ProductivityFactor > 1 {
		return &model.InvalidConfigurationError{Param: "productivity_factor", Value: settings.ProductivityFactor}
	}
	return nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

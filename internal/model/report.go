package model

// Report is the immutable estimation snapshot produced by the engine.
// Monetary fields are rounded to whole units, hours and percentages to one
// decimal place; the engine accumulates unrounded internally.
type Report struct {
	Totals             Totals           `json:"totals"`
	WBS                WBSBreakdown     `json:"wbs"`
	Pricing            Pricing          `json:"pricing"`
	Timeline           Timeline         `json:"timeline"`
	ResourceAllocation []RoleAllocation `json:"resource_allocation"`

	// RateSnapshot freezes the exact rates used so later rate edits never
	// alter a stored report.
	RateSnapshot map[string]float64 `json:"rate_snapshot"`
}

// Totals are the grand totals across the whole breakdown.
type Totals struct {
	Hours    float64 `json:"hours"`
	BaseCost float64 `json:"base_cost"`
}

// WBSBreakdown echoes the module structure with computed contributions.
type WBSBreakdown struct {
	Modules []ModuleBreakdown `json:"modules"`
}

// ModuleBreakdown is one module's share of hours and cost.
type ModuleBreakdown struct {
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
	Cost  float64 `json:"cost"`
}

// Pricing is the markup cascade from base cost to final price.
// Stages compound in order: risk, then margin, then negotiation.
type Pricing struct {
	RiskBufferPercent        float64 `json:"risk_buffer_percent"`
	RiskBufferAmount         float64 `json:"risk_buffer_amount"`
	CostWithRisk             float64 `json:"cost_with_risk"`
	TargetMarginPercent      float64 `json:"target_margin_percent"`
	MarginAmount             float64 `json:"margin_amount"`
	PriceBeforeNegotiation   float64 `json:"price_before_negotiation"`
	NegotiationBufferPercent float64 `json:"negotiation_buffer_percent"`
	NegotiationBufferAmount  float64 `json:"negotiation_buffer_amount"`
	FinalPrice               float64 `json:"final_price"`
	Profit                   float64 `json:"profit"`
	ProfitMarginPercent      float64 `json:"profit_margin_percent"`
}

// Timeline is the duration estimate derived from total hours.
type Timeline struct {
	WeeksRequired     int                 `json:"weeks_required"`
	MonthsEstimate    int                 `json:"months_estimate"`
	SprintsRequired   int                 `json:"sprints_required"`
	EstimatedTeamSize int                 `json:"estimated_team_size"`
	Assumptions       TimelineAssumptions `json:"assumptions"`
}

// TimelineAssumptions echoes the inputs the timeline math used.
type TimelineAssumptions struct {
	WorkingHoursPerDay        int `json:"working_hours_per_day"`
	WorkingDaysPerWeek        int `json:"working_days_per_week"`
	SprintDurationWeeks       int `json:"sprint_duration_weeks"`
	ResourceEfficiencyPercent int `json:"resource_efficiency_percent"`
}

// RoleAllocation is one role's share of the total adjusted hours.
type RoleAllocation struct {
	Role       string  `json:"role"`
	Hours      float64 `json:"hours"`
	HourlyRate float64 `json:"hourly_rate"`
	Percentage float64 `json:"percentage"`
}

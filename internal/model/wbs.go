package model

import "strings"

// Complexity levels recognized by the default multiplier table.
const (
	LevelLow     = "low"
	LevelMedium  = "medium"
	LevelHigh    = "high"
	LevelExtreme = "extreme"
)

// Task is the leaf unit of work in a breakdown structure.
// Hours are nominal effort, before complexity and productivity adjustments.
type Task struct {
	Name  string  `json:"name" binding:"required"`
	Hours float64 `json:"hours" binding:"required,gt=0"`
	Role  string  `json:"role" binding:"required"`
	Level string  `json:"level" binding:"required"`
}

// Feature groups an ordered list of tasks.
type Feature struct {
	Name  string `json:"name" binding:"required"`
	Tasks []Task `json:"tasks" binding:"required,min=1,dive"`
}

// Module is the top-level unit reported in the output breakdown.
type Module struct {
	Name     string    `json:"name" binding:"required"`
	Features []Feature `json:"features" binding:"required,min=1,dive"`
}

// WBS is the full work breakdown structure for one estimation request.
type WBS struct {
	Modules []Module `json:"modules" binding:"required,dive"`
}

// PricingParams are the per-request markups applied on top of base cost.
// All buffers are percentages.
type PricingParams struct {
	RiskBuffer        float64 `json:"risk_buffer" binding:"min=0"`
	TargetMargin      float64 `json:"target_margin" binding:"min=0"`
	NegotiationBuffer float64 `json:"negotiation_buffer" binding:"min=0"`
	EstimatedTeamSize int     `json:"estimated_team_size" binding:"required,gt=0"`
}

// Settings are the company-level estimation parameters.
type Settings struct {
	ComplexityMultipliers map[string]float64 `json:"complexity_multipliers"`
	ProductivityFactor    float64            `json:"productivity_factor"`
	WorkingHoursPerDay    int                `json:"working_hours_per_day"`
	WorkingDaysPerWeek    int                `json:"working_days_per_week"`
	SprintDurationWeeks   int                `json:"sprint_duration_weeks"`
}

// MultiplierFor returns the complexity multiplier for a level.
// Unrecognized levels fall back to 1.0 rather than failing; role lookups
// are strict but level lookups are deliberately lenient.
func (s Settings) MultiplierFor(level string) float64 {
	if m, ok := s.ComplexityMultipliers[level]; ok {
		return m
	}
	return 1.0
}

// DefaultSettings returns the seed estimation settings used when a company
// has not customized them yet.
func DefaultSettings() Settings {
	return Settings{
		ComplexityMultipliers: map[string]float64{
			LevelLow:     1.0,
			LevelMedium:  1.3,
			LevelHigh:    1.6,
			LevelExtreme: 2.0,
		},
		ProductivityFactor:  0.85,
		WorkingHoursPerDay:  8,
		WorkingDaysPerWeek:  5,
		SprintDurationWeeks: 2,
	}
}

// NormalizeRole canonicalizes a role name for rate-map lookups:
// lowercase, spaces and '/' removed, everything else (+, #, etc.) kept.
func NormalizeRole(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	v = strings.ReplaceAll(v, " ", "")
	return strings.ReplaceAll(v, "/", "")
}

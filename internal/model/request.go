package model

import "time"

// EstimateRequest is the payload for an ad-hoc estimation calculation.
// When WebhookURL is set the calculation runs asynchronously and the report
// is delivered to the webhook instead of the response body.
type EstimateRequest struct {
	WBS        WBS           `json:"wbs" binding:"required"`
	Pricing    PricingParams `json:"pricing" binding:"required"`
	WebhookURL string        `json:"webhook_url" binding:"omitempty,url"`
}

// ProjectCreate is the payload for creating a project.
type ProjectCreate struct {
	Name                string  `json:"name" binding:"required,min=2,max=200"`
	ClientName          string  `json:"client_name" binding:"required,min=2,max=200"`
	Description         string  `json:"description"`
	EstimationTechnique string  `json:"estimation_technique" binding:"required"`
	TargetMargin        float64 `json:"target_margin" binding:"min=0"`
	RiskBuffer          float64 `json:"risk_buffer" binding:"min=0"`
	NegotiationBuffer   float64 `json:"negotiation_buffer" binding:"min=0"`
	EstimatedTeamSize   int     `json:"estimated_team_size" binding:"required,gt=0"`
}

// ProjectUpdate is a partial project update; nil fields are left untouched.
type ProjectUpdate struct {
	Name                *string  `json:"name,omitempty" binding:"omitempty,min=2,max=200"`
	ClientName          *string  `json:"client_name,omitempty" binding:"omitempty,min=2,max=200"`
	Description         *string  `json:"description,omitempty"`
	EstimationTechnique *string  `json:"estimation_technique,omitempty"`
	TargetMargin        *float64 `json:"target_margin,omitempty" binding:"omitempty,min=0"`
	RiskBuffer          *float64 `json:"risk_buffer,omitempty" binding:"omitempty,min=0"`
	NegotiationBuffer   *float64 `json:"negotiation_buffer,omitempty" binding:"omitempty,min=0"`
	EstimatedTeamSize   *int     `json:"estimated_team_size,omitempty" binding:"omitempty,gt=0"`
	Status              *string  `json:"status,omitempty" binding:"omitempty,oneof=DRAFT ESTIMATED ARCHIVED"`
}

// Project is a stored project with its optional estimate snapshot.
type Project struct {
	ID                  string    `json:"id"`
	CompanyID           string    `json:"company_id"`
	Name                string    `json:"name"`
	ClientName          string    `json:"client_name"`
	Description         string    `json:"description,omitempty"`
	EstimationTechnique string    `json:"estimation_technique"`
	TargetMargin        float64   `json:"target_margin"`
	RiskBuffer          float64   `json:"risk_buffer"`
	NegotiationBuffer   float64   `json:"negotiation_buffer"`
	EstimatedTeamSize   int       `json:"estimated_team_size"`
	Status              string    `json:"status"`
	Estimate            *Report   `json:"estimate,omitempty"`
	CreatedBy           string    `json:"created_by,omitempty"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// PricingParams assembles the project's stored markups for the engine.
func (p *Project) PricingParams() PricingParams {
	return PricingParams{
		RiskBuffer:        p.RiskBuffer,
		TargetMargin:      p.TargetMargin,
		NegotiationBuffer: p.NegotiationBuffer,
		EstimatedTeamSize: p.EstimatedTeamSize,
	}
}

// ResourceRole is a billable role with its hourly rate. Default roles are
// system wide; custom roles belong to one company and override defaults
// with the same normalized name.
type ResourceRole struct {
	ID         int       `json:"id"`
	CompanyID  string    `json:"company_id,omitempty"`
	Type       string    `json:"type"`
	Name       string    `json:"name"`
	Label      string    `json:"label"`
	HourlyRate float64   `json:"hourly_rate"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RoleCreate is the payload for creating a custom role.
type RoleCreate struct {
	Label      string  `json:"label" binding:"required,min=2,max=100"`
	HourlyRate float64 `json:"hourly_rate" binding:"required,gt=0"`
}

// RoleUpdate is a partial role update.
type RoleUpdate struct {
	Label      *string  `json:"label,omitempty" binding:"omitempty,min=2,max=100"`
	HourlyRate *float64 `json:"hourly_rate,omitempty" binding:"omitempty,gt=0"`
}

// SettingsUpdate is a partial estimation settings update.
type SettingsUpdate struct {
	ComplexityMultipliers map[string]float64 `json:"complexity_multipliers,omitempty"`
	ProductivityFactor    *float64           `json:"productivity_factor,omitempty" binding:"omitempty,gt=0,lte=1"`
	WorkingHoursPerDay    *int               `json:"working_hours_per_day,omitempty" binding:"omitempty,gt=0"`
	WorkingDaysPerWeek    *int               `json:"working_days_per_week,omitempty" binding:"omitempty,gt=0"`
	SprintDurationWeeks   *int               `json:"sprint_duration_weeks,omitempty" binding:"omitempty,gt=0"`
}

// Response is the standard API envelope
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorResponse is the standard error envelope
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WebhookPayload is sent to the caller-provided webhook for async estimates
type WebhookPayload struct {
	Success bool    `json:"success"`
	Error   string  `json:"error,omitempty"`
	Report  *Report `json:"report,omitempty"`
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/scopecraft/estimation-api/internal/model"
)

// SettingsRepository stores per-company estimation settings
type SettingsRepository struct {
	db *sql.DB
}

// NewSettingsRepository creates a new settings repository
func NewSettingsRepository(db *sql.DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

// Get returns the company's estimation settings, or ErrSettingsNotFound
// when the company has not been initialized yet.
func (r *SettingsRepository) Get(ctx context.Context, companyID string) (model.Settings, error) {
	var settings model.Settings
	var multipliers []byte

	err := r.db.QueryRowContext(ctx, `
		SELECT complexity_multipliers, productivity_factor,
			working_hours_per_day, working_days_per_week, sprint_duration_weeks
		FROM estimation_settings
		WHERE company_id = $1
	`, companyID).Scan(
		&multipliers,
		&settings.ProductivityFactor,
		&settings.WorkingHoursPerDay,
		&settings.WorkingDaysPerWeek,
		&settings.SprintDurationWeeks,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return model.Settings{}, model.ErrSettingsNotFound
		}
		return model.Settings{}, fmt.Errorf("query settings: %w", err)
	}

	if err := json.Unmarshal(multipliers, &settings.ComplexityMultipliers); err != nil {
		return model.Settings{}, fmt.Errorf("decode complexity multipliers: %w", err)
	}

	return settings, nil
}

// Upsert creates the company settings row with defaults when missing and
// applies the partial update on top.
func (r *SettingsRepository) Upsert(ctx context.Context, companyID string, payload model.SettingsUpdate) (model.Settings, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Settings{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO estimation_settings (company_id) VALUES ($1)
		ON CONFLICT (company_id) DO NOTHING
	`, companyID); err != nil {
		return model.Settings{}, fmt.Errorf("ensure settings row: %w", err)
	}

	var current model.Settings
	var multipliers []byte
	err = tx.QueryRowContext(ctx, `
		SELECT complexity_multipliers, productivity_factor,
			working_hours_per_day, working_days_per_week, sprint_duration_weeks
		FROM estimation_settings
		WHERE company_id = $1
		FOR UPDATE
	`, companyID).Scan(
		&multipliers,
		&current.ProductivityFactor,
		&current.WorkingHoursPerDay,
		&current.WorkingDaysPerWeek,
		&current.SprintDurationWeeks,
	)
	if err != nil {
		return model.Settings{}, fmt.Errorf("query settings: %w", err)
	}
	if err := json.Unmarshal(multipliers, &current.ComplexityMultipliers); err != nil {
		return model.Settings{}, fmt.Errorf("decode complexity multipliers: %w", err)
	}

	if payload.ComplexityMultipliers != nil {
		current.ComplexityMultipliers = payload.ComplexityMultipliers
	}
	if payload.ProductivityFactor != nil {
		current.ProductivityFactor = *payload.ProductivityFactor
	}
	if payload.WorkingHoursPerDay != nil {
		current.WorkingHoursPerDay = *payload.WorkingHoursPerDay
	}
	if payload.WorkingDaysPerWeek != nil {
		current.WorkingDaysPerWeek = *payload.WorkingDaysPerWeek
	}
	if payload.SprintDurationWeeks != nil {
		current.SprintDurationWeeks = *payload.SprintDurationWeeks
	}

	encoded, err := json.Marshal(current.ComplexityMultipliers)
	if err != nil {
		return model.Settings{}, fmt.Errorf("encode complexity multipliers: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE estimation_settings
		SET complexity_multipliers = $1, productivity_factor = $2,
			working_hours_per_day = $3, working_days_per_week = $4,
			sprint_duration_weeks = $5, updated_at = NOW()
		WHERE company_id = $6
	`, encoded, current.ProductivityFactor, current.WorkingHoursPerDay,
		current.WorkingDaysPerWeek, current.SprintDurationWeeks, companyID); err != nil {
		return model.Settings{}, fmt.Errorf("update settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Settings{}, fmt.Errorf("commit: %w", err)
	}
	return current, nil
}

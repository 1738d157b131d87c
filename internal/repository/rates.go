package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/scopecraft/estimation-api/internal/model"
)

// RateRepository resolves and manages resource roles and their hourly rates.
// Default roles are system wide; custom roles belong to one company and
// shadow a default with the same normalized name.
type RateRepository struct {
	db *sql.DB
}

// NewRateRepository creates a new rate repository
func NewRateRepository(db *sql.DB) *RateRepository {
	return &RateRepository{db: db}
}

// RateMap builds the role -> hourly rate mapping for a company: system
// defaults first, then company custom roles overriding on name collision.
func (r *RateRepository) RateMap(ctx context.Context, companyID string) (map[string]float64, error) {
	rateMap := make(map[string]float64)

	rows, err := r.db.QueryContext(ctx, `
		SELECT name, hourly_rate
		FROM resource_roles
		WHERE type = 'default' AND is_active
	`)
	if err != nil {
		return nil, fmt.Errorf("query default roles: %w", err)
	}
	if err := scanRates(rows, rateMap); err != nil {
		return nil, err
	}

	rows, err = r.db.QueryContext(ctx, `
		SELECT name, hourly_rate
		FROM resource_roles
		WHERE type = 'custom' AND company_id = $1 AND is_active
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("query custom roles: %w", err)
	}
	if err := scanRates(rows, rateMap); err != nil {
		return nil, err
	}

	return rateMap, nil
}

func scanRates(rows *sql.Rows, into map[string]float64) error {
	defer rows.Close()
	for rows.Next() {
		var name string
		var rate float64
		if err := rows.Scan(&name, &rate); err != nil {
			return fmt.Errorf("scan role rate: %w", err)
		}
		into[name] = rate
	}
	return rows.Err()
}

// ListRoles returns the roles visible to a company (defaults plus its own)
func (r *RateRepository) ListRoles(ctx context.Context, companyID string) ([]model.ResourceRole, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, COALESCE(company_id, ''), type, name, label, hourly_rate, is_active, created_at, updated_at
		FROM resource_roles
		WHERE is_active AND (type = 'default' OR company_id = $1)
		ORDER BY type, name
	`, companyID)
	if err != nil {
		return nil, fmt.Errorf("query roles: %w", err)
	}
	defer rows.Close()

	var roles []model.ResourceRole
	for rows.Next() {
		var role model.ResourceRole
		if err := rows.Scan(
			&role.ID,
			&role.CompanyID,
			&role.Type,
			&role.Name,
			&role.Label,
			&role.HourlyRate,
			&role.IsActive,
			&role.CreatedAt,
			&role.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// GetRole returns one role visible to the company
func (r *RateRepository) GetRole(ctx context.Context, companyID string, roleID int) (*model.ResourceRole, error) {
	var role model.ResourceRole
	err := r.db.QueryRowContext(ctx, `
		SELECT id, COALESCE(company_id, ''), type, name, label, hourly_rate, is_active, created_at, updated_at
		FROM resource_roles
		WHERE id = $1 AND is_active AND (type = 'default' OR company_id = $2)
	`, roleID, companyID).Scan(
		&role.ID,
		&role.CompanyID,
		&role.Type,
		&role.Name,
		&role.Label,
		&role.HourlyRate,
		&role.IsActive,
		&role.CreatedAt,
		&role.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrRoleNotFound
		}
		return nil, fmt.Errorf("query role: %w", err)
	}
	return &role, nil
}

// CreateCustom creates a company custom role. The normalized name must not
// collide with an active default or another custom role of the company.
func (r *RateRepository) CreateCustom(ctx context.Context, companyID string, payload model.RoleCreate) (*model.ResourceRole, error) {
	name := model.NormalizeRole(payload.Label)

	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM resource_roles
			WHERE name = $1 AND is_active AND (type = 'default' OR company_id = $2)
		)
	`, name, companyID).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check duplicate role: %w", err)
	}
	if exists {
		return nil, model.ErrDuplicateRole
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var role model.ResourceRole
	err = tx.QueryRowContext(ctx, `
		INSERT INTO resource_roles (company_id, type, name, label, hourly_rate, default_hourly_rate)
		VALUES ($1, 'custom', $2, $3, $4, $4)
		RETURNING id, company_id, type, name, label, hourly_rate, is_active, created_at, updated_at
	`, companyID, name, payload.Label, payload.HourlyRate).Scan(
		&role.ID,
		&role.CompanyID,
		&role.Type,
		&role.Name,
		&role.Label,
		&role.HourlyRate,
		&role.IsActive,
		&role.CreatedAt,
		&role.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert role: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO resource_rate_history (role_id, role_name, role_label, action, old_rate, new_rate, change_percent, company_id)
		VALUES ($1, $2, $3, 'added', 0, $4, NULL, $5)
	`, role.ID, role.Name, role.Label, role.HourlyRate, companyID); err != nil {
		return nil, fmt.Errorf("record rate history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &role, nil
}

// UpdateRole applies a partial role update. Default roles cannot be renamed;
// rate changes are recorded in the history table with the change percentage.
func (r *RateRepository) UpdateRole(ctx context.Context, companyID string, roleID int, payload model.RoleUpdate) (*model.ResourceRole, error) {
	role, err := r.GetRole(ctx, companyID, roleID)
	if err != nil {
		return nil, err
	}

	if payload.Label != nil && role.Type == "default" {
		return nil, model.ErrDefaultRoleRename
	}

	newLabel := role.Label
	newName := role.Name
	if payload.Label != nil {
		newLabel = *payload.Label
		newName = model.NormalizeRole(newLabel)

		if newName != role.Name {
			var exists bool
			err := r.db.QueryRowContext(ctx, `
				SELECT EXISTS (
					SELECT 1 FROM resource_roles
					WHERE name = $1 AND is_active AND id <> $2
						AND (type = 'default' OR company_id = $3)
				)
			`, newName, roleID, companyID).Scan(&exists)
			if err != nil {
				return nil, fmt.Errorf("check duplicate role: %w", err)
			}
			if exists {
				return nil, model.ErrDuplicateRole
			}
		}
	}

	newRate := role.HourlyRate
	if payload.HourlyRate != nil {
		newRate = *payload.HourlyRate
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var updated model.ResourceRole
	err = tx.QueryRowContext(ctx, `
		UPDATE resource_roles
		SET name = $1, label = $2, hourly_rate = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING id, COALESCE(company_id, ''), type, name, label, hourly_rate, is_active, created_at, updated_at
	`, newName, newLabel, newRate, roleID).Scan(
		&updated.ID,
		&updated.CompanyID,
		&updated.Type,
		&updated.Name,
		&updated.Label,
		&updated.HourlyRate,
		&updated.IsActive,
		&updated.CreatedAt,
		&updated.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update role: %w", err)
	}

	if newRate != role.HourlyRate {
		var changePercent *float64
		if role.HourlyRate > 0 {
			pct := (newRate - role.HourlyRate) / role.HourlyRate * 100
			changePercent = &pct
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO resource_rate_history (role_id, role_name, role_label, action, old_rate, new_rate, change_percent, company_id)
			VALUES ($1, $2, $3, 'updated', $4, $5, $6, $7)
		`, updated.ID, updated.Name, updated.Label, role.HourlyRate, newRate, changePercent, companyID); err != nil {
			return nil, fmt.Errorf("record rate history: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return &updated, nil
}

// DeactivateRole soft deletes a custom role. Default roles cannot be removed
// by a company, only shadowed.
func (r *RateRepository) DeactivateRole(ctx context.Context, companyID string, roleID int) error {
	role, err := r.GetRole(ctx, companyID, roleID)
	if err != nil {
		return err
	}
	if role.Type != "custom" {
		return model.ErrRoleNotFound
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		UPDATE resource_roles SET is_active = FALSE, updated_at = NOW() WHERE id = $1
	`, roleID); err != nil {
		return fmt.Errorf("deactivate role: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO resource_rate_history (role_id, role_name, role_label, action, old_rate, new_rate, change_percent, company_id)
		VALUES ($1, $2, $3, 'removed', $4, 0, NULL, $5)
	`, role.ID, role.Name, role.Label, role.HourlyRate, companyID); err != nil {
		return fmt.Errorf("record rate history: %w", err)
	}

	return tx.Commit()
}

package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/scopecraft/estimation-api/internal/model"
)

// ProjectRepository stores projects and their estimate snapshots
type ProjectRepository struct {
	db *sql.DB
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

func normalizeName(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

const projectColumns = `
	id, company_id, name, client_name, description, estimation_technique,
	target_margin, risk_buffer, negotiation_buffer, estimated_team_size,
	status, estimate, created_by, created_at, updated_at
`

func scanProject(row interface{ Scan(...interface{}) error }) (*model.Project, error) {
	var p model.Project
	var estimate []byte

	err := row.Scan(
		&p.ID,
		&p.CompanyID,
		&p.Name,
		&p.ClientName,
		&p.Description,
		&p.EstimationTechnique,
		&p.TargetMargin,
		&p.RiskBuffer,
		&p.NegotiationBuffer,
		&p.EstimatedTeamSize,
		&p.Status,
		&estimate,
		&p.CreatedBy,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(estimate) > 0 {
		var report model.Report
		if err := json.Unmarshal(estimate, &report); err != nil {
			return nil, fmt.Errorf("decode estimate snapshot: %w", err)
		}
		p.Estimate = &report
	}
	return &p, nil
}

// Create inserts a project after a company-scoped duplicate check on the
// normalized name + client pair.
func (r *ProjectRepository) Create(ctx context.Context, companyID string, payload model.ProjectCreate) (*model.Project, error) {
	nameNorm := normalizeName(payload.Name)
	clientNorm := normalizeName(payload.ClientName)

	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM projects
			WHERE company_id = $1 AND name_normalized = $2 AND client_name_normalized = $3
		)
	`, companyID, nameNorm, clientNorm).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check duplicate project: %w", err)
	}
	if exists {
		return nil, model.ErrDuplicateProject
	}

	row := r.db.QueryRowContext(ctx, `
		INSERT INTO projects (
			id, company_id, name, client_name, name_normalized, client_name_normalized,
			description, estimation_technique, target_margin, risk_buffer,
			negotiation_buffer, estimated_team_size, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 'DRAFT')
		RETURNING `+projectColumns,
		uuid.New().String(), companyID, payload.Name, payload.ClientName,
		nameNorm, clientNorm, payload.Description, payload.EstimationTechnique,
		payload.TargetMargin, payload.RiskBuffer, payload.NegotiationBuffer,
		payload.EstimatedTeamSize,
	)

	project, err := scanProject(row)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}
	return project, nil
}

// List returns the company's projects, newest first
func (r *ProjectRepository) List(ctx context.Context, companyID string, page, limit int) ([]model.Project, error) {
	offset := (page - 1) * limit

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE company_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// Get returns one project scoped to the company
func (r *ProjectRepository) Get(ctx context.Context, companyID, projectID string) (*model.Project, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE id = $1 AND company_id = $2
	`, projectID, companyID)

	project, err := scanProject(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrProjectNotFound
		}
		return nil, fmt.Errorf("query project: %w", err)
	}
	return project, nil
}

// Update applies a partial project update
func (r *ProjectRepository) Update(ctx context.Context, companyID, projectID string, payload model.ProjectUpdate) (*model.Project, error) {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if payload.Name != nil {
		sets = append(sets, "name = "+arg(*payload.Name))
		sets = append(sets, "name_normalized = "+arg(normalizeName(*payload.Name)))
	}
	if payload.ClientName != nil {
		sets = append(sets, "client_name = "+arg(*payload.ClientName))
		sets = append(sets, "client_name_normalized = "+arg(normalizeName(*payload.ClientName)))
	}
	if payload.Description != nil {
		sets = append(sets, "description = "+arg(*payload.Description))
	}
	if payload.EstimationTechnique != nil {
		sets = append(sets, "estimation_technique = "+arg(*payload.EstimationTechnique))
	}
	if payload.TargetMargin != nil {
		sets = append(sets, "target_margin = "+arg(*payload.TargetMargin))
	}
	if payload.RiskBuffer != nil {
		sets = append(sets, "risk_buffer = "+arg(*payload.RiskBuffer))
	}
	if payload.NegotiationBuffer != nil {
		sets = append(sets, "negotiation_buffer = "+arg(*payload.NegotiationBuffer))
	}
	if payload.EstimatedTeamSize != nil {
		sets = append(sets, "estimated_team_size = "+arg(*payload.EstimatedTeamSize))
	}
	if payload.Status != nil {
		sets = append(sets, "status = "+arg(*payload.Status))
	}

	query := fmt.Sprintf(`
		UPDATE projects SET %s
		WHERE id = %s AND company_id = %s
		RETURNING %s
	`, strings.Join(sets, ", "), arg(projectID), arg(companyID), projectColumns)

	project, err := scanProject(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, model.ErrProjectNotFound
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	return project, nil
}

// Delete removes a project
func (r *ProjectRepository) Delete(ctx context.Context, companyID, projectID string) error {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM projects WHERE id = $1 AND company_id = $2
	`, projectID, companyID)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return model.ErrProjectNotFound
	}
	return nil
}

// SaveEstimate persists a report as the project's immutable snapshot and
// marks the project ESTIMATED. The whole snapshot is written in one
// statement, so concurrent recalculations are last-write-wins but never
// interleaved.
func (r *ProjectRepository) SaveEstimate(ctx context.Context, companyID, projectID string, report *model.Report) error {
	encoded, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode estimate snapshot: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE projects
		SET estimate = $1, status = 'ESTIMATED', updated_at = NOW()
		WHERE id = $2 AND company_id = $3
	`, encoded, projectID, companyID)
	if err != nil {
		return fmt.Errorf("save estimate: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return model.ErrProjectNotFound
	}
	return nil
}

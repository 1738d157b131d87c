package model

import (
	"errors"
	"fmt"
)

var (
	// ErrProjectNotFound indicates the project does not exist for the company
	ErrProjectNotFound = errors.New("project not found")

	// ErrDuplicateProject indicates a project with the same name already exists for the client
	ErrDuplicateProject = errors.New("project with same name already exists for this client")

	// ErrRoleNotFound indicates the resource role does not exist for the company
	ErrRoleNotFound = errors.New("resource role not found")

	// ErrDuplicateRole indicates a role with the same normalized name is already active
	ErrDuplicateRole = errors.New("role with this name already exists")

	// ErrDefaultRoleRename indicates an attempt to rename a system default role
	ErrDefaultRoleRename = errors.New("default role name cannot be changed")

	// ErrSettingsNotFound indicates estimation settings are not configured for the company
	ErrSettingsNotFound = errors.New("estimation settings not configured")

	// ErrNoEstimate indicates the project has no stored estimate snapshot yet
	ErrNoEstimate = errors.New("project has no estimate snapshot")
)

// UnknownRoleError is raised when a task references a role absent from the
// rate map. It aborts the whole calculation; there is no partial report.
type UnknownRoleError struct {
	Role string
}

func (e *UnknownRoleError) Error() string {
	return fmt.Sprintf("hourly rate not found for role: %s", e.Role)
}

// InvalidConfigurationError is raised when timeline inputs would divide by
// zero (team size, working hours/day, working days/week, sprint length).
type InvalidConfigurationError struct {
	Param string
	Value float64
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid estimation configuration: %s=%g", e.Param, e.Value)
}

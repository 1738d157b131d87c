package logger

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// AuditAction represents the type of action being audited
type AuditAction string

const (
	// Estimation operations
	AuditActionEstimateCalculate AuditAction = "ESTIMATE_CALCULATE"
	AuditActionEstimateFailed    AuditAction = "ESTIMATE_FAILED"
	AuditActionReportExport      AuditAction = "REPORT_EXPORT"
	AuditActionWebhookDelivery   AuditAction = "WEBHOOK_DELIVERY"

	// Project operations
	AuditActionProjectCreate   AuditAction = "PROJECT_CREATE"
	AuditActionProjectUpdate   AuditAction = "PROJECT_UPDATE"
	AuditActionProjectDelete   AuditAction = "PROJECT_DELETE"
	AuditActionSnapshotPersist AuditAction = "SNAPSHOT_PERSIST"

	// Resource role operations
	AuditActionRoleCreate AuditAction = "ROLE_CREATE"
	AuditActionRoleUpdate AuditAction = "ROLE_UPDATE"
	AuditActionRoleDelete AuditAction = "ROLE_DELETE"
	AuditActionRateChange AuditAction = "RATE_CHANGE"

	// Settings operations
	AuditActionSettingsUpdate AuditAction = "SETTINGS_UPDATE"

	// API operations
	AuditActionAPIRequest AuditAction = "API_REQUEST"
	AuditActionAPIError   AuditAction = "API_ERROR"
)

// AuditEvent represents an audit log entry
type AuditEvent struct {
	Action     AuditAction
	CompanyID  string
	Resource   string
	ResourceID string
	Details    map[string]interface{}
	ClientIP   string
	RequestID  string
	Success    bool
	Error      string
	Duration   int64 // milliseconds
	Method     string
	Path       string
	StatusCode int
}

var auditLogger zerolog.Logger

// InitAudit initializes the audit logger
func InitAudit() {
	auditLogger = globalLogger.With().Str("log_type", "audit").Logger()
}

// Audit logs an audit event
func Audit(ctx context.Context, event AuditEvent) {
	if event.RequestID == "" {
		event.RequestID = GetRequestID(ctx)
	}
	if event.CompanyID == "" {
		event.CompanyID = GetCompanyID(ctx)
	}

	logEvent := auditLogger.Info()
	if !event.Success {
		logEvent = auditLogger.Warn()
	}

	logEvent.
		Str("action", string(event.Action)).
		Str("company_id", event.CompanyID).
		Str("resource", event.Resource).
		Str("resource_id", event.ResourceID).
		Str("client_ip", event.ClientIP).
		Str("request_id", event.RequestID).
		Bool("success", event.Success).
		Time("timestamp", time.Now().UTC())

	if event.Error != "" {
		logEvent.Str("error", event.Error)
	}
	if event.Duration > 0 {
		logEvent.Int64("duration_ms", event.Duration)
	}
	if event.Method != "" {
		logEvent.Str("method", event.Method)
	}
	if event.Path != "" {
		logEvent.Str("path", event.Path)
	}
	if event.StatusCode > 0 {
		logEvent.Int("status_code", event.StatusCode)
	}
	if len(event.Details) > 0 {
		logEvent.Interface("details", event.Details)
	}

	logEvent.Msg("Audit event")
}

// AuditRequest logs an API request audit event
func AuditRequest(ctx context.Context, method, path string, statusCode int, duration int64, clientIP string) {
	success := statusCode < 400
	action := AuditActionAPIRequest
	if !success {
		action = AuditActionAPIError
	}

	Audit(ctx, AuditEvent{
		Action:     action,
		Resource:   "api",
		ResourceID: path,
		Method:     method,
		Path:       path,
		StatusCode: statusCode,
		Duration:   duration,
		ClientIP:   clientIP,
		Success:    success,
	})
}

// AuditRateChange records a resource role rate change with old and new values
func AuditRateChange(ctx context.Context, roleName string, oldRate, newRate float64) {
	Audit(ctx, AuditEvent{
		Action:     AuditActionRateChange,
		Resource:   "resource_role",
		ResourceID: roleName,
		Success:    true,
		Details: map[string]interface{}{
			"old_rate": oldRate,
			"new_rate": newRate,
		},
	})
}

package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// EndpointMetrics tracks metrics for a specific endpoint
type EndpointMetrics struct {
	Requests     int64
	Errors       int64
	TotalLatency int64
}

// Metrics holds all application counters
type Metrics struct {
	mu sync.RWMutex

	// Request metrics
	TotalRequests      int64
	SuccessfulRequests int64
	FailedRequests     int64
	TotalLatency       int64

	// Estimation metrics
	EstimatesCalculated int64
	EstimateErrors      int64
	SnapshotsPersisted  int64

	// Project metrics
	ProjectsCreated int64
	ProjectsDeleted int64

	// Resource role metrics
	RolesCreated int64
	RateChanges  int64

	// Settings metrics
	SettingsUpdates int64

	// Export and delivery metrics
	ReportsExported   int64
	WebhooksDelivered int64
	WebhookErrors     int64

	// Endpoint-specific metrics
	Endpoints map[string]*EndpointMetrics

	StartTime time.Time
}

var (
	globalMetrics *Metrics
	once          sync.Once
)

// Init initializes the global metrics instance
func Init() {
	once.Do(func() {
		globalMetrics = &Metrics{
			Endpoints: make(map[string]*EndpointMetrics),
			StartTime: time.Now(),
		}
	})
}

// Get returns the global metrics instance
func Get() *Metrics {
	if globalMetrics == nil {
		Init()
	}
	return globalMetrics
}

// IncrementRequests records a completed request
func (m *Metrics) IncrementRequests(success bool, latencyMs int64) {
	atomic.AddInt64(&m.TotalRequests, 1)
	atomic.AddInt64(&m.TotalLatency, latencyMs)
	if success {
		atomic.AddInt64(&m.SuccessfulRequests, 1)
	} else {
		atomic.AddInt64(&m.FailedRequests, 1)
	}
}

// TrackEndpoint records per-endpoint latency and errors
func (m *Metrics) TrackEndpoint(path, method string, statusCode int, latencyMs int64) {
	key := method + " " + path

	m.mu.Lock()
	ep, ok := m.Endpoints[key]
	if !ok {
		ep = &EndpointMetrics{}
		m.Endpoints[key] = ep
	}
	m.mu.Unlock()

	atomic.AddInt64(&ep.Requests, 1)
	atomic.AddInt64(&ep.TotalLatency, latencyMs)
	if statusCode >= 400 {
		atomic.AddInt64(&ep.Errors, 1)
	}
}

// IncrementEstimates records an estimation calculation result
func (m *Metrics) IncrementEstimates(success bool) {
	if success {
		atomic.AddInt64(&m.EstimatesCalculated, 1)
	} else {
		atomic.AddInt64(&m.EstimateErrors, 1)
	}
}

// IncrementSnapshots records a persisted estimate snapshot
func (m *Metrics) IncrementSnapshots() {
	atomic.AddInt64(&m.SnapshotsPersisted, 1)
}

// IncrementProjects records project lifecycle events
func (m *Metrics) IncrementProjects(created bool) {
	if created {
		atomic.AddInt64(&m.ProjectsCreated, 1)
	} else {
		atomic.AddInt64(&m.ProjectsDeleted, 1)
	}
}

// IncrementRoles records a created custom role
func (m *Metrics) IncrementRoles() {
	atomic.AddInt64(&m.RolesCreated, 1)
}

// IncrementRateChanges records a rate edit
func (m *Metrics) IncrementRateChanges() {
	atomic.AddInt64(&m.RateChanges, 1)
}

// IncrementSettingsUpdates records a settings change
func (m *Metrics) IncrementSettingsUpdates() {
	atomic.AddInt64(&m.SettingsUpdates, 1)
}

// IncrementExports records an Excel report export
func (m *Metrics) IncrementExports() {
	atomic.AddInt64(&m.ReportsExported, 1)
}

// IncrementWebhooks records a webhook delivery attempt
func (m *Metrics) IncrementWebhooks(success bool) {
	if success {
		atomic.AddInt64(&m.WebhooksDelivered, 1)
	} else {
		atomic.AddInt64(&m.WebhookErrors, 1)
	}
}

// Snapshot returns a point-in-time view of all counters for the debug
// endpoint.
func (m *Metrics) Snapshot() map[string]interface{} {
	totalRequests := atomic.LoadInt64(&m.TotalRequests)
	totalLatency := atomic.LoadInt64(&m.TotalLatency)

	var avgLatency float64
	if totalRequests > 0 {
		avgLatency = float64(totalLatency) / float64(totalRequests)
	}

	endpoints := make(map[string]map[string]int64)
	m.mu.RLock()
	for key, ep := range m.Endpoints {
		endpoints[key] = map[string]int64{
			"requests":      atomic.LoadInt64(&ep.Requests),
			"errors":        atomic.LoadInt64(&ep.Errors),
			"total_latency": atomic.LoadInt64(&ep.TotalLatency),
		}
	}
	m.mu.RUnlock()

	return map[string]interface{}{
		"uptime_seconds":       int64(time.Since(m.StartTime).Seconds()),
		"total_requests":       totalRequests,
		"successful_requests":  atomic.LoadInt64(&m.SuccessfulRequests),
		"failed_requests":      atomic.LoadInt64(&m.FailedRequests),
		"avg_latency_ms":       avgLatency,
		"estimates_calculated": atomic.LoadInt64(&m.EstimatesCalculated),
		"estimate_errors":      atomic.LoadInt64(&m.EstimateErrors),
		"snapshots_persisted":  atomic.LoadInt64(&m.SnapshotsPersisted),
		"projects_created":     atomic.LoadInt64(&m.ProjectsCreated),
		"projects_deleted":     atomic.LoadInt64(&m.ProjectsDeleted),
		"roles_created":        atomic.LoadInt64(&m.RolesCreated),
		"rate_changes":         atomic.LoadInt64(&m.RateChanges),
		"settings_updates":     atomic.LoadInt64(&m.SettingsUpdates),
		"reports_exported":     atomic.LoadInt64(&m.ReportsExported),
		"webhooks_delivered":   atomic.LoadInt64(&m.WebhooksDelivered),
		"webhook_errors":       atomic.LoadInt64(&m.WebhookErrors),
		"endpoints":            endpoints,
	}
}

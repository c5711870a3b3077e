package pagesense

import "context"

// HealthStatus is a component's self-reported condition.
type HealthStatus string

// Health statuses, from best to worst.
const (
	HealthHealthy     HealthStatus = "healthy"
	HealthDegraded    HealthStatus = "degraded"
	HealthUnavailable HealthStatus = "unavailable"
	HealthError       HealthStatus = "error"
)

// Health is one component's health report.
type Health struct {
	Status HealthStatus `json:"status"`
	Reason string       `json:"reason,omitempty"`
}

// HealthChecker is implemented by components that can report their health.
type HealthChecker interface {
	HealthCheck(ctx context.Context) Health
}

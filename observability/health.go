package observability

import (
	"context"
	"time"
)

// HealthStatus represents the health state of a component.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes the health of a single component, such as a result store.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Latency time.Duration     `json:"latency,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// HealthChecker is implemented by components that can report their health.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// CheckAll runs every checker and folds the results into one overall status:
// any down component makes the whole down, otherwise any degraded one
// makes it degraded.
func CheckAll(ctx context.Context, checkers ...HealthChecker) (HealthStatus, []Health) {
	overall := HealthStatusUp
	results := make([]Health, 0, len(checkers))
	for _, c := range checkers {
		h := c.CheckHealth(ctx)
		results = append(results, h)
		switch h.Status {
		case HealthStatusDown:
			overall = HealthStatusDown
		case HealthStatusDegraded:
			if overall != HealthStatusDown {
				overall = HealthStatusDegraded
			}
		}
	}
	return overall, results
}

package survivor

import (
	"context"

	healthuc "github.com/survivor-labs/survivor-indexer/internal/usecase/health"
)

// Health status values.
const (
	StatusOK       = string(healthuc.Healthy)
	StatusDegraded = string(healthuc.Degraded)
	StatusError    = string(healthuc.Unhealthy)
)

// HealthStatus is the outcome of Client.Health. Checks maps a component
// ("database:<network>", "cache") to "ok" or "error".
type HealthStatus struct {
	Status string
	Checks map[string]string
}

// OK reports whether every component answered.
func (h HealthStatus) OK() bool { return h.Status == StatusOK }

type healthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Health pings the database and, when configured, the query cache.
func (c *Client) Health(ctx context.Context) HealthStatus {
	report := c.healthSvc.Check(ctx)
	h := HealthStatus{Status: string(report.Status), Checks: make(map[string]string, len(report.Checks))}
	for component, result := range report.Checks {
		h.Checks[component] = string(result)
	}
	return h
}

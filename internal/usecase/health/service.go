package health

import (
	"context"
	"sync"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	Healthy   Status = "ok"
	Degraded  Status = "degraded"
	Unhealthy Status = "error" // every network store is down
)

// CheckResult is the outcome of one component check.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// DefaultCheckTimeout bounds each ping.
const DefaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service pings one store per network plus the optional cache.
type Service struct {
	networks map[string]Pinger
	cache    Pinger
	timeout  time.Duration
}

// New creates a Service. cache can be nil.
func New(networks map[string]Pinger, cache Pinger) *Service {
	return &Service{networks: networks, cache: cache, timeout: DefaultCheckTimeout}
}

// WithTimeout overrides the per-ping timeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	s.timeout = d
	return s
}

// Check pings every component concurrently. Checks are keyed
// "database:<network>" and "cache".
func (s *Service) Check(ctx context.Context) Report {
	targets := make(map[string]Pinger, len(s.networks)+1)
	for n, p := range s.networks {
		targets["database:"+n] = p
	}
	if s.cache != nil {
		targets["cache"] = s.cache
	}

	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		checks = make(map[string]CheckResult, len(targets))
	)
	for name, p := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := s.ping(ctx, p)
			mu.Lock()
			checks[name] = r
			mu.Unlock()
		}()
	}
	wg.Wait()

	return Report{Status: s.aggregate(checks), Checks: checks}
}

func (s *Service) aggregate(checks map[string]CheckResult) Status {
	status := Healthy
	for _, r := range checks {
		if r == CheckError {
			status = Degraded
			break
		}
	}
	if len(s.networks) == 0 {
		return status
	}
	for n := range s.networks {
		if checks["database:"+n] == CheckOK {
			return status
		}
	}
	return Unhealthy
}

func (s *Service) ping(ctx context.Context, p Pinger) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	if err := p.Ping(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
